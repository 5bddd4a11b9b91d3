package vals

// Vector is a mutable sequence with a fixed length. It is the only mutable
// container.
type Vector struct {
	elems []Value
}

func (*Vector) Kind() string { return KindVector }

// NewVector returns a Vector of length n, filled with Nil.
func NewVector(n int) *Vector {
	elems := make([]Value, n)
	for i := range elems {
		elems[i] = Nil
	}
	return &Vector{elems}
}

// Len returns the length of the vector.
func (v *Vector) Len() int { return len(v.elems) }

// Get returns the element at index i, which must be within bounds.
func (v *Vector) Get(i int) Value { return v.elems[i] }

// Set sets the element at index i, which must be within bounds.
func (v *Vector) Set(i int, x Value) { v.elems[i] = x }
