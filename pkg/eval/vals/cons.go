package vals

// Cons is an immutable pair. Chains of Cons ending in Nil are lists.
type Cons struct {
	Head, Tail Value
}

func (*Cons) Kind() string { return KindCons }

// NewCons returns a new Cons.
func NewCons(head, tail Value) *Cons { return &Cons{head, tail} }

// List builds a list from the arguments.
func List(vs ...Value) Value { return ListFromSlice(vs, Nil) }

// ListFromSlice builds a list from the slice, ending in tail instead of Nil.
func ListFromSlice(vs []Value, tail Value) Value {
	l := tail
	for i := len(vs) - 1; i >= 0; i-- {
		l = &Cons{vs[i], l}
	}
	return l
}

// ListToSlice converts a list to a slice. It returns an error if v is not a
// proper list.
func ListToSlice(v Value) ([]Value, error) {
	var vs []Value
	for {
		switch l := v.(type) {
		case Empty:
			return vs, nil
		case *Cons:
			vs = append(vs, l.Head)
			v = l.Tail
		default:
			return nil, errNotList
		}
	}
}

// IsList reports whether v is a proper list.
func IsList(v Value) bool {
	for {
		switch l := v.(type) {
		case Empty:
			return true
		case *Cons:
			v = l.Tail
		default:
			return false
		}
	}
}
