package diag

// Ranger wraps the Range method.
type Ranger interface {
	// Range returns the range associated with the value.
	Range() Ranging
}

// Ranging represents a range [From, To) within a source text. Structs can
// embed Ranging to satisfy the [Ranger] interface.
//
// A Ranging with a negative From is "unknown"; it is used for expressions that
// were built at run time instead of read from source.
type Ranging struct {
	From int
	To   int
}

// Range returns the Ranging itself.
func (r Ranging) Range() Ranging { return r }

// Known reports whether the Ranging points to an actual position.
func (r Ranging) Known() bool { return r.From >= 0 }

// PointRanging returns a zero-width Ranging at the given point.
func PointRanging(p int) Ranging {
	return Ranging{p, p}
}

// UnknownRanging is the Ranging of expressions without a source position.
var UnknownRanging = Ranging{-1, -1}

// MixedRanging returns a Ranging from the start position of a to the end
// position of b.
func MixedRanging(a, b Ranger) Ranging {
	return Ranging{a.Range().From, b.Range().To}
}
