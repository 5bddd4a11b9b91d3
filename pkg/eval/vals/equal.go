package vals

// Equal returns whether two values are structurally equal. Identical values are
// always equal; Num and Str compare by value, Cons chains and Vectors compare
// elementwise, and Errors compare by class and message. All other values,
// notably functions and streams, are only equal to themselves.
//
// Implementations of Value must be comparable with ==.
func Equal(x, y Value) bool {
	for {
		if x == y {
			return true
		}
		switch xv := x.(type) {
		case *Cons:
			yv, ok := y.(*Cons)
			if !ok || !Equal(xv.Head, yv.Head) {
				return false
			}
			// Loop on the tails so that long lists don't grow the stack.
			x, y = xv.Tail, yv.Tail
		case *Vector:
			yv, ok := y.(*Vector)
			return ok && equalVector(xv, yv)
		case *Error:
			yv, ok := y.(*Error)
			return ok && xv.Class == yv.Class && xv.Message == yv.Message
		default:
			return false
		}
	}
}

func equalVector(x, y *Vector) bool {
	if len(x.elems) != len(y.elems) {
		return false
	}
	for i := range x.elems {
		if !Equal(x.elems[i], y.elems[i]) {
			return false
		}
	}
	return true
}
