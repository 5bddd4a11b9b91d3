package eval

import (
	"math"
	"unicode/utf8"

	"src.kl.sh/pkg/eval/vals"
)

// Primitive functions that don't depend on the session.

type builtinFn struct {
	arity int
	impl  func(args []vals.Value) (vals.Value, error)
}

var builtinFns map[string]builtinFn

// Largest size accepted by absvector.
const maxVectorSize = 1 << 24

func init() {
	builtinFns = map[string]builtinFn{
		"if": {3, func(args []vals.Value) (vals.Value, error) {
			b, err := vals.AsBool(args[0])
			if err != nil {
				return nil, err
			}
			if b {
				return args[1], nil
			}
			return args[2], nil
		}},
		"and": logical(func(a, b bool) bool { return a && b }),
		"or":  logical(func(a, b bool) bool { return a || b }),
		"not": {1, func(args []vals.Value) (vals.Value, error) {
			b, err := vals.AsBool(args[0])
			if err != nil {
				return nil, err
			}
			return vals.FromBool(!b), nil
		}},

		"+": numeric(func(a, b float64) vals.Value { return vals.Num(a + b) }),
		"-": numeric(func(a, b float64) vals.Value { return vals.Num(a - b) }),
		"*": numeric(func(a, b float64) vals.Value { return vals.Num(a * b) }),
		"/": {2, func(args []vals.Value) (vals.Value, error) {
			a, err := vals.AsNumber(args[0])
			if err != nil {
				return nil, err
			}
			b, err := vals.AsNzNumber(args[1])
			if err != nil {
				return nil, err
			}
			return vals.Num(a / b), nil
		}},
		">":  numeric(func(a, b float64) vals.Value { return vals.FromBool(a > b) }),
		"<":  numeric(func(a, b float64) vals.Value { return vals.FromBool(a < b) }),
		">=": numeric(func(a, b float64) vals.Value { return vals.FromBool(a >= b) }),
		"<=": numeric(func(a, b float64) vals.Value { return vals.FromBool(a <= b) }),
		"=": {2, func(args []vals.Value) (vals.Value, error) {
			return vals.FromBool(vals.Equal(args[0], args[1])), nil
		}},

		"cons": {2, func(args []vals.Value) (vals.Value, error) {
			return vals.NewCons(args[0], args[1]), nil
		}},
		"hd": {1, func(args []vals.Value) (vals.Value, error) {
			c, err := vals.AsCons(args[0])
			if err != nil {
				return nil, err
			}
			return c.Head, nil
		}},
		"tl": {1, func(args []vals.Value) (vals.Value, error) {
			c, err := vals.AsCons(args[0])
			if err != nil {
				return nil, err
			}
			return c.Tail, nil
		}},

		"cons?":      predicate(isCons),
		"number?":    predicate(isNumber),
		"string?":    predicate(isString),
		"symbol?":    predicate(isSymbol),
		"absvector?": predicate(isVector),

		"absvector": {1, func(args []vals.Value) (vals.Value, error) {
			n, err := vals.AsNumber(args[0])
			if err != nil {
				return nil, err
			}
			if n < 0 || n != math.Trunc(n) {
				return nil, vals.TypeErrorf("vector size %s is not valid", vals.FormatNum(n))
			} else if n > maxVectorSize {
				return nil, vals.LookupErrorf("vector size %s exceeds the maximum of %d",
					vals.FormatNum(n), maxVectorSize)
			}
			return vals.NewVector(int(n)), nil
		}},
		"<-address": {2, func(args []vals.Value) (vals.Value, error) {
			v, err := vals.AsVector(args[0])
			if err != nil {
				return nil, err
			}
			i, err := vals.AsIndex(args[1], v.Len())
			if err != nil {
				return nil, err
			}
			return v.Get(i), nil
		}},
		"address->": {3, func(args []vals.Value) (vals.Value, error) {
			v, err := vals.AsVector(args[0])
			if err != nil {
				return nil, err
			}
			i, err := vals.AsIndex(args[1], v.Len())
			if err != nil {
				return nil, err
			}
			v.Set(i, args[2])
			return v, nil
		}},

		"intern": {1, func(args []vals.Value) (vals.Value, error) {
			s, err := vals.AsString(args[0])
			if err != nil {
				return nil, err
			}
			return vals.Intern(s), nil
		}},
		"str": {1, func(args []vals.Value) (vals.Value, error) {
			return vals.Str(vals.Repr(args[0])), nil
		}},
		"cn": {2, func(args []vals.Value) (vals.Value, error) {
			a, err := vals.AsString(args[0])
			if err != nil {
				return nil, err
			}
			b, err := vals.AsString(args[1])
			if err != nil {
				return nil, err
			}
			return vals.Str(a + b), nil
		}},
		"tlstr": {1, func(args []vals.Value) (vals.Value, error) {
			s, err := vals.AsNeString(args[0])
			if err != nil {
				return nil, err
			}
			return vals.Str(tlstr(s)), nil
		}},
		"pos": {2, func(args []vals.Value) (vals.Value, error) {
			s, err := vals.AsString(args[0])
			if err != nil {
				return nil, err
			}
			i, err := vals.AsNumber(args[1])
			if err != nil {
				return nil, err
			}
			c, err := pos(s, i)
			if err != nil {
				return nil, err
			}
			return vals.Str(c), nil
		}},
		"string->n": {1, func(args []vals.Value) (vals.Value, error) {
			s, err := vals.AsNeString(args[0])
			if err != nil {
				return nil, err
			}
			return vals.Num(stringToN(s)), nil
		}},
		"n->string": {1, func(args []vals.Value) (vals.Value, error) {
			n, err := vals.AsNumber(args[0])
			if err != nil {
				return nil, err
			}
			return vals.Str(nToString(n)), nil
		}},

		"simple-error": {1, func(args []vals.Value) (vals.Value, error) {
			s, err := vals.AsString(args[0])
			if err != nil {
				return nil, err
			}
			return nil, vals.NewError(s)
		}},
		"error-to-string": {1, func(args []vals.Value) (vals.Value, error) {
			e, err := vals.AsError(args[0])
			if err != nil {
				return nil, err
			}
			return vals.Str(e.Message), nil
		}},

		// Type annotations are erased.
		"type": {2, func(args []vals.Value) (vals.Value, error) {
			return args[0], nil
		}},
	}
}

func logical(f func(a, b bool) bool) builtinFn {
	return builtinFn{2, func(args []vals.Value) (vals.Value, error) {
		a, err := vals.AsBool(args[0])
		if err != nil {
			return nil, err
		}
		b, err := vals.AsBool(args[1])
		if err != nil {
			return nil, err
		}
		return vals.FromBool(f(a, b)), nil
	}}
}

func numeric(f func(a, b float64) vals.Value) builtinFn {
	return builtinFn{2, func(args []vals.Value) (vals.Value, error) {
		a, err := vals.AsNumber(args[0])
		if err != nil {
			return nil, err
		}
		b, err := vals.AsNumber(args[1])
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	}}
}

func predicate(f func(vals.Value) bool) builtinFn {
	return builtinFn{1, func(args []vals.Value) (vals.Value, error) {
		return vals.FromBool(f(args[0])), nil
	}}
}

func isNumber(v vals.Value) bool {
	n, ok := v.(vals.Num)
	return ok && n.IsFinite()
}

func isString(v vals.Value) bool {
	_, ok := v.(vals.Str)
	return ok
}

func isSymbol(v vals.Value) bool {
	_, ok := v.(*vals.Symbol)
	return ok
}

func isCons(v vals.Value) bool {
	_, ok := v.(*vals.Cons)
	return ok
}

func isVector(v vals.Value) bool {
	_, ok := v.(*vals.Vector)
	return ok
}

// Strings are indexed by code points.

func tlstr(s string) string {
	_, size := utf8.DecodeRuneInString(s)
	return s[size:]
}

func stringToN(s string) float64 {
	r, _ := utf8.DecodeRuneInString(s)
	return float64(r)
}

func nToString(n float64) string {
	return string(rune(int32(n)))
}

func pos(s string, i float64) (string, error) {
	runes := []rune(s)
	idx, err := vals.CheckIndex(i, len(runes))
	if err != nil {
		return "", err
	}
	return string(runes[idx]), nil
}
