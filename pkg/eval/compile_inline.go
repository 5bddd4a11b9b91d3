package eval

import (
	"src.kl.sh/pkg/eval/vals"
)

// inline is a primitive compiled to a native op when it is applied to exactly
// arity arguments. Its operands are compiled in head position; build gets
// them as fabs with no statements.
type inline struct {
	arity int
	build func(c compileCtx, args []fab) (valueOp, Tag)
}

var inlines map[string]inline

func init() {
	inlines = map[string]inline{
		"+": arith(func(a, b float64) float64 { return a + b }),
		"-": arith(func(a, b float64) float64 { return a - b }),
		"*": arith(func(a, b float64) float64 { return a * b }),
		"/": {2, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x, y := need(args[0], numberKind), needNz(args[1])
			return numFn(func(fm *frame) (float64, error) {
				a, err := x.get(fm)
				if err != nil {
					return 0, err
				}
				b, err := y.get(fm)
				return a / b, err
			}), TagAnyNumber
		}},

		"<":  compare(func(a, b float64) bool { return a < b }),
		">":  compare(func(a, b float64) bool { return a > b }),
		"<=": compare(func(a, b float64) bool { return a <= b }),
		">=": compare(func(a, b float64) bool { return a >= b }),
		"=":  {2, equalInline},
		"not": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], boolKind)
			return boolFn(func(fm *frame) (bool, error) {
				b, err := x.get(fm)
				return !b, err
			}), TagBool
		}},

		"number?":    recognisor(isNumber),
		"string?":    recognisor(isString),
		"symbol?":    recognisor(isSymbol),
		"cons?":      recognisor(isCons),
		"absvector?": recognisor(isVector),

		"hd": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], consKind)
			return valueFn(func(fm *frame) (vals.Value, error) {
				c, err := x.get(fm)
				if err != nil {
					return nil, err
				}
				return c.Head, nil
			}), TagNone
		}},
		"tl": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], consKind)
			return valueFn(func(fm *frame) (vals.Value, error) {
				c, err := x.get(fm)
				if err != nil {
					return nil, err
				}
				return c.Tail, nil
			}), TagNone
		}},

		"str": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := args[0].expr
			return strFn(func(fm *frame) (string, error) {
				v, err := evalValue(fm, x)
				if err != nil {
					return "", err
				}
				return vals.Repr(v), nil
			}), TagString
		}},
		"intern": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], stringKind)
			return valueFn(func(fm *frame) (vals.Value, error) {
				s, err := x.get(fm)
				if err != nil {
					return nil, err
				}
				return vals.Intern(s), nil
			}), TagSymbol
		}},
		"cn": {2, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x, y := need(args[0], stringKind), need(args[1], stringKind)
			return strFn(func(fm *frame) (string, error) {
				a, err := x.get(fm)
				if err != nil {
					return "", err
				}
				b, err := y.get(fm)
				return a + b, err
			}), TagString
		}},
		"tlstr": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := neString(args[0])
			return strFn(func(fm *frame) (string, error) {
				s, err := x.get(fm)
				if err != nil {
					return "", err
				}
				return tlstr(s), nil
			}), TagString
		}},
		"string->n": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := neString(args[0])
			return numFn(func(fm *frame) (float64, error) {
				s, err := x.get(fm)
				if err != nil {
					return 0, err
				}
				return stringToN(s), nil
			}), TagNumber
		}},
		"n->string": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], numberKind)
			return strFn(func(fm *frame) (string, error) {
				n, err := x.get(fm)
				if err != nil {
					return "", err
				}
				return nToString(n), nil
			}), TagString
		}},
		"pos": {2, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x, y := need(args[0], stringKind), need(args[1], numberKind)
			return strFn(func(fm *frame) (string, error) {
				s, err := x.get(fm)
				if err != nil {
					return "", err
				}
				i, err := y.get(fm)
				if err != nil {
					return "", err
				}
				return pos(s, i)
			}), TagString
		}},

		"simple-error": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], stringKind)
			return valueFn(func(fm *frame) (vals.Value, error) {
				s, err := x.get(fm)
				if err != nil {
					return nil, err
				}
				return nil, vals.NewError(s)
			}), TagNone
		}},
		"error-to-string": {1, func(_ compileCtx, args []fab) (valueOp, Tag) {
			x := need(args[0], errorKind)
			return strFn(func(fm *frame) (string, error) {
				e, err := x.get(fm)
				if err != nil {
					return "", err
				}
				return e.Message, nil
			}), TagString
		}},

		"read-byte":  hostInline(1, (*Evaler).readByte),
		"write-byte": hostInline(2, (*Evaler).writeByte),
		"get-time":   hostInline(1, (*Evaler).getTime),
	}
}

func (cp *compiler) inline(c compileCtx, in inline, args []vals.Value) fab {
	stmts, fabs := cp.compileArgs(c, args)
	op, tag := in.build(c, fabs)
	return fab{stmts, op, tag}
}

func arith(f func(a, b float64) float64) inline {
	return inline{2, func(_ compileCtx, args []fab) (valueOp, Tag) {
		x, y := need(args[0], numberKind), need(args[1], numberKind)
		return numFn(func(fm *frame) (float64, error) {
			a, err := x.get(fm)
			if err != nil {
				return 0, err
			}
			b, err := y.get(fm)
			return f(a, b), err
		}), TagAnyNumber
	}}
}

func compare(f func(a, b float64) bool) inline {
	return inline{2, func(_ compileCtx, args []fab) (valueOp, Tag) {
		x, y := need(args[0], numberKind), need(args[1], numberKind)
		return boolFn(func(fm *frame) (bool, error) {
			a, err := x.get(fm)
			if err != nil {
				return false, err
			}
			b, err := y.get(fm)
			return err == nil && f(a, b), err
		}), TagBool
	}}
}

func equalInline(_ compileCtx, args []fab) (valueOp, Tag) {
	if args[0].tag.satisfies(TagNumber) && args[1].tag.satisfies(TagNumber) {
		x, y := need(args[0], numberKind), need(args[1], numberKind)
		return boolFn(func(fm *frame) (bool, error) {
			a, err := x.get(fm)
			if err != nil {
				return false, err
			}
			b, err := y.get(fm)
			return err == nil && a == b, err
		}), TagBool
	}
	x, y := args[0].expr, args[1].expr
	return boolFn(func(fm *frame) (bool, error) {
		a, err := evalValue(fm, x)
		if err != nil {
			return false, err
		}
		b, err := evalValue(fm, y)
		return err == nil && vals.Equal(a, b), err
	}), TagBool
}

func recognisor(f func(vals.Value) bool) inline {
	return inline{1, func(_ compileCtx, args []fab) (valueOp, Tag) {
		x := args[0].expr
		return boolFn(func(fm *frame) (bool, error) {
			v, err := evalValue(fm, x)
			return err == nil && f(v), err
		}), TagBool
	}}
}

func neString(f fab) getter[string] {
	x := need(f, stringKind)
	return strFn(func(fm *frame) (string, error) {
		s, err := x.get(fm)
		if err == nil && s == "" {
			return vals.AsNeString(vals.Str(s))
		}
		return s, err
	})
}

// hostInline compiles a primitive backed by the host environment. In
// asynchronous sessions, it runs on a helper goroutine and the program waits
// for it.
func hostInline(arity int, f func(ev *Evaler, args []vals.Value) (vals.Value, error)) inline {
	return inline{arity, func(c compileCtx, args []fab) (valueOp, Tag) {
		ops := exprsOf(args)
		async := c.async
		return numFn(func(fm *frame) (float64, error) {
			vs := make([]vals.Value, len(ops))
			for i, op := range ops {
				v, err := evalValue(fm, op)
				if err != nil {
					return 0, err
				}
				vs[i] = v
			}
			var v vals.Value
			var err error
			if async {
				v, err = Spawn(func() (vals.Value, error) { return f(fm.ev, vs) }).Await()
			} else {
				v, err = f(fm.ev, vs)
			}
			if err != nil {
				return 0, err
			}
			return float64(v.(vals.Num)), nil
		}), TagNumber
	}}
}
