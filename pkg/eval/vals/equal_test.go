package vals

import (
	"testing"

	"src.kl.sh/pkg/tt"
)

type opaque struct{ name string }

func (*opaque) Kind() string { return KindFunction }

var (
	fn1 = &opaque{"f"}
	fn2 = &opaque{"f"}
)

func vector(vs ...Value) *Vector {
	v := NewVector(len(vs))
	for i, x := range vs {
		v.Set(i, x)
	}
	return v
}

func TestEqual(t *testing.T) {
	tt.Test(t, tt.Fn("Equal", Equal), tt.Table{
		tt.Args(Nil, Nil).Rets(true),
		tt.Args(Num(1), Num(1)).Rets(true),
		tt.Args(Num(1), Num(2)).Rets(false),
		tt.Args(Num(1), Str("1")).Rets(false),
		tt.Args(Str("a"), Str("a")).Rets(true),
		tt.Args(Intern("a"), Intern("a")).Rets(true),
		tt.Args(Intern("a"), Str("a")).Rets(false),
		tt.Args(Nil, False).Rets(false),

		tt.Args(List(Num(1), Str("x")), List(Num(1), Str("x"))).Rets(true),
		tt.Args(List(Num(1), Str("x")), List(Num(1), Str("y"))).Rets(false),
		tt.Args(List(Num(1)), List(Num(1), Num(2))).Rets(false),
		tt.Args(NewCons(Num(1), Num(2)), NewCons(Num(1), Num(2))).Rets(true),
		tt.Args(List(List(Intern("a")), Nil), List(List(Intern("a")), Nil)).Rets(true),

		tt.Args(vector(Num(1), Nil), vector(Num(1), Nil)).Rets(true),
		tt.Args(vector(Num(1)), vector(Num(1), Nil)).Rets(false),
		tt.Args(NewVector(0), NewVector(0)).Rets(true),
		tt.Args(NewVector(1), Nil).Rets(false),

		tt.Args(NewError("x"), NewError("x")).Rets(true),
		tt.Args(NewError("x"), TypeErrorf("x")).Rets(false),

		tt.Args(fn1, fn1).Rets(true),
		tt.Args(fn1, fn2).Rets(false),
	})
}

func TestEqual_IsSymmetric(t *testing.T) {
	values := []Value{
		Nil, Num(0), Num(1), Str(""), Str("a"), True, False,
		List(Num(1)), NewCons(Num(1), Num(2)), vector(Num(1)), NewVector(0),
		NewError("e"), fn1, fn2,
	}
	for _, x := range values {
		if !Equal(x, x) {
			t.Errorf("Equal(%s, %s) is false", Repr(x), Repr(x))
		}
		for _, y := range values {
			if Equal(x, y) != Equal(y, x) {
				t.Errorf("Equal is not symmetric for %s and %s", Repr(x), Repr(y))
			}
		}
	}
}

func TestEqual_LongLists(t *testing.T) {
	build := func() Value {
		vs := make([]Value, 1000000)
		for i := range vs {
			vs[i] = Num(i)
		}
		return ListFromSlice(vs, Nil)
	}
	if !Equal(build(), build()) {
		t.Errorf("long lists not equal")
	}
}
