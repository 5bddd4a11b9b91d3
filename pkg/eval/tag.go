package eval

import "src.kl.sh/pkg/eval/vals"

// Tag is the statically known kind of a compiled expression. It is purely
// bookkeeping for the compiler: a tag decides which run-time checks can be
// skipped, and never changes what a program does.
type Tag int

// Possible values of Tag.
const (
	// TagNone means nothing is known about the value.
	TagNone Tag = iota
	// TagNumber is a finite number.
	TagNumber
	// TagNzNumber is a finite number that is not zero.
	TagNzNumber
	// TagAnyNumber is a number computed by arithmetic. It may be infinite or
	// NaN, so it is checked where a finite number is required.
	TagAnyNumber
	TagString
	TagSymbol
	TagCons
	// TagBool is a Go bool. Expressions with this tag are converted to the
	// symbols true and false where a value is needed.
	TagBool
	TagEmpty
	TagError
)

var tagNames = [...]string{
	TagNone: "none", TagNumber: "number", TagNzNumber: "non-zero number",
	TagAnyNumber: "any number", TagString: "string", TagSymbol: "symbol",
	TagCons: "cons", TagBool: "bool", TagEmpty: "empty", TagError: "error",
}

func (t Tag) String() string { return tagNames[t] }

// satisfies reports whether a value tagged t is known to also be of tag want.
func (t Tag) satisfies(want Tag) bool {
	return t == want || (t == TagNzNumber && want == TagNumber)
}

// numeric reports whether a value tagged t is known to be a number, finite or
// not.
func (t Tag) numeric() bool {
	return t == TagNumber || t == TagNzNumber || t == TagAnyNumber
}

// boxed returns the tag of the value an expression produces when it is stored
// or passed around. A Go bool becomes a symbol.
func (t Tag) boxed() Tag {
	if t == TagBool {
		return TagSymbol
	}
	return t
}

// kind describes how to get a Go value of type T out of an expression that is
// required to have a certain tag.
type kind[T any] struct {
	tag Tag
	// Checks a value of unknown kind.
	cast func(vals.Value) (T, error)
	// Converts a value that is known to have the tag.
	unbox func(vals.Value) T
}

var (
	numberKind = kind[float64]{TagNumber, vals.AsNumber,
		func(v vals.Value) float64 { return float64(v.(vals.Num)) }}
	nzNumberKind = kind[float64]{TagNzNumber, vals.AsNzNumber,
		func(v vals.Value) float64 { return float64(v.(vals.Num)) }}
	stringKind = kind[string]{TagString, vals.AsString,
		func(v vals.Value) string { return string(v.(vals.Str)) }}
	symbolKind = kind[*vals.Symbol]{TagSymbol, vals.AsSymbol,
		func(v vals.Value) *vals.Symbol { return v.(*vals.Symbol) }}
	consKind = kind[*vals.Cons]{TagCons, vals.AsCons,
		func(v vals.Value) *vals.Cons { return v.(*vals.Cons) }}
	errorKind = kind[*vals.Error]{TagError, vals.AsError,
		func(v vals.Value) *vals.Error { return v.(*vals.Error) }}
	boolKind = kind[bool]{TagBool, vals.AsBool,
		func(v vals.Value) bool { return v == vals.True }}
)

// need returns an op that evaluates f's expression as a Go value of kind k.
// A run-time check is only inserted when f's tag does not satisfy k.
func need[T any](f fab, k kind[T]) getter[T] {
	if f.tag.satisfies(k.tag) {
		if g, ok := f.expr.(getter[T]); ok {
			return g
		}
		return unboxOp[T]{f.expr, k.unbox}
	}
	if f.tag == TagAnyNumber && k.tag == TagNumber {
		if g, ok := f.expr.(getter[float64]); ok {
			if fg, ok := any(finiteOp{g}).(getter[T]); ok {
				return fg
			}
		}
	}
	return castOp[T]{f.expr, k.cast}
}

// needNz is like need(f, nzNumberKind), but a known number only gets the check
// for zero.
func needNz(f fab) getter[float64] {
	if f.tag == TagNumber || f.tag == TagAnyNumber {
		return nzCheckOp{need(f, numberKind)}
	}
	return need(f, nzNumberKind)
}

type unboxOp[T any] struct {
	op    valueOp
	unbox func(vals.Value) T
}

func (op unboxOp[T]) eval(fm *frame) (Result, error) { return op.op.eval(fm) }

func (op unboxOp[T]) get(fm *frame) (T, error) {
	v, err := evalValue(fm, op.op)
	if err != nil {
		var zero T
		return zero, err
	}
	return op.unbox(v), nil
}

type castOp[T any] struct {
	op   valueOp
	cast func(vals.Value) (T, error)
}

func (op castOp[T]) eval(fm *frame) (Result, error) { return op.op.eval(fm) }

func (op castOp[T]) get(fm *frame) (T, error) {
	v, err := evalValue(fm, op.op)
	if err != nil {
		var zero T
		return zero, err
	}
	return op.cast(v)
}

// finiteOp checks that a number computed by arithmetic is finite.
type finiteOp struct{ op getter[float64] }

func (op finiteOp) eval(fm *frame) (Result, error) { return op.op.eval(fm) }

func (op finiteOp) get(fm *frame) (float64, error) {
	f, err := op.op.get(fm)
	if err != nil {
		return 0, err
	}
	return vals.AsNumber(vals.Num(f))
}

type nzCheckOp struct{ op getter[float64] }

func (op nzCheckOp) eval(fm *frame) (Result, error) { return op.op.eval(fm) }

func (op nzCheckOp) get(fm *frame) (float64, error) {
	f, err := op.op.get(fm)
	if err != nil {
		return 0, err
	}
	return vals.CheckNz(f)
}
