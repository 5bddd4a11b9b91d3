// Package vals contains the value model of KLambda: the closed set of value
// kinds, symbol interning, structural equality, representation and the casts
// that generated code uses to check operands.
package vals

import "math"

// Value is a KLambda value. The set of implementations is closed: Empty, Num,
// Str, *Symbol, *Cons, *Vector, *Error, the stream types implementing Stream
// and the function type of package eval.
type Value interface {
	// Kind returns the name of the kind of the value, like "number".
	Kind() string
}

// Names of kinds.
const (
	KindEmpty    = "empty"
	KindNumber   = "number"
	KindString   = "string"
	KindSymbol   = "symbol"
	KindCons     = "cons"
	KindVector   = "vector"
	KindFunction = "function"
	KindError    = "error"
	KindStream   = "stream"
)

// Empty is the type of the empty list.
type Empty struct{}

// Nil is the canonical empty list.
var Nil = Empty{}

func (Empty) Kind() string { return KindEmpty }

// Num is a number.
type Num float64

func (Num) Kind() string { return KindNumber }

// IsFinite reports whether the number is neither NaN nor infinite.
func (n Num) IsFinite() bool {
	return !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)
}

// Str is an immutable string.
type Str string

func (Str) Kind() string { return KindString }
