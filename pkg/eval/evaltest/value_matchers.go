package evaltest

import (
	"fmt"
	"math"
	"regexp"

	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
)

// ValueMatcher is a value that can be passed to [Case.Puts] and has its own
// matching semantics.
type ValueMatcher interface {
	fmt.Stringer
	matchValue(vals.Value) bool
}

// Anything matches any value.
var Anything ValueMatcher = anything{}

type anything struct{}

func (anything) String() string               { return "anything" }
func (anything) matchValue(v vals.Value) bool { return v != nil }

// ApproximatelyThreshold defines the threshold for matching numbers when
// using [Approximately].
const ApproximatelyThreshold = 1e-15

// Approximately matches a number within the threshold defined by
// [ApproximatelyThreshold].
func Approximately(f float64) ValueMatcher { return approximately{f} }

type approximately struct{ value float64 }

func (a approximately) String() string { return fmt.Sprintf("approximately %v", a.value) }

func (a approximately) matchValue(v vals.Value) bool {
	if n, ok := v.(vals.Num); ok {
		return math.Abs(a.value-float64(n)) <= ApproximatelyThreshold
	}
	return false
}

// StringMatching matches any string matching a regexp pattern. If the pattern
// is not a valid regexp, the function panics.
func StringMatching(p string) ValueMatcher { return stringMatching{regexp.MustCompile(p)} }

type stringMatching struct{ pattern *regexp.Regexp }

func (s stringMatching) String() string { return "string matching " + s.pattern.String() }

func (s stringMatching) matchValue(v vals.Value) bool {
	if str, ok := v.(vals.Str); ok {
		return s.pattern.MatchString(string(str))
	}
	return false
}

// FunctionNamed matches a function with the given name and arity.
func FunctionNamed(name string, arity int) ValueMatcher { return functionNamed{name, arity} }

type functionNamed struct {
	name  string
	arity int
}

func (f functionNamed) String() string {
	return fmt.Sprintf("function %s of arity %d", f.name, f.arity)
}

func (f functionNamed) matchValue(v vals.Value) bool {
	fn, ok := v.(*eval.Function)
	return ok && fn.Name() == f.name && fn.Arity() == f.arity
}

// ListOf matches a proper list whose elements match the given values, which
// are converted with FromGo unless they are ValueMatchers.
func ListOf(elems ...any) ValueMatcher { return listOf{elems} }

type listOf struct{ elems []any }

func (l listOf) String() string { return fmt.Sprintf("list of %v", l.elems) }

func (l listOf) matchValue(v vals.Value) bool {
	items, err := vals.ListToSlice(v)
	if err != nil || len(items) != len(l.elems) {
		return false
	}
	for i, item := range items {
		if !match(item, l.elems[i]) {
			return false
		}
	}
	return true
}
