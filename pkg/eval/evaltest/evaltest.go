// Package evaltest provides a framework for testing KLambda programs.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases. Every case is run twice, in a
// synchronous session and in an asynchronous one, and must behave the same in
// both.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("(+ 1 2)").Puts(3),
//	    That("(write-byte 65 (value *stoutput*))").Prints("A"))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/parse"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes     []string
	stdin     string
	config    func(*eval.Config)
	setup     func(*eval.Evaler)
	verify    func(t *testing.T, ev *eval.Evaler)
	want      result
	wantValue any
	checkPuts bool
}

type result struct {
	Value    vals.Value
	BytesOut string

	CompilationError error
	Exception        error
}

// That returns a new Case with the specified source code. Multiple arguments
// are joined with newlines. To specify multiple pieces of code that are
// evaluated separately, use the Then method to append code pieces.
//
// When combined with subsequent method calls, a test case reads like English.
// For example, a test for the fact that "(+ 1 2)" evaluates to 3 reads:
//
//	That("(+ 1 2)").Puts(3)
func That(lines ...string) Case {
	return Case{codes: []string{strings.Join(lines, "\n")}}
}

// Then returns a new Case that evaluates the given code in addition. Multiple
// arguments are joined with newlines.
func (c Case) Then(lines ...string) Case {
	c.codes = append(c.codes, strings.Join(lines, "\n"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is evaluated.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// WithConfig returns a new Case with the given function applied to the
// configuration of the Evaler before it is created.
func (c Case) WithConfig(f func(*eval.Config)) Case {
	c.config = f
	return c
}

// WithStdin returns a new Case whose standard input stream reads s.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// Passes returns an altered Case that runs an additional verification
// function after the code is evaluated.
func (c Case) Passes(f func(t *testing.T, ev *eval.Evaler)) Case {
	c.verify = f
	return c
}

// Puts returns an altered Case that requires the value of the last piece of
// code to be v. Go values of type int, float64, string and bool are converted
// to KLambda values; v may also be a ValueMatcher.
func (c Case) Puts(v any) Case {
	c.wantValue = v
	c.checkPuts = true
	return c
}

// Prints returns an altered Case that requires the source code to write the
// specified output to the standard output stream.
func (c Case) Prints(s string) Case {
	c.want.BytesOut = s
	return c
}

// Throws returns an altered Case that requires the source code to raise an
// error. The argument is either a *vals.Error, compared by class and message,
// or a matcher constructed by functions like ErrorWithMessage.
func (c Case) Throws(reason error) Case {
	c.want.Exception = reason
	return c
}

// DoesNotCompile returns an altered Case that requires the source code to fail
// compilation. If any messages are given, the messages of the compilation
// errors of the code pieces must be them.
func (c Case) DoesNotCompile(msgs ...string) Case {
	c.want.CompilationError = compilationError{msgs}
	return c
}

// Test runs test cases. For each test case and each mode, a new Evaler is
// created with NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// Modes in which each test case is run.
var modes = []struct {
	name  string
	async bool
}{{"sync", false}, {"async", true}}

// TestWithSetup runs test cases. For each test case and each mode, a new
// Evaler is created with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		tc := tc
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			for _, mode := range modes {
				mode := mode
				t.Run(mode.name, func(t *testing.T) {
					t.Helper()
					testCase(t, setup, tc, mode.async)
				})
			}
		})
	}
}

func testCase(t *testing.T, setup func(*eval.Evaler), tc Case, async bool) {
	t.Helper()
	stdout := NewOutBuffer("stdout")
	cfg := eval.Config{
		Async:  async,
		Clock:  NewClock(),
		Stdin:  NewInString("stdin", tc.stdin),
		Stdout: stdout,
	}
	if tc.config != nil {
		tc.config(&cfg)
	}
	ev := eval.NewEvaler(cfg)
	setup(ev)
	if tc.setup != nil {
		tc.setup(ev)
	}

	r := evalAndCollect(t, ev, tc.codes)
	r.BytesOut = stdout.String()

	if tc.verify != nil {
		tc.verify(t, ev)
	}
	if tc.checkPuts && !match(r.Value, tc.wantValue) {
		t.Errorf("got value %s, want %s", reprOrNil(r.Value), describeWant(tc.wantValue))
	}
	if r.BytesOut != tc.want.BytesOut {
		t.Errorf("got bytes out %q, want %q", r.BytesOut, tc.want.BytesOut)
	}
	if !matchErr(tc.want.CompilationError, r.CompilationError) {
		t.Errorf("got compilation error %v, want %v",
			r.CompilationError, tc.want.CompilationError)
	}
	if !matchErr(tc.want.Exception, r.Exception) {
		t.Errorf("unexpected exception")
		t.Logf("got: %T: %v", r.Exception, r.Exception)
		t.Errorf("want: %v", tc.want.Exception)
	}
}

func evalAndCollect(t *testing.T, ev *eval.Evaler, texts []string) result {
	var r result
	for _, text := range texts {
		v, err := evalSource(ev, parse.Source{Name: "[test]", Code: text})

		if diag.GetError(err, parse.ErrorType) != nil {
			t.Fatalf("Parse(%q) error: %s", text, err)
		} else if eval.GetCompilationError(err) != nil {
			// NOTE: If multiple code pieces have compilation errors, only the
			// last one compilation error is saved.
			r.CompilationError = err
		} else if err != nil {
			// NOTE: If multiple code pieces raise errors, only the last one is
			// saved.
			r.Exception = err
		}
		r.Value = v
	}
	return r
}

// evalSource evaluates all the forms in the source. Asynchronous sessions run
// each form on its own goroutine with EvalKlAsync.
func evalSource(ev *eval.Evaler, src parse.Source) (vals.Value, error) {
	if !ev.Async() {
		return ev.Eval(src)
	}
	tree, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	var v vals.Value = vals.Nil
	for _, form := range tree.Forms {
		v, err = ev.EvalKlAsync(form).Await()
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func match(got vals.Value, want any) bool {
	if m, ok := want.(ValueMatcher); ok {
		return m.matchValue(got)
	}
	if got == nil {
		return want == nil
	}
	return vals.Equal(got, FromGo(want))
}

func matchErr(want, got error) bool {
	if want == nil {
		return got == nil
	}
	if matcher, ok := want.(errorMatcher); ok {
		return matcher.matchError(got)
	}
	return cmp.Equal(want, got)
}

// FromGo converts a Go value of type int, float64, string or bool to a
// KLambda value. A vals.Value is returned as it is, and any other value causes
// a panic.
func FromGo(v any) vals.Value {
	switch v := v.(type) {
	case int:
		return vals.Num(v)
	case float64:
		return vals.Num(v)
	case string:
		return vals.Str(v)
	case bool:
		return vals.FromBool(v)
	case vals.Value:
		return v
	}
	panic("cannot convert to a value")
}

func reprOrNil(v vals.Value) string {
	if v == nil {
		return "no value"
	}
	return vals.Repr(v)
}

func describeWant(v any) string {
	if m, ok := v.(ValueMatcher); ok {
		return m.String()
	}
	if v == nil {
		return "no value"
	}
	return vals.Repr(FromGo(v))
}
