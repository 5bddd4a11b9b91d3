// Package tt supports table-driven tests with little boilerplate.
//
// A test table is a list of cases built with Args(...).Rets(...); Test calls a
// function with each case's arguments and compares the return values with
// go-cmp, or with a Matcher when one is given.
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table represents a test table.
type Table []*Case

// Case represents a test case. It is created by the Args function, and offers
// setters that augment and return itself; those calls can be chained like
// Args(...).Rets(...).
type Case struct {
	args []any
	rets []any
}

// Args returns a new Case with the given arguments.
func Args(args ...any) *Case {
	return &Case{args: args}
}

// Rets sets the wanted return values of the case and returns the receiver.
// The values may implement Matcher.
func (c *Case) Rets(rets ...any) *Case {
	c.rets = rets
	return c
}

// FnToTest describes a function to test.
type FnToTest struct {
	name string
	body any
}

// Fn makes a new FnToTest with the given function name and body.
func Fn(name string, body any) *FnToTest {
	return &FnToTest{name, body}
}

// T is the interface for accessing testing.T.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match.
	Match(got any) bool
}

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(any) bool { return true }

// Test tests a function against test cases.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		if test.rets == nil {
			continue
		}
		if len(rets) != len(test.rets) {
			t.Errorf("%s(%s) returns %d values, want %d",
				fn.name, sprintArgs(test.args), len(rets), len(test.rets))
			continue
		}
		for i, want := range test.rets {
			if m, ok := want.(Matcher); ok {
				if !m.Match(rets[i]) {
					t.Errorf("%s(%s) return value #%d is %v, which does not match",
						fn.name, sprintArgs(test.args), i, rets[i])
				}
			} else if diff := cmp.Diff(want, rets[i], allowUnexported); diff != "" {
				t.Errorf("%s(%s) return value #%d (-want +got):\n%s",
					fn.name, sprintArgs(test.args), i, diff)
			}
		}
	}
}

// Values are compared field by field, including unexported fields.
var allowUnexported = cmp.Exporter(func(reflect.Type) bool { return true })

func sprintArgs(args []any) string {
	strs := make([]string, len(args))
	for i, arg := range args {
		strs[i] = fmt.Sprint(arg)
	}
	return strings.Join(strs, ", ")
}

func call(fn any, args []any) []any {
	fnType := reflect.TypeOf(fn)
	argsReflect := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// Use the zero value of the parameter type.
			var paramType reflect.Type
			if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
				paramType = fnType.In(fnType.NumIn() - 1).Elem()
			} else {
				paramType = fnType.In(i)
			}
			argsReflect[i] = reflect.Zero(paramType)
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, retReflect := range retsReflect {
		rets[i] = retReflect.Interface()
	}
	return rets
}
