package evaltest

import (
	"fmt"

	"src.kl.sh/pkg/eval"
	"src.kl.sh/pkg/eval/vals"
)

type errorMatcher interface{ matchError(error) bool }

// An errorMatcher for compilation errors.
type compilationError struct {
	msgs []string
}

func (e compilationError) Error() string {
	if len(e.msgs) == 0 {
		return "any compilation error"
	}
	return fmt.Sprintf("compilation error with message %v", e.msgs)
}

func (e compilationError) matchError(e2 error) bool {
	err := eval.GetCompilationError(e2)
	if err == nil {
		return false
	}
	if len(e.msgs) == 0 {
		return true
	}
	for _, msg := range e.msgs {
		if msg == err.Message {
			return true
		}
	}
	return false
}

// ErrorWithClass returns an error that can be passed to Case.Throws to match
// any *vals.Error of the given class.
func ErrorWithClass(c vals.ErrorClass) error { return errWithClass{c} }

type errWithClass struct{ c vals.ErrorClass }

func (e errWithClass) Error() string { return fmt.Sprintf("any %s", e.c) }

func (e errWithClass) matchError(e2 error) bool {
	err, ok := e2.(*vals.Error)
	return ok && err.Class == e.c
}

// ErrorWithMessage returns an error that can be passed to Case.Throws to match
// any error with the given message.
func ErrorWithMessage(msg string) error { return errWithMessage{msg} }

type errWithMessage struct{ msg string }

func (e errWithMessage) Error() string { return "error with message " + e.msg }

func (e errWithMessage) matchError(e2 error) bool {
	return e2 != nil && e.msg == e2.Error()
}

// AnyError is an error that can be passed to Case.Throws to match any error.
var AnyError error = anyError{}

type anyError struct{}

func (anyError) Error() string            { return "any error" }
func (anyError) matchError(e2 error) bool { return e2 != nil }

// OneOfErrors returns an error that can be passed to Case.Throws to match any
// of the given errors.
func OneOfErrors(errs ...error) error { return errOneOf{errs} }

type errOneOf struct{ errs []error }

func (e errOneOf) Error() string { return fmt.Sprint("one of ", e.errs) }

func (e errOneOf) matchError(gotError error) bool {
	for _, want := range e.errs {
		if matchErr(want, gotError) {
			return true
		}
	}
	return false
}
