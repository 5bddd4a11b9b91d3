package vals

import "fmt"

// ErrorClass classifies run-time errors. All classes can be caught by
// trap-error.
type ErrorClass int

// Possible ErrorClass values.
const (
	// UserError is raised explicitly by a program with simple-error, and also
	// used for failures reported by the host environment.
	UserError ErrorClass = iota
	// TypeError is raised when an operand is not of the required kind.
	TypeError
	// ArithmeticError is raised on division by zero.
	ArithmeticError
	// LookupError is raised for unbound globals and bad vector indices.
	LookupError
)

var errorClassNames = [...]string{
	UserError:       "user error",
	TypeError:       "type error",
	ArithmeticError: "arithmetic error",
	LookupError:     "lookup error",
}

func (c ErrorClass) String() string {
	if c < 0 || int(c) >= len(errorClassNames) {
		return "unknown error"
	}
	return errorClassNames[c]
}

// Error is a raised condition. It is both a Go error, returned from generated
// code, and a KLambda value, bound by trap-error handlers.
type Error struct {
	Class   ErrorClass
	Message string
}

func (*Error) Kind() string { return KindError }

func (e *Error) Error() string { return e.Message }

// NewError returns a new UserError with the given message.
func NewError(msg string) *Error { return &Error{UserError, msg} }

func errorf(c ErrorClass, format string, args ...any) *Error {
	return &Error{c, fmt.Sprintf(format, args...)}
}

// TypeErrorf returns a new TypeError.
func TypeErrorf(format string, args ...any) *Error { return errorf(TypeError, format, args...) }

// LookupErrorf returns a new LookupError.
func LookupErrorf(format string, args ...any) *Error { return errorf(LookupError, format, args...) }

// UserErrorf returns a new UserError.
func UserErrorf(format string, args ...any) *Error { return errorf(UserError, format, args...) }

var (
	errNotList           = &Error{TypeError, "not a valid list"}
	errNumberExpected    = &Error{TypeError, "number expected"}
	errStringExpected    = &Error{TypeError, "string expected"}
	errNeStringExpected  = &Error{TypeError, "non-empty string expected"}
	errSymbolExpected    = &Error{TypeError, "symbol expected"}
	errConsExpected      = &Error{TypeError, "cons expected"}
	errVectorExpected    = &Error{TypeError, "vector expected"}
	errErrorExpected     = &Error{TypeError, "error expected"}
	errStreamExpected    = &Error{TypeError, "stream expected"}
	errInStreamExpected  = &Error{TypeError, "input stream expected"}
	errOutStreamExpected = &Error{TypeError, "output stream expected"}
	errBoolExpected      = &Error{TypeError, "boolean expected"}
	errDivisionByZero    = &Error{ArithmeticError, "division by zero"}
)
