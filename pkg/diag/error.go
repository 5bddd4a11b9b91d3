package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents an error with context that can be showed.
type Error struct {
	Type    string
	Message string
	Context Context
	// Partial is set on parse errors caused only by the end of the input. More
	// input could turn the source into a valid one.
	Partial bool
}

// Variables controlling the style of the message.
var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Error returns a plain text representation of the error.
func (e *Error) Error() string {
	if !e.Context.Known() {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Type, e.Context.Describe(), e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Show shows the error, with the type capitalized and the source context on the
// following line.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s", capitalize(e.Type), messageStart, e.Message, messageEnd)
	if !e.Context.Known() {
		return header
	}
	return header + "\n" + indent + "  " + e.Context.Show(indent+"  ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// GetError returns the *Error in the chain of err with the given type, or nil
// if there is none.
func GetError(err error, typ string) *Error {
	var e *Error
	if errors.As(err, &e) && e.Type == typ {
		return e
	}
	return nil
}
