// Package parse implements the KLambda reader.
//
// The grammar is that of S-expressions. Tokens are separated by whitespace; a
// pair of double quotes delimits a string, with no escape sequences; an
// optional sign followed by digits, optionally followed by a dot and more
// digits, is a number; any other maximal run of characters that are neither
// whitespace nor parentheses is a symbol. A parenthesized sequence of forms is
// a list, and () is the empty list.
//
// The reader produces values directly; there is no separate syntax tree.
// Source ranges of lists are kept in a side table of the Tree, so that
// compilation errors can point to the offending form.
package parse

import (
	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval/vals"
)

// Tree is the result of parsing a Source.
type Tree struct {
	Source Source
	// Top-level forms, in source order.
	Forms []vals.Value
	// Ranges of the top-level forms.
	FormRanges []diag.Ranging

	ranges map[*vals.Cons]diag.Ranging
}

// Range returns the source range of a list read from the source. It returns
// UnknownRanging if the list did not come from this tree.
func (t *Tree) Range(c *vals.Cons) diag.Ranging {
	if t == nil {
		return diag.UnknownRanging
	}
	if r, ok := t.ranges[c]; ok {
		return r
	}
	return diag.UnknownRanging
}

// ErrorType is the Type of all errors returned by Parse.
const ErrorType = "parse error"

// Messages of parse errors.
const (
	msgUnterminatedString = "string not terminated"
	msgUnterminatedForm   = "form not terminated, should be ')'"
	msgUnexpectedRParen   = "unexpected ')'"
)

// Parse parses all top-level forms in the given source. If the error is not
// nil, it always has type *diag.Error, and the returned Tree is nil.
func Parse(src Source) (*Tree, error) {
	ps := &parser{
		srcName: src.Name, src: src.Code,
		tree: &Tree{Source: src, ranges: make(map[*vals.Cons]diag.Ranging)},
	}
	ps.parseTop()
	if ps.err != nil {
		return nil, ps.err
	}
	return ps.tree, nil
}

// ParseAll parses text and returns the top-level forms.
func ParseAll(text string) ([]vals.Value, error) {
	tree, err := Parse(Source{Name: "[kl]", Code: text})
	if err != nil {
		return nil, err
	}
	return tree.Forms, nil
}

// IsIncomplete reports whether err is a parse error caused only by a premature
// end of input. Appending more text to the source could make it parse.
func IsIncomplete(err error) bool {
	e := diag.GetError(err, ErrorType)
	return e != nil && e.Partial
}
