package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval/vals"
)

// parser maintains the mutable state of parsing. Parsing stops at the first
// error.
type parser struct {
	srcName string
	src     string
	pos     int
	tree    *Tree
	err     *diag.Error
}

const eof rune = -1

func (ps *parser) peek() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
	return r
}

func (ps *parser) next() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
	ps.pos += s
	return r
}

// errorp records an error. Errors are partial when the parser ran into the end
// of input while still inside a form or string.
func (ps *parser) errorp(r diag.Ranging, msg string, partial bool) {
	if ps.err != nil {
		return
	}
	ps.err = &diag.Error{
		Type:    ErrorType,
		Message: msg,
		Context: *diag.NewContext(ps.srcName, ps.src, r),
		Partial: partial,
	}
}

func (ps *parser) skipSpaces() {
	for unicode.IsSpace(ps.peek()) {
		ps.next()
	}
}

func (ps *parser) parseTop() {
	for ps.err == nil {
		ps.skipSpaces()
		switch ps.peek() {
		case eof:
			return
		case ')':
			ps.errorp(diag.Ranging{From: ps.pos, To: ps.pos + 1}, msgUnexpectedRParen, false)
			return
		}
		begin := ps.pos
		v := ps.parseForm()
		ps.tree.Forms = append(ps.tree.Forms, v)
		ps.tree.FormRanges = append(ps.tree.FormRanges, diag.Ranging{From: begin, To: ps.pos})
	}
}

// parseForm parses one form. It must be called when the next rune starts a
// form, i.e. is neither whitespace, ')' nor EOF.
func (ps *parser) parseForm() vals.Value {
	switch ps.peek() {
	case '(':
		return ps.parseList()
	case '"':
		return ps.parseString()
	default:
		return ps.parseAtom()
	}
}

func (ps *parser) parseList() vals.Value {
	begin := ps.pos
	ps.next()
	var elems []vals.Value
	for {
		ps.skipSpaces()
		switch ps.peek() {
		case eof:
			ps.errorp(diag.Ranging{From: begin, To: ps.pos}, msgUnterminatedForm, true)
			return vals.Nil
		case ')':
			ps.next()
			l := vals.ListFromSlice(elems, vals.Nil)
			if c, ok := l.(*vals.Cons); ok {
				ps.tree.ranges[c] = diag.Ranging{From: begin, To: ps.pos}
			}
			return l
		}
		elems = append(elems, ps.parseForm())
		if ps.err != nil {
			return vals.Nil
		}
	}
}

func (ps *parser) parseString() vals.Value {
	begin := ps.pos
	ps.next()
	end := strings.IndexByte(ps.src[ps.pos:], '"')
	if end == -1 {
		ps.pos = len(ps.src)
		ps.errorp(diag.Ranging{From: begin, To: ps.pos}, msgUnterminatedString, true)
		return vals.Str("")
	}
	s := ps.src[ps.pos : ps.pos+end]
	ps.pos += end + 1
	return vals.Str(s)
}

func (ps *parser) parseAtom() vals.Value {
	begin := ps.pos
	for r := ps.peek(); r != eof && r != '(' && r != ')' && !unicode.IsSpace(r); r = ps.peek() {
		ps.next()
	}
	text := ps.src[begin:ps.pos]
	if isNumber(text) {
		// isNumber only admits forms ParseFloat accepts.
		f, _ := strconv.ParseFloat(text, 64)
		return vals.Num(f)
	}
	return vals.Intern(text)
}

// isNumber reports whether the token matches [+-]?[0-9]+(\.[0-9]+)?.
func isNumber(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	intPart := leadingDigits(s)
	if intPart == 0 {
		return false
	}
	s = s[intPart:]
	if s == "" {
		return true
	}
	if s[0] != '.' {
		return false
	}
	s = s[1:]
	return s != "" && leadingDigits(s) == len(s)
}

func leadingDigits(s string) int {
	i := 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
	}
	return i
}
