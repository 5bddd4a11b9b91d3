package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a named source. It is typically used for
// errors that can be associated with a part of the source code, like parse
// errors and compilation errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Describe returns "name:line:col" for a known position, and just the name
// followed by a note otherwise.
func (c *Context) Describe() string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	line, col := c.lineCol(c.From)
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the position description followed by the relevant source, with
// the culprit highlighted. Lines after the first are prefixed by indent plus
// enough spaces to line up with the first.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Describe() + ": "
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) checkPosition() error {
	switch {
	case !c.Known():
		return fmt.Errorf("%s, unknown position", c.Name)
	case c.To > len(c.Source) || c.From > c.To:
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

// Returns the 1-based line and column of the byte position p.
func (c *Context) lineCol(p int) (int, int) {
	before := c.Source[:p]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]) + 1
	return line, col
}

func (c *Context) relevantSource(indent string) string {
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	var sb strings.Builder
	sb.WriteString(before[strings.LastIndexByte(before, '\n')+1:])

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else if i := strings.IndexByte(after, '\n'); i >= 0 {
		tail = after[:i]
	} else {
		tail = after
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}
