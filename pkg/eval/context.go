package eval

import (
	"github.com/xiaq/persistent/hash"
	"github.com/xiaq/persistent/hashmap"
)

type position int

const (
	// The value of the expression is needed right away, so calls must be
	// performed and pumped.
	headPos position = iota
	// The value of the expression is the value of the enclosing function, so
	// calls may be deferred.
	tailPos
)

// compileCtx is the compile-time environment of an expression. It is
// immutable; compiling a subexpression derives a new compileCtx.
type compileCtx struct {
	pos   position
	async bool
	// Names of lexically bound variables, mapped to their bindings.
	locals hashmap.Map
}

// binding locates a variable: the level of the function body it belongs to,
// and its slot in that body's frame. It also carries the tag of the value.
type binding struct {
	level int
	slot  int
	tag   Tag
}

var noLocals = hashmap.New(
	func(a, b any) bool { return a == b },
	func(k any) uint32 { return hash.String(k.(string)) })

func topContext(async bool) compileCtx {
	return compileCtx{headPos, async, noLocals}
}

func (c compileCtx) head() compileCtx {
	c.pos = headPos
	return c
}

func (c compileCtx) tail() compileCtx {
	c.pos = tailPos
	return c
}

// clear returns a context with no local variables.
func (c compileCtx) clear() compileCtx {
	c.locals = noLocals
	return c
}

func (c compileCtx) bind(name string, b binding) compileCtx {
	c.locals = c.locals.Assoc(name, b)
	return c
}

func (c compileCtx) lookup(name string) (binding, bool) {
	b, ok := c.locals.Index(name)
	if !ok {
		return binding{}, false
	}
	return b.(binding), true
}

func (c compileCtx) has(name string) bool {
	_, ok := c.locals.Index(name)
	return ok
}

// refine returns a context where the local variable has a more specific tag.
// It returns c unchanged if the name is not bound.
func (c compileCtx) refine(name string, tag Tag) compileCtx {
	b, ok := c.lookup(name)
	if !ok {
		return c
	}
	b.tag = tag
	return c.bind(name, b)
}
