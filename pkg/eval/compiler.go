package eval

import (
	"fmt"

	"src.kl.sh/pkg/diag"
	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/parse"
)

// compiler maintains the mutable state needed when compiling one expression.
// The immutable part is in compileCtx.
type compiler struct {
	// Information about the source, used in compilation errors.
	src  parse.Source
	tree *parse.Tree
	// Slot counters of the function bodies being compiled, innermost last.
	scopes []*scope
}

// scope counts the slots of one function body or top-level form.
type scope struct {
	nlocals int
	ntemps  int
}

// fab is the result of compiling an expression: statements that must be run
// first, an expression, and the tag of the expression.
type fab struct {
	stmts []stmtOp
	expr  valueOp
	tag   Tag
}

// op turns the fab into a single op.
func (f fab) op() valueOp {
	if len(f.stmts) == 0 {
		return f.expr
	}
	return &seqOp{f.stmts, f.expr}
}

// isolated returns a fab without statements, for expressions that are only
// evaluated conditionally.
func (f fab) isolated() fab {
	if len(f.stmts) == 0 {
		return f
	}
	return fab{expr: f.op(), tag: f.tag}
}

const compilationErrorType = "compilation error"

// compile compiles an expression from the given source. The tree may be nil
// when the expression was not read from the source.
func compile(src parse.Source, tree *parse.Tree, expr vals.Value, async bool) (op valueOp, sc *scope, err error) {
	cp := &compiler{src: src, tree: tree}
	defer func() {
		r := recover()
		if r == nil {
			return
		} else if e := getCompilationError(r); e != nil {
			// Save the compilation error and stop the panic.
			err = e
		} else {
			// Resume the panic; it is not supposed to be handled here.
			panic(r)
		}
	}()
	sc = cp.pushScope()
	return cp.compile(topContext(async), expr).op(), sc, nil
}

func (cp *compiler) errorpf(culprit vals.Value, format string, args ...any) {
	r := diag.UnknownRanging
	if c, ok := culprit.(*vals.Cons); ok {
		r = cp.tree.Range(c)
	}
	// The panic is caught by the recover in compile above.
	panic(&diag.Error{
		Type:    compilationErrorType,
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(cp.src.Name, cp.src.Code, r)})
}

func getCompilationError(r any) *diag.Error {
	if e, ok := r.(*diag.Error); ok && e.Type == compilationErrorType {
		return e
	}
	return nil
}

// GetCompilationError returns the compilation error in err's chain, or nil if
// there is none.
func GetCompilationError(err error) *diag.Error {
	return diag.GetError(err, compilationErrorType)
}

func (cp *compiler) pushScope() *scope {
	sc := &scope{}
	cp.scopes = append(cp.scopes, sc)
	return sc
}

func (cp *compiler) popScope() *scope {
	sc := cp.scopes[len(cp.scopes)-1]
	cp.scopes[len(cp.scopes)-1] = nil
	cp.scopes = cp.scopes[:len(cp.scopes)-1]
	return sc
}

// level returns the nesting level of the function body being compiled.
func (cp *compiler) level() int { return len(cp.scopes) - 1 }

func (cp *compiler) newLocal() int {
	sc := cp.scopes[len(cp.scopes)-1]
	sc.nlocals++
	return sc.nlocals - 1
}

func (cp *compiler) newTemp() int {
	sc := cp.scopes[len(cp.scopes)-1]
	sc.ntemps++
	return sc.ntemps - 1
}

func (cp *compiler) compile(c compileCtx, expr vals.Value) fab {
	switch e := expr.(type) {
	case vals.Num:
		if !e.IsFinite() {
			return fab{expr: literalOp{e}}
		}
		if e == 0 {
			return fab{expr: numLiteralOp(e), tag: TagNumber}
		}
		return fab{expr: numLiteralOp(e), tag: TagNzNumber}
	case vals.Str:
		return fab{expr: strLiteralOp(e), tag: TagString}
	case vals.Empty:
		return fab{expr: literalOp{vals.Nil}, tag: TagEmpty}
	case *vals.Symbol:
		if b, ok := c.lookup(e.Name()); ok {
			return fab{expr: localOp{cp.level() - b.level, b.slot}, tag: b.tag}
		}
		// A symbol that is not bound evaluates to itself.
		return fab{expr: literalOp{e}, tag: TagSymbol}
	case *vals.Cons:
		return cp.form(c, e)
	}
	cp.errorpf(expr, "not a valid form: %s", vals.Repr(expr))
	panic("unreachable")
}

// form compiles a special form, an inline primitive or an application.
func (cp *compiler) form(c compileCtx, form *vals.Cons) fab {
	args, err := vals.ListToSlice(form.Tail)
	if err != nil {
		cp.errorpf(form, "not a valid form: improper list")
	}
	if head, ok := form.Head.(*vals.Symbol); ok {
		if sf, ok := specialForms[head.Name()]; ok {
			if f, ok := cp.special(c, sf, form, args); ok {
				return f
			}
		}
		if in, ok := inlines[head.Name()]; ok && in.arity == len(args) && !c.has(head.Name()) {
			return cp.inline(c, in, args)
		}
	}
	return cp.app(c, form, args)
}

// compileArgs compiles expressions in head position, and assembles them.
func (cp *compiler) compileArgs(c compileCtx, exprs []vals.Value) ([]stmtOp, []fab) {
	fabs := make([]fab, len(exprs))
	for i, expr := range exprs {
		fabs[i] = cp.compile(c.head(), expr)
	}
	return cp.assemble(fabs)
}

// assemble combines sibling fabs that are evaluated left to right. It returns
// the statements of all fabs, and fabs with only expressions.
//
// The expression of a sibling must be evaluated before the statements of
// later siblings; unless it is trivial, it is stored in a temporary by a
// statement.
func (cp *compiler) assemble(fabs []fab) ([]stmtOp, []fab) {
	last := -1
	for i, f := range fabs {
		if len(f.stmts) > 0 {
			last = i
		}
	}
	var stmts []stmtOp
	out := make([]fab, len(fabs))
	for i, f := range fabs {
		stmts = append(stmts, f.stmts...)
		out[i] = fab{expr: f.expr, tag: f.tag}
		if i < last && !isTrivial(f.expr) {
			temp := cp.newTemp()
			stmts = append(stmts, assignTempStmt(temp, f.expr))
			out[i].expr = tempOp(temp)
		}
	}
	return stmts, out
}

// isTrivial reports whether an op has no effect, and its value cannot be
// changed by other ops.
func isTrivial(op valueOp) bool {
	switch op.(type) {
	case literalOp, numLiteralOp, strLiteralOp, boolLiteralOp, localOp:
		return true
	}
	return false
}

func exprsOf(fabs []fab) []valueOp {
	ops := make([]valueOp, len(fabs))
	for i, f := range fabs {
		ops[i] = f.expr
	}
	return ops
}

// joinTag returns the tag of an expression that is one of two expressions.
func joinTag(a, b Tag) Tag {
	switch {
	case a == b:
		return a
	case a.satisfies(TagNumber) && b.satisfies(TagNumber):
		return TagNumber
	case a.numeric() && b.numeric():
		return TagAnyNumber
	}
	return TagNone
}
