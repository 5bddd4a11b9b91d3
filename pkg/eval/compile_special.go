package eval

import (
	"errors"

	"src.kl.sh/pkg/eval/vals"
)

type specialForm int

const (
	sfIf specialForm = iota
	sfCond
	sfAnd
	sfOr
	sfDo
	sfLet
	sfTrapError
	sfLambda
	sfFreeze
	sfDefun
	sfCons
	sfSet
	sfValue
)

var specialForms = map[string]specialForm{
	"if": sfIf, "cond": sfCond, "and": sfAnd, "or": sfOr, "do": sfDo,
	"let": sfLet, "trap-error": sfTrapError, "lambda": sfLambda,
	"freeze": sfFreeze, "defun": sfDefun, "cons": sfCons, "set": sfSet,
	"value": sfValue,
}

// special compiles a special form. Forms that are also primitive functions
// report false when the number of arguments does not match, and are then
// compiled as applications of the primitive.
func (cp *compiler) special(c compileCtx, sf specialForm, form *vals.Cons, args []vals.Value) (fab, bool) {
	switch sf {
	case sfIf:
		cp.requireArgs(form, "if", args, 3)
		return cp.ifForm(c, args[0], args[1], args[2]), true
	case sfCond:
		return cp.condForm(c, form, args), true
	case sfAnd, sfOr:
		if len(args) != 2 {
			return fab{}, false
		}
		return cp.andOr(c, sf == sfAnd, args[0], args[1]), true
	case sfDo:
		if len(args) < 2 {
			cp.errorpf(form, "do requires at least 2 arguments, got %d", len(args))
		}
		return cp.do(c, flattenDo(args)), true
	case sfLet:
		cp.requireArgs(form, "let", args, 3)
		return cp.let(c, form, args[0], args[1], args[2]), true
	case sfTrapError:
		cp.requireArgs(form, "trap-error", args, 2)
		return cp.trapError(c, args[0], args[1]), true
	case sfLambda:
		cp.requireArgs(form, "lambda", args, 2)
		param := cp.requireSymbol(form, args[0])
		return fab{expr: cp.lambda(c, "", []*vals.Symbol{param}, args[1])}, true
	case sfFreeze:
		cp.requireArgs(form, "freeze", args, 1)
		return fab{expr: cp.lambda(c, "", nil, args[0])}, true
	case sfDefun:
		cp.requireArgs(form, "defun", args, 3)
		return cp.defun(c, form, args[0], args[1], args[2]), true
	case sfCons:
		if len(args) != 2 {
			return fab{}, false
		}
		return cp.cons(c, args[0], args[1]), true
	case sfSet:
		if len(args) != 2 {
			return fab{}, false
		}
		return cp.set(c, args[0], args[1]), true
	case sfValue:
		if len(args) != 1 {
			return fab{}, false
		}
		return cp.value(c, args[0]), true
	}
	panic("unknown special form")
}

func (cp *compiler) requireArgs(form *vals.Cons, name string, args []vals.Value, n int) {
	if len(args) != n {
		cp.errorpf(form, "%s requires %d arguments, got %d", name, n, len(args))
	}
}

func (cp *compiler) requireSymbol(form *vals.Cons, v vals.Value) *vals.Symbol {
	sym, ok := v.(*vals.Symbol)
	if !ok {
		cp.errorpf(form, "variable must be a symbol, got %s", vals.Repr(v))
	}
	return sym
}

// Recognisors whose truth tells the kind of their argument.
var recognisors = map[string]Tag{
	"cons?": TagCons, "number?": TagNumber, "string?": TagString, "symbol?": TagSymbol,
}

// recognised checks whether cond is a recognisor applied to a local variable.
func recognised(c compileCtx, cond vals.Value) (string, Tag, bool) {
	items, err := vals.ListToSlice(cond)
	if err != nil || len(items) != 2 {
		return "", TagNone, false
	}
	f, ok1 := items[0].(*vals.Symbol)
	x, ok2 := items[1].(*vals.Symbol)
	if !ok1 || !ok2 || c.has(f.Name()) || !c.has(x.Name()) {
		return "", TagNone, false
	}
	tag, ok := recognisors[f.Name()]
	return x.Name(), tag, ok
}

func (cp *compiler) ifForm(c compileCtx, cond, ifTrue, ifFalse vals.Value) fab {
	if cond == vals.True {
		return cp.compile(c, ifTrue)
	}
	condFab := cp.compile(c.head(), cond)
	condOp := need(condFab, boolKind)
	trueCtx := c
	if name, tag, ok := recognised(c, cond); ok {
		trueCtx = c.refine(name, tag)
	}
	t := cp.compile(trueCtx, ifTrue)
	f := cp.compile(c, ifFalse)
	tag := joinTag(t.tag, f.tag)
	if len(t.stmts) > 0 || len(f.stmts) > 0 {
		temp := cp.newTemp()
		stmt := &ifStmt{condOp,
			append(t.stmts[:len(t.stmts):len(t.stmts)], assignTempStmt(temp, t.expr)),
			append(f.stmts[:len(f.stmts):len(f.stmts)], assignTempStmt(temp, f.expr))}
		return fab{append(condFab.stmts, stmt), tempOp(temp), tag}
	}
	return fab{condFab.stmts, &selectOp{condOp, t.expr, f.expr}, tag}
}

// ifStmt runs one of two statement lists.
type ifStmt struct {
	cond            getter[bool]
	ifTrue, ifFalse []stmtOp
}

func (s *ifStmt) exec(fm *frame) error {
	b, err := s.cond.get(fm)
	if err != nil {
		return err
	}
	if b {
		return execAll(fm, s.ifTrue)
	}
	return execAll(fm, s.ifFalse)
}

// selectOp evaluates one of two expressions.
type selectOp struct {
	cond            getter[bool]
	ifTrue, ifFalse valueOp
}

func (op *selectOp) eval(fm *frame) (Result, error) {
	b, err := op.cond.get(fm)
	if err != nil {
		return Result{}, err
	}
	if b {
		return op.ifTrue.eval(fm)
	}
	return op.ifFalse.eval(fm)
}

var (
	symIf          = vals.Intern("if")
	symDo          = vals.Intern("do")
	symLet         = vals.Intern("let")
	symCons        = vals.Intern("cons")
	symLambda      = vals.Intern("lambda")
	symDefun       = vals.Intern("defun")
	symSimpleError = vals.Intern("simple-error")
)

// condForm rewrites a cond form into nested if forms.
func (cp *compiler) condForm(c compileCtx, form *vals.Cons, clauses []vals.Value) fab {
	expr := vals.List(symSimpleError, vals.Str("no condition was true"))
	for i := len(clauses) - 1; i >= 0; i-- {
		clause, err := vals.ListToSlice(clauses[i])
		if err != nil || len(clause) != 2 {
			culprit := clauses[i]
			if _, ok := culprit.(*vals.Cons); !ok {
				culprit = form
			}
			cp.errorpf(culprit, "cond clause must be a list of 2 elements, got %s", vals.Repr(clauses[i]))
		}
		expr = vals.List(symIf, clause[0], clause[1], expr)
	}
	return cp.compile(c, expr)
}

func (cp *compiler) andOr(c compileCtx, and bool, x, y vals.Value) fab {
	xf := cp.compile(c.head(), x)
	// y is only evaluated when needed, so its statements can't be hoisted.
	yf := cp.compile(c.head(), y).isolated()
	xop, yop := need(xf, boolKind), need(yf, boolKind)
	return fab{xf.stmts, boolFn(func(fm *frame) (bool, error) {
		a, err := xop.get(fm)
		if err != nil || a != and {
			return a, err
		}
		return yop.get(fm)
	}), TagBool}
}

// flattenDo splices the operands of nested do forms.
func flattenDo(exprs []vals.Value) []vals.Value {
	var flat []vals.Value
	for _, expr := range exprs {
		if c, ok := expr.(*vals.Cons); ok && c.Head == symDo {
			if inner, err := vals.ListToSlice(c.Tail); err == nil && len(inner) >= 2 {
				flat = append(flat, flattenDo(inner)...)
				continue
			}
		}
		flat = append(flat, expr)
	}
	return flat
}

func (cp *compiler) do(c compileCtx, exprs []vals.Value) fab {
	fabs := make([]fab, len(exprs))
	anyStmts := false
	for i, expr := range exprs {
		if i == len(exprs)-1 {
			fabs[i] = cp.compile(c, expr)
		} else {
			fabs[i] = cp.compile(c.head(), expr)
		}
		anyStmts = anyStmts || len(fabs[i].stmts) > 0
	}
	last := fabs[len(fabs)-1]
	if !anyStmts {
		return fab{expr: &doOp{exprsOf(fabs[:len(fabs)-1]), last.expr}, tag: last.tag}
	}
	var stmts []stmtOp
	for _, f := range fabs[:len(fabs)-1] {
		stmts = append(stmts, f.stmts...)
		stmts = append(stmts, discardStmt(f.expr))
	}
	return fab{append(stmts, last.stmts...), last.expr, last.tag}
}

// doOp evaluates expressions for their effects, and then the last one for its
// value.
type doOp struct {
	effects []valueOp
	last    valueOp
}

func (op *doOp) eval(fm *frame) (Result, error) {
	for _, effect := range op.effects {
		if _, err := evalValue(fm, effect); err != nil {
			return Result{}, err
		}
	}
	return op.last.eval(fm)
}

func (cp *compiler) let(c compileCtx, form *vals.Cons, name, value, body vals.Value) fab {
	sym := cp.requireSymbol(form, name)
	if !appears(sym, body) {
		return cp.compile(c, vals.List(symDo, value, body))
	}
	vf := cp.compile(c.head(), value)
	tag := vf.tag.boxed()
	slot := cp.newLocal()
	shadowing := c.has(sym.Name())
	bf := cp.compile(c.bind(sym.Name(), binding{cp.level(), slot, tag}), body)

	stmts := append(vf.stmts[:len(vf.stmts):len(vf.stmts)], declareStmt(slot, vf.expr))
	stmts = append(stmts, bf.stmts...)
	if shadowing && (len(vf.stmts) > 0 || len(bf.stmts) > 0) {
		// An isolated block, writing the value of the body to a temporary.
		temp := cp.newTemp()
		block := append(stmts, assignTempStmt(temp, bf.expr))
		return fab{[]stmtOp{stmtFn(func(fm *frame) error {
			return execAll(fm, block)
		})}, tempOp(temp), bf.tag}
	}
	return fab{stmts, bf.expr, bf.tag}
}

// appears reports whether sym may be referred to as a variable in expr.
func appears(sym *vals.Symbol, expr vals.Value) bool {
	switch e := expr.(type) {
	case *vals.Symbol:
		return e == sym
	case *vals.Cons:
		items, err := vals.ListToSlice(e)
		if err != nil {
			return appears(sym, e.Head) || appears(sym, e.Tail)
		}
		switch {
		case isForm(items, symLet, 4):
			return appears(sym, items[2]) || (items[1] != sym && appears(sym, items[3]))
		case isForm(items, symLambda, 3):
			return items[1] != sym && appears(sym, items[2])
		case isForm(items, symDefun, 4):
			params, _ := vals.ListToSlice(items[2])
			for _, param := range params {
				if param == sym {
					return false
				}
			}
			return appears(sym, items[3])
		}
		for _, item := range items {
			if appears(sym, item) {
				return true
			}
		}
	}
	return false
}

func isForm(items []vals.Value, head *vals.Symbol, n int) bool {
	return len(items) == n && items[0] == head
}

func (cp *compiler) trapError(c compileCtx, body, handler vals.Value) fab {
	stmt := &trapStmt{
		body: cp.compile(c.head(), body).op(),
		temp: cp.newTemp(), errSlot: -1, tail: c.pos == tailPos, async: c.async,
	}
	if items, err := vals.ListToSlice(handler); err == nil && isForm(items, symLambda, 3) {
		if param, ok := items[1].(*vals.Symbol); ok {
			// Bind the error in the current frame instead of making a closure.
			stmt.errSlot = cp.newLocal()
			hc := c.bind(param.Name(), binding{cp.level(), stmt.errSlot, TagError})
			stmt.handler = cp.compile(hc, items[2]).op()
			return fab{[]stmtOp{stmt}, tempOp(stmt.temp), TagNone}
		}
	}
	stmt.handler = cp.compile(c.head(), handler).op()
	return fab{[]stmtOp{stmt}, tempOp(stmt.temp), TagNone}
}

// trapStmt evaluates an expression, and evaluates a handler if it raises an
// error. The result is written to a temporary.
type trapStmt struct {
	body valueOp
	temp int
	// If errSlot is not -1, the handler is an expression evaluated with the
	// error in errSlot. Otherwise it evaluates to a function that is applied
	// to the error.
	handler valueOp
	errSlot int
	tail    bool
	async   bool
}

func (s *trapStmt) exec(fm *frame) error {
	v, err := evalValue(fm, s.body)
	if err == nil {
		fm.temps[s.temp] = done(v)
		return nil
	}
	var e *vals.Error
	if !errors.As(err, &e) {
		return err
	}
	if s.errSlot != -1 {
		fm.locals[s.errSlot] = e
		fm.temps[s.temp], err = s.handler.eval(fm)
		return err
	}
	hv, err := evalValue(fm, s.handler)
	if err != nil {
		return err
	}
	h, err := AsFunction(hv)
	if err != nil {
		return err
	}
	args := []vals.Value{e}
	if s.tail {
		fm.temps[s.temp] = bounce(h, args)
		return nil
	}
	r, err := h.call(args)
	v, err = drain(s.async, r, err)
	fm.temps[s.temp] = done(v)
	return err
}

// lambda compiles a function body with the given parameters.
func (cp *compiler) lambda(c compileCtx, name string, params []*vals.Symbol, body vals.Value) *lambdaOp {
	cp.pushScope()
	inner := c.tail()
	for _, param := range params {
		inner = inner.bind(param.Name(), binding{cp.level(), cp.newLocal(), TagNone})
	}
	bodyOp := cp.compile(inner, body).op()
	sc := cp.popScope()
	return &lambdaOp{name, len(params), c.async, sc, bodyOp}
}

type lambdaOp struct {
	name  string
	arity int
	async bool
	scope *scope
	body  valueOp
}

func (op *lambdaOp) eval(fm *frame) (Result, error) {
	return done(op.closure(fm.ev, fm)), nil
}

// closure makes a Function whose body runs in a new frame enclosed by up.
func (op *lambdaOp) closure(ev *Evaler, up *frame) *Function {
	return &Function{op.name, op.arity, op.async, func(args []vals.Value) (Result, error) {
		fm := newFrame(ev, up, op.scope)
		copy(fm.locals, args)
		return op.body.eval(fm)
	}}
}

func (cp *compiler) defun(c compileCtx, form *vals.Cons, name, params, body vals.Value) fab {
	sym, ok := name.(*vals.Symbol)
	if !ok {
		cp.errorpf(form, "function name must be a symbol, got %s", vals.Repr(name))
	}
	paramList, err := vals.ListToSlice(params)
	if err != nil {
		cp.errorpf(form, "parameters must be a list, got %s", vals.Repr(params))
	}
	paramSyms := make([]*vals.Symbol, len(paramList))
	seen := make(map[*vals.Symbol]bool)
	for i, param := range paramList {
		paramSyms[i] = cp.requireSymbol(form, param)
		if seen[paramSyms[i]] {
			cp.errorpf(form, "duplicate parameter %s", paramSyms[i].Name())
		}
		seen[paramSyms[i]] = true
	}
	return fab{expr: &defunOp{sym, cp.lambda(c.clear(), sym.Name(), paramSyms, body)}, tag: TagSymbol}
}

// defunOp installs a function in the function table. Its value is the name.
type defunOp struct {
	name   *vals.Symbol
	lambda *lambdaOp
}

func (op *defunOp) eval(fm *frame) (Result, error) {
	fm.ev.functions[op.name.Name()] = op.lambda.closure(fm.ev, nil)
	logger.Println("defined function", op.name.Name())
	return done(op.name), nil
}

// cons compiles a chain of cons forms into one op building the list.
func (cp *compiler) cons(c compileCtx, head, tail vals.Value) fab {
	elems := []vals.Value{head}
	for {
		items, err := vals.ListToSlice(tail)
		if err != nil || !isForm(items, symCons, 3) {
			break
		}
		elems = append(elems, items[1])
		tail = items[2]
	}
	stmts, fabs := cp.compileArgs(c, append(elems, tail))
	ops := exprsOf(fabs)
	return fab{stmts, valueFn(func(fm *frame) (vals.Value, error) {
		vs := make([]vals.Value, len(ops))
		for i, op := range ops {
			v, err := evalValue(fm, op)
			if err != nil {
				return nil, err
			}
			vs[i] = v
		}
		return vals.ListFromSlice(vs[:len(vs)-1], vs[len(vs)-1]), nil
	}), TagCons}
}

func (cp *compiler) set(c compileCtx, key, value vals.Value) fab {
	if sym, ok := key.(*vals.Symbol); ok && !c.has(sym.Name()) {
		vf := cp.compile(c.head(), value)
		name := sym.Name()
		return fab{vf.stmts, valueFn(func(fm *frame) (vals.Value, error) {
			v, err := evalValue(fm, vf.expr)
			if err != nil {
				return nil, err
			}
			fm.ev.values[name] = v
			return v, nil
		}), vf.tag.boxed()}
	}
	stmts, fabs := cp.compileArgs(c, []vals.Value{key, value})
	keyOp := need(fabs[0], symbolKind)
	valOp := fabs[1].expr
	return fab{stmts, valueFn(func(fm *frame) (vals.Value, error) {
		sym, err := keyOp.get(fm)
		if err != nil {
			return nil, err
		}
		v, err := evalValue(fm, valOp)
		if err != nil {
			return nil, err
		}
		fm.ev.values[sym.Name()] = v
		return v, nil
	}), fabs[1].tag.boxed()}
}

func (cp *compiler) value(c compileCtx, key vals.Value) fab {
	if sym, ok := key.(*vals.Symbol); ok && !c.has(sym.Name()) {
		name := sym.Name()
		return fab{expr: valueFn(func(fm *frame) (vals.Value, error) {
			return fm.ev.valueOf(name)
		})}
	}
	kf := cp.compile(c.head(), key)
	keyOp := need(kf, symbolKind)
	return fab{kf.stmts, valueFn(func(fm *frame) (vals.Value, error) {
		sym, err := keyOp.get(fm)
		if err != nil {
			return nil, err
		}
		return fm.ev.valueOf(sym.Name())
	}), TagNone}
}
