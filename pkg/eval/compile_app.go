package eval

import "src.kl.sh/pkg/eval/vals"

func (cp *compiler) app(c compileCtx, form *vals.Cons, args []vals.Value) fab {
	var callee vals.Value
	var global string
	switch head := form.Head.(type) {
	case *vals.Symbol:
		if c.has(head.Name()) {
			callee = head
		} else {
			global = head.Name()
		}
	case *vals.Cons:
		callee = head
	default:
		cp.errorpf(form, "not a valid application form: head is %s", vals.Repr(form.Head))
	}

	fabs := make([]fab, 0, len(args)+1)
	if callee != nil {
		fabs = append(fabs, cp.compile(c.head(), callee))
	} else {
		fabs = append(fabs, fab{expr: globalFnOp(global)})
	}
	for _, arg := range args {
		fabs = append(fabs, cp.compile(c.head(), arg))
	}
	stmts, fabs := cp.assemble(fabs)
	return fab{stmts, &callOp{fabs[0].expr, exprsOf(fabs[1:]), c.pos == tailPos, c.async}, TagNone}
}

// globalFnOp looks up a function in the function table.
type globalFnOp string

func (op globalFnOp) eval(fm *frame) (Result, error) {
	if f, ok := fm.ev.functions[string(op)]; ok {
		return done(f), nil
	}
	return Result{}, vals.TypeErrorf("function %s is not defined", string(op))
}

// callOp applies a function. In head position it performs the call and pumps
// the result; in tail position it defers the call.
type callOp struct {
	callee valueOp
	args   []valueOp
	tail   bool
	async  bool
}

func (op *callOp) eval(fm *frame) (Result, error) {
	fv, err := evalValue(fm, op.callee)
	if err != nil {
		return Result{}, err
	}
	f, err := AsFunction(fv)
	if err != nil {
		return Result{}, err
	}
	args := make([]vals.Value, len(op.args))
	for i, argOp := range op.args {
		args[i], err = evalValue(fm, argOp)
		if err != nil {
			return Result{}, err
		}
	}
	if op.tail {
		return bounce(f, args), nil
	}
	r, err := f.call(args)
	v, err := drain(op.async, r, err)
	if err != nil {
		return Result{}, err
	}
	return done(v), nil
}
