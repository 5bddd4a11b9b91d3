package eval

import "src.kl.sh/pkg/eval/vals"

// valueOp is an expression compiled into an operation on a frame.
//
// Ops compiled in head position always produce a value. Ops compiled in tail
// position may produce a deferred call, and ops in asynchronous sessions may
// produce a pending value.
type valueOp interface {
	eval(fm *frame) (Result, error)
}

// getter is a valueOp that can also produce an unboxed Go value. Expressions
// tagged TagNumber, TagNzNumber or TagAnyNumber may implement
// getter[float64], and expressions tagged TagBool may implement getter[bool].
type getter[T any] interface {
	valueOp
	get(fm *frame) (T, error)
}

// stmtOp is a prerequisite statement, run for its effect on the frame.
type stmtOp interface {
	exec(fm *frame) error
}

type literalOp struct{ v vals.Value }

func (op literalOp) eval(*frame) (Result, error) { return done(op.v), nil }

type numLiteralOp float64

func (op numLiteralOp) eval(*frame) (Result, error) { return done(vals.Num(op)), nil }
func (op numLiteralOp) get(*frame) (float64, error) { return float64(op), nil }

type strLiteralOp string

func (op strLiteralOp) eval(*frame) (Result, error) { return done(vals.Str(op)), nil }
func (op strLiteralOp) get(*frame) (string, error)  { return string(op), nil }

type boolLiteralOp bool

func (op boolLiteralOp) eval(*frame) (Result, error) { return done(vals.FromBool(bool(op))), nil }
func (op boolLiteralOp) get(*frame) (bool, error)    { return bool(op), nil }

// localOp reads a let binding or parameter, possibly of an enclosing function.
type localOp struct{ hops, slot int }

func (op localOp) eval(fm *frame) (Result, error) {
	return done(fm.outer(op.hops).locals[op.slot]), nil
}

// tempOp reads a temporary of the current frame.
type tempOp int

func (op tempOp) eval(fm *frame) (Result, error) { return fm.temps[op], nil }

// Ops implemented by Go closures. Each boxes its result in eval.

type valueFn func(fm *frame) (vals.Value, error)

func (f valueFn) eval(fm *frame) (Result, error) {
	v, err := f(fm)
	if err != nil {
		return Result{}, err
	}
	return done(v), nil
}

type numFn func(fm *frame) (float64, error)

func (f numFn) get(fm *frame) (float64, error) { return f(fm) }

func (f numFn) eval(fm *frame) (Result, error) {
	x, err := f(fm)
	if err != nil {
		return Result{}, err
	}
	return done(vals.Num(x)), nil
}

type strFn func(fm *frame) (string, error)

func (f strFn) get(fm *frame) (string, error) { return f(fm) }

func (f strFn) eval(fm *frame) (Result, error) {
	s, err := f(fm)
	if err != nil {
		return Result{}, err
	}
	return done(vals.Str(s)), nil
}

type boolFn func(fm *frame) (bool, error)

func (f boolFn) get(fm *frame) (bool, error) { return f(fm) }

func (f boolFn) eval(fm *frame) (Result, error) {
	b, err := f(fm)
	if err != nil {
		return Result{}, err
	}
	return done(vals.FromBool(b)), nil
}

type stmtFn func(fm *frame) error

func (f stmtFn) exec(fm *frame) error { return f(fm) }

func execAll(fm *frame, stmts []stmtOp) error {
	for _, stmt := range stmts {
		if err := stmt.exec(fm); err != nil {
			return err
		}
	}
	return nil
}

// seqOp runs statements and then evaluates an expression. It turns a fab
// into a single op.
type seqOp struct {
	stmts []stmtOp
	expr  valueOp
}

func (op *seqOp) eval(fm *frame) (Result, error) {
	if err := execAll(fm, op.stmts); err != nil {
		return Result{}, err
	}
	return op.expr.eval(fm)
}

// Statements.

// discardStmt evaluates an expression for its effect.
func discardStmt(op valueOp) stmtOp {
	return stmtFn(func(fm *frame) error {
		_, err := evalValue(fm, op)
		return err
	})
}

// declareStmt binds a local slot to the value of an expression.
func declareStmt(slot int, op valueOp) stmtOp {
	return stmtFn(func(fm *frame) error {
		v, err := evalValue(fm, op)
		fm.locals[slot] = v
		return err
	})
}

// assignTempStmt stores the result of an expression in a temporary, without
// pumping it.
func assignTempStmt(temp int, op valueOp) stmtOp {
	return stmtFn(func(fm *frame) error {
		r, err := op.eval(fm)
		fm.temps[temp] = r
		return err
	})
}
