package eval

import "src.kl.sh/pkg/eval/vals"

// Function is a callable value with an arity. Calling it with fewer arguments
// than its arity returns a partial application; calling it with more applies
// the result of the full application to the rest.
type Function struct {
	name  string
	arity int
	async bool
	body  func(args []vals.Value) (Result, error)
}

var errFunctionExpected = vals.TypeErrorf("function expected")

// NewFunction returns a Function for a synchronous Go implementation, which is
// called with exactly arity arguments.
func NewFunction(name string, arity int, f func(args []vals.Value) (vals.Value, error)) *Function {
	return &Function{name, arity, false, func(args []vals.Value) (Result, error) {
		v, err := f(args)
		return done(v), err
	}}
}

// NewAsyncFunction returns a Function for an asynchronous Go implementation.
// Such functions may only be installed in asynchronous sessions.
func NewAsyncFunction(name string, arity int, f func(args []vals.Value) *Promise) *Function {
	return &Function{name, arity, true, func(args []vals.Value) (Result, error) {
		return pending(f(args)), nil
	}}
}

func (*Function) Kind() string { return vals.KindFunction }

// Name returns the name of the function. Anonymous functions have an empty
// name.
func (f *Function) Name() string { return f.name }

// Arity returns the number of arguments the function takes.
func (f *Function) Arity() int { return f.arity }

// Repr returns the representation of the function, like "<Function fac>".
func (f *Function) Repr() string {
	if f.name == "" {
		return "<Function anonymous>"
	}
	return "<Function " + f.name + ">"
}

// AsFunction requires a Function.
func AsFunction(v vals.Value) (*Function, error) {
	if f, ok := v.(*Function); ok {
		return f, nil
	}
	return nil, errFunctionExpected
}

func (f *Function) call(args []vals.Value) (Result, error) {
	switch {
	case len(args) == f.arity:
		return f.body(args)
	case len(args) == 0:
		return done(f), nil
	case len(args) < f.arity:
		return done(f.partial(args)), nil
	default:
		r, err := f.body(args[:f.arity])
		v, err := drain(f.async, r, err)
		if err != nil {
			return Result{}, err
		}
		g, err := AsFunction(v)
		if err != nil {
			return Result{}, err
		}
		return g.call(args[f.arity:])
	}
}

func (f *Function) partial(supplied []vals.Value) *Function {
	return &Function{f.name, f.arity - len(supplied), f.async, func(more []vals.Value) (Result, error) {
		args := make([]vals.Value, 0, len(supplied)+len(more))
		args = append(append(args, supplied...), more...)
		return f.body(args)
	}}
}
