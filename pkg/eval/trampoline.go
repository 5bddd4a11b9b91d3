package eval

import "src.kl.sh/pkg/eval/vals"

// Result is what running compiled code produces. It has exactly one of three
// forms: a value, a deferred call (a Trampoline), or a value that is still
// pending (a Promise, only in asynchronous sessions).
type Result struct {
	value   vals.Value
	bounce  *Trampoline
	pending *Promise
}

// Trampoline is a call that has been deferred by code in tail position, to be
// performed by the nearest enclosing pump.
type Trampoline struct {
	f    *Function
	args []vals.Value
}

func done(v vals.Value) Result { return Result{value: v} }
func bounce(f *Function, args []vals.Value) Result {
	return Result{bounce: &Trampoline{f, args}}
}
func pending(p *Promise) Result { return Result{pending: p} }

// IsDone reports whether the result is a value.
func (r Result) IsDone() bool { return r.bounce == nil && r.pending == nil }

func (t *Trampoline) run() (Result, error) { return t.f.call(t.args) }

// settle pumps a Result to a value in a synchronous session. It runs in
// constant Go stack space however many deferred calls it goes through.
func settle(r Result, err error) (vals.Value, error) {
	for err == nil && r.bounce != nil {
		r, err = r.bounce.run()
	}
	if err != nil {
		return nil, err
	}
	return r.value, nil
}

// future pumps a Result to a value in an asynchronous session. It is settle
// with an additional step: before a result is tested, a pending result is
// awaited.
func future(r Result, err error) (vals.Value, error) {
	for err == nil {
		if r.pending != nil {
			var v vals.Value
			v, err = r.pending.Await()
			r = done(v)
			continue
		}
		if r.bounce == nil {
			return r.value, nil
		}
		r, err = r.bounce.run()
	}
	return nil, err
}

// drain pumps a Result with the pump of the session's discipline.
func drain(async bool, r Result, err error) (vals.Value, error) {
	if async {
		return future(r, err)
	}
	return settle(r, err)
}
