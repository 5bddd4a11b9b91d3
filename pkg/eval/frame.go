package eval

import "src.kl.sh/pkg/eval/vals"

// frame holds the state of one running function body, or of one top-level
// form. Closures keep a reference to the frame they were created in.
//
// Every let binding and temporary in a function body has its own slot,
// assigned at compile time, so slots are never reused within a frame.
type frame struct {
	ev     *Evaler
	up     *frame
	locals []vals.Value
	temps  []Result
}

func newFrame(ev *Evaler, up *frame, sc *scope) *frame {
	return &frame{ev, up, make([]vals.Value, sc.nlocals), make([]Result, sc.ntemps)}
}

// outer returns the frame hops levels up.
func (fm *frame) outer(hops int) *frame {
	for ; hops > 0; hops-- {
		fm = fm.up
	}
	return fm
}

// evalValue evaluates an op to a value, pumping any deferred call or pending
// value.
func evalValue(fm *frame, op valueOp) (vals.Value, error) {
	r, err := op.eval(fm)
	if err == nil && r.IsDone() {
		return r.value, nil
	}
	return drain(fm.ev.cfg.Async, r, err)
}
