package eval

import (
	"src.kl.sh/pkg/eval/vals"
)

// Primitive functions backed by the host environment. In asynchronous
// sessions they run on helper goroutines.

var (
	symUnix = vals.Intern("unix")
	symRun  = vals.Intern("run")
	symIn   = vals.Intern("in")
	symOut  = vals.Intern("out")
)

func (ev *Evaler) ioFns() map[string]builtinFn {
	return map[string]builtinFn{
		"get-time":   {1, ev.getTime},
		"open":       {2, ev.open},
		"close":      {1, ev.close},
		"read-byte":  {1, ev.readByte},
		"write-byte": {2, ev.writeByte},
	}
}

func (ev *Evaler) getTime(args []vals.Value) (vals.Value, error) {
	if ev.cfg.Clock == nil {
		return nil, vals.NewError("get-time not supported")
	}
	switch args[0] {
	case symUnix:
		return vals.Num(ev.cfg.Clock()), nil
	case symRun:
		return vals.Num(ev.cfg.Clock() - ev.startTime), nil
	}
	return nil, vals.UserErrorf("get-time only accepts symbols unix or run, not %s", vals.Repr(args[0]))
}

func (ev *Evaler) open(args []vals.Value) (vals.Value, error) {
	path, err := vals.AsString(args[0])
	if err != nil {
		return nil, err
	}
	home, _ := ev.values["*home-directory*"].(vals.Str)
	path = string(home) + path

	var openFn func(string) (vals.Stream, error)
	switch args[1] {
	case symIn:
		openFn = ev.cfg.OpenRead
	case symOut:
		openFn = ev.cfg.OpenWrite
	default:
		return nil, vals.UserErrorf("open only accepts symbols in or out, not %s", vals.Repr(args[1]))
	}
	if openFn == nil {
		return nil, vals.UserErrorf("open(%s) not supported", vals.Repr(args[1]))
	}
	s, err := openFn(path)
	if err != nil {
		return nil, hostError(err)
	}
	logger.Printf("opened %s for %s", path, vals.Repr(args[1]))
	return s, nil
}

func (ev *Evaler) close(args []vals.Value) (vals.Value, error) {
	s, err := vals.AsStream(args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Close(); err != nil {
		return nil, hostError(err)
	}
	return vals.Nil, nil
}

func (ev *Evaler) readByte(args []vals.Value) (vals.Value, error) {
	s, err := vals.AsInStream(args[0])
	if err != nil {
		return nil, err
	}
	b, err := s.GetByte()
	if err != nil {
		return nil, hostError(err)
	}
	return vals.Num(b), nil
}

func (ev *Evaler) writeByte(args []vals.Value) (vals.Value, error) {
	n, err := vals.AsNumber(args[0])
	if err != nil {
		return nil, err
	}
	if n < 0 || n > 255 || n != float64(byte(n)) {
		return nil, vals.TypeErrorf("byte expected, got %s", vals.FormatNum(n))
	}
	s, err := vals.AsOutStream(args[1])
	if err != nil {
		return nil, err
	}
	if err := s.PutByte(byte(n)); err != nil {
		return nil, hostError(err)
	}
	return vals.Num(n), nil
}

// hostError converts an error from the host environment to a UserError, so
// that programs can trap it.
func hostError(err error) error {
	if _, ok := err.(*vals.Error); ok {
		return err
	}
	return vals.NewError(err.Error())
}
