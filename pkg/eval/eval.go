// Package eval compiles KLambda expressions into trees of Go ops, and runs
// them.
//
// Compilation turns an expression into a fab: statements that must run first
// and an expression op, along with a tag describing what kind of value the
// expression is known to produce. Calls in tail position are not performed
// but returned as a Trampoline, which the nearest pump performs; so deeply
// recursive programs run in constant Go stack space.
//
// A session is either synchronous or asynchronous. Asynchronous sessions use
// the same compiler, but pump with future, which also waits for the Promises
// returned by asynchronous functions.
package eval

import (
	"sort"
	"sync"

	"src.kl.sh/pkg/eval/vals"
	"src.kl.sh/pkg/logutil"
	"src.kl.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// Config keeps the configuration of a session, supplied by the host
// environment. A nil field makes the primitives that need it fail.
type Config struct {
	// Whether the session is asynchronous.
	Async bool

	Implementation string
	Release        string
	OS             string
	Port           string
	Porters        string
	// Prepended to the paths passed to open.
	HomeDirectory string

	// Returns the current time in seconds since the Unix epoch.
	Clock func() float64

	OpenRead  func(path string) (vals.Stream, error)
	OpenWrite func(path string) (vals.Stream, error)

	Stdin  vals.InStream
	Stdout vals.OutStream
	// Falls back to Stdout when nil.
	Stderr vals.OutStream
}

// Evaler is a session: the function table, the value table and the
// configuration. The methods of Evaler are safe to call concurrently, except
// that Go functions installed with Defun must not call them.
type Evaler struct {
	cfg Config

	mu        sync.Mutex
	functions map[string]*Function
	values    map[string]vals.Value
	startTime float64
}

// Values that fail with a message when the host environment does not supply
// them.
var unsupportedValues = map[string]string{
	"*stinput*":  "standard input not supported",
	"*stoutput*": "standard output not supported",
	"*sterror*":  "standard output not supported",
}

// NewEvaler creates a new session.
func NewEvaler(cfg Config) *Evaler {
	ev := &Evaler{
		cfg:       cfg,
		functions: make(map[string]*Function),
		values:    make(map[string]vals.Value),
	}
	if cfg.Clock != nil {
		ev.startTime = cfg.Clock()
	}

	for name, b := range builtinFns {
		ev.functions[name] = NewFunction(name, b.arity, b.impl)
	}
	for name, b := range ev.ioFns() {
		if cfg.Async {
			impl := b.impl
			ev.functions[name] = NewAsyncFunction(name, b.arity, func(args []vals.Value) *Promise {
				return Spawn(func() (vals.Value, error) { return impl(args) })
			})
		} else {
			ev.functions[name] = NewFunction(name, b.arity, b.impl)
		}
	}
	ev.functions["set"] = NewFunction("set", 2, ev.set)
	ev.functions["value"] = NewFunction("value", 1, ev.value)
	ev.functions["eval-kl"] = NewFunction("eval-kl", 1, ev.evalKlFn)

	ev.values["*language*"] = vals.Str("Go")
	ev.values["*implementation*"] = vals.Str(orUnknown(cfg.Implementation))
	ev.values["*release*"] = vals.Str(orUnknown(cfg.Release))
	ev.values["*os*"] = vals.Str(orUnknown(cfg.OS))
	ev.values["*port*"] = vals.Str(orUnknown(cfg.Port))
	ev.values["*porters*"] = vals.Str(orUnknown(cfg.Porters))
	ev.values["*home-directory*"] = vals.Str(cfg.HomeDirectory)
	ev.values["*async*"] = vals.FromBool(cfg.Async)
	if cfg.Stdin != nil {
		ev.values["*stinput*"] = cfg.Stdin
	}
	if cfg.Stdout != nil {
		ev.values["*stoutput*"] = cfg.Stdout
		ev.values["*sterror*"] = cfg.Stdout
	}
	if cfg.Stderr != nil {
		ev.values["*sterror*"] = cfg.Stderr
	}
	return ev
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// Async reports whether the session is asynchronous.
func (ev *Evaler) Async() bool { return ev.cfg.Async }

// EvalKl compiles and runs an expression. In asynchronous sessions, it blocks
// the calling goroutine until the program finishes.
func (ev *Evaler) EvalKl(expr vals.Value) (vals.Value, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.evalKl(expr)
}

// EvalKlAsync is like EvalKl, but returns a Promise of the result. In
// asynchronous sessions, the program runs on a new goroutine; in synchronous
// sessions, it runs before EvalKlAsync returns.
func (ev *Evaler) EvalKlAsync(expr vals.Value) *Promise {
	if !ev.cfg.Async {
		return Resolved(ev.EvalKl(expr))
	}
	return Spawn(func() (vals.Value, error) { return ev.EvalKl(expr) })
}

// Eval reads all the forms in the source and evaluates them in turn. It
// returns the value of the last form, or the empty list if there is none.
func (ev *Evaler) Eval(src parse.Source) (vals.Value, error) {
	tree, err := parse.Parse(src)
	if err != nil {
		return nil, err
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	var v vals.Value = vals.Nil
	for _, form := range tree.Forms {
		v, err = ev.run(src, tree, form)
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Check reads all the forms in the source and compiles them without running
// them. It returns the first parse or compilation error.
func (ev *Evaler) Check(src parse.Source) error {
	tree, err := parse.Parse(src)
	if err != nil {
		return err
	}
	for _, form := range tree.Forms {
		if _, _, err := compile(src, tree, form, ev.cfg.Async); err != nil {
			return err
		}
	}
	return nil
}

// Call calls the named function in the function table.
func (ev *Evaler) Call(name string, args ...vals.Value) (vals.Value, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	f, ok := ev.functions[name]
	if !ok {
		return nil, vals.TypeErrorf("function %s is not defined", name)
	}
	r, err := f.call(args)
	return drain(ev.cfg.Async, r, err)
}

// Defun installs a function in the function table under its name, replacing
// any existing function. Asynchronous functions can only be installed in
// asynchronous sessions.
func (ev *Evaler) Defun(f *Function) error {
	if f.async && !ev.cfg.Async {
		return vals.TypeErrorf("asynchronous function %s in synchronous session", f.name)
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.functions[f.name] = f
	return nil
}

// Function returns the named function in the function table.
func (ev *Evaler) Function(name string) (*Function, bool) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	f, ok := ev.functions[name]
	return f, ok
}

// FunctionNames returns the sorted names of all functions in the function
// table.
func (ev *Evaler) FunctionNames() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	names := make([]string, 0, len(ev.functions))
	for name := range ev.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetValue sets a global value.
func (ev *Evaler) SetValue(name string, v vals.Value) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.values[name] = v
}

// Value returns a global value.
func (ev *Evaler) Value(name string) (vals.Value, error) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.valueOf(name)
}

func (ev *Evaler) valueOf(name string) (vals.Value, error) {
	if v, ok := ev.values[name]; ok {
		return v, nil
	}
	if msg, ok := unsupportedValues[name]; ok {
		return nil, vals.NewError(msg)
	}
	return nil, vals.LookupErrorf("global %q is not defined", name)
}

func (ev *Evaler) evalKl(expr vals.Value) (vals.Value, error) {
	return ev.run(parse.Source{Name: "[eval-kl]", Code: vals.Repr(expr)}, nil, expr)
}

// run compiles an expression at the top level and runs it.
func (ev *Evaler) run(src parse.Source, tree *parse.Tree, expr vals.Value) (vals.Value, error) {
	op, sc, err := compile(src, tree, expr, ev.cfg.Async)
	if err != nil {
		return nil, err
	}
	r, err := op.eval(newFrame(ev, nil, sc))
	return drain(ev.cfg.Async, r, err)
}

func (ev *Evaler) set(args []vals.Value) (vals.Value, error) {
	sym, err := vals.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	ev.values[sym.Name()] = args[1]
	return args[1], nil
}

func (ev *Evaler) value(args []vals.Value) (vals.Value, error) {
	sym, err := vals.AsSymbol(args[0])
	if err != nil {
		return nil, err
	}
	return ev.valueOf(sym.Name())
}

func (ev *Evaler) evalKlFn(args []vals.Value) (vals.Value, error) {
	logger.Println("eval-kl", vals.Repr(args[0]))
	return ev.evalKl(args[0])
}
