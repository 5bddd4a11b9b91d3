package eval

import "src.kl.sh/pkg/eval/vals"

// Promise is a value that becomes available later. Asynchronous sessions use
// it for the results of whole programs and of the primitives backed by host
// I/O.
type Promise struct {
	ch    chan struct{}
	value vals.Value
	err   error
}

func newPromise() *Promise { return &Promise{ch: make(chan struct{})} }

// Resolved returns a Promise that is already resolved.
func Resolved(v vals.Value, err error) *Promise {
	p := newPromise()
	p.resolve(v, err)
	return p
}

// Spawn runs f on a new goroutine, and returns a Promise of its result.
func Spawn(f func() (vals.Value, error)) *Promise {
	p := newPromise()
	go func() { p.resolve(f()) }()
	return p
}

func (p *Promise) resolve(v vals.Value, err error) {
	p.value, p.err = v, err
	close(p.ch)
}

// Done returns a channel that is closed when the Promise is resolved.
func (p *Promise) Done() <-chan struct{} { return p.ch }

// Await blocks until the Promise is resolved, and returns its result.
func (p *Promise) Await() (vals.Value, error) {
	<-p.ch
	return p.value, p.err
}
