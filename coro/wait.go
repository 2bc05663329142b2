package coro

import "github.com/cschleiden/go-futures/future"

// Wait is the wrapper an explicit-wait routine yields to suspend on a
// future. After the routine has been resumed, Unwrap returns the settled
// outcome.
type Wait struct {
	f       *future.Future
	v       any
	err     error
	settled bool
}

// WaitFor wraps a future so it can be yielded from a routine run by Run.
func WaitFor(f *future.Future) *Wait {
	return &Wait{f: f}
}

// Unwrap returns the outcome of the wrapped future: the value it fired
// with, or its error. Calling Unwrap before the wait has been yielded and
// the routine resumed panics.
func (w *Wait) Unwrap() (any, error) {
	if !w.settled {
		panic("coro: Unwrap called before the wrapped future settled")
	}

	return w.v, w.err
}

func (w *Wait) target() *future.Future { return w.f }

func (w *Wait) deliver(v any, err error) {
	w.v, w.err = v, err
	w.settled = true
}

// Yielder suspends an explicit-wait routine.
type Yielder struct {
	g *gen
}

// Yield suspends the routine until the wrapped future settles. Only *Wait
// values may be yielded; yielding a bare future is a usage error that fails
// the routine's result future with a descriptive error.
func (y *Yielder) Yield(v any) {
	y.g.yield(v)
}

// Run drives fn as an explicit-wait routine and returns a future for its
// result. Inside fn, wrap a future with WaitFor, yield the wrapper to
// suspend until it settles, then read the outcome with Unwrap:
//
//	coro.Run(func(y *coro.Yielder) (any, error) {
//		w := coro.WaitFor(startSomething())
//		y.Yield(w)
//		v, err := w.Unwrap()
//		...
//		return v, err
//	})
//
// Cancelling the returned future forwards the cancellation to the future
// the routine is currently suspended on.
func Run(fn func(y *Yielder) (any, error)) *future.Future {
	d := newDriver()
	d.g = newGen(func() (any, error) {
		return fn(&Yielder{g: d.g})
	})

	d.drive()

	return d.out
}
