package coro

import "github.com/cschleiden/go-futures/future"

// Awaiter suspends a transparent-suspend routine directly on futures.
type Awaiter struct {
	g *gen

	pending *future.Future
	v       any
	err     error
}

// Await suspends the routine until f settles, then returns the value f
// fired with, or its error.
func (a *Awaiter) Await(f *future.Future) (any, error) {
	a.pending = f
	a.g.yield(a)

	return a.v, a.err
}

func (a *Awaiter) target() *future.Future { return a.pending }

func (a *Awaiter) deliver(v any, err error) {
	a.v, a.err = v, err
	a.pending = nil
}

// RunInline drives fn as a transparent-suspend routine and returns a future
// for its result. The routine awaits futures directly:
//
//	coro.RunInline(func(a *coro.Awaiter) (any, error) {
//		v, err := a.Await(startSomething())
//		if err != nil {
//			return nil, err
//		}
//		return v, nil
//	})
//
// The routine's return is the explicit result signal: returning (v, nil)
// fires the result future with v, returning an error fails it. Cancelling
// the returned future forwards the cancellation to the future the routine
// is currently suspended on.
func RunInline(fn func(a *Awaiter) (any, error)) *future.Future {
	d := newDriver()
	d.g = newGen(func() (any, error) {
		return fn(&Awaiter{g: d.g})
	})

	d.drive()

	return d.out
}
