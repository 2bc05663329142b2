// Package coro adapts sequential-looking routines to futures. A routine
// runs on its own goroutine but with strict hand-over: exactly one of the
// routine and its driver is runnable at any time, so the single logical
// thread of control the future package assumes is preserved.
//
// Two flavors are provided. Run drives explicit-wait routines that yield
// WaitFor-wrapped futures and read outcomes with Unwrap. RunInline drives
// transparent-suspend routines that call Await on a future and receive its
// outcome directly at the suspension point.
package coro

import (
	"runtime"
	"time"

	"github.com/cschleiden/go-futures/failure"
)

// DeadlockDetection limits how long a single step of a routine may run
// before the driver gives up.
const DeadlockDetection = 40 * time.Second

// gen runs a routine body on its own goroutine. Control moves between the
// driver and the routine through the resume/yielded channel pair; the
// fields below are only ever written by the side that is about to hand
// control over, so no locking is needed.
type gen struct {
	resume  chan struct{}
	yielded chan any

	done bool
	v    any
	err  error

	exiting bool

	deadlockDetection time.Duration
}

func newGen(body func() (any, error)) *gen {
	g := &gen{
		resume:            make(chan struct{}),
		yielded:           make(chan any),
		deadlockDetection: DeadlockDetection,
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				g.v, g.err = nil, failure.FromPanic(r)
			}
			g.done = true
			g.yielded <- nil
		}()

		// Hold off until the first step.
		<-g.resume
		if g.exiting {
			runtime.Goexit()
		}

		g.v, g.err = body()
	}()

	return g
}

// step hands control to the routine and waits until it yields or finishes.
// It returns the yielded value and whether the routine has finished.
func (g *gen) step() (any, bool) {
	t := time.NewTimer(g.deadlockDetection)
	defer t.Stop()

	g.resume <- struct{}{}

	select {
	case y := <-g.yielded:
		return y, g.done
	case <-t.C:
		panic("coro: routine timed out")
	}
}

// yield hands control back to the driver. Called from the routine goroutine.
func (g *gen) yield(v any) {
	g.yielded <- v
	<-g.resume

	if g.exiting {
		// Goexit runs the routine's deferred functions, which includes
		// marking the gen as finished.
		runtime.Goexit()
	}
}

// exit stops a suspended routine. No-op once the routine has finished.
func (g *gen) exit() {
	if g.done {
		return
	}

	g.exiting = true
	g.step()
}
