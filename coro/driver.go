package coro

import (
	"errors"
	"fmt"

	"github.com/cschleiden/go-futures/future"
)

// suspension is what a routine hands to its driver when it suspends: the
// future to wait for, and how to deliver the settled outcome back into the
// routine.
type suspension interface {
	target() *future.Future
	deliver(v any, err error)
}

// driver connects a gen to the future representing the routine's result.
type driver struct {
	g   *gen
	out *future.Future

	// future the routine is currently suspended on; cancelling out is
	// forwarded here
	current *future.Future
}

func newDriver() *driver {
	d := &driver{}
	d.out = future.New(future.WithCanceller(d.cancel))
	return d
}

func (d *driver) cancel(*future.Future) {
	if d.current != nil {
		d.current.Cancel()
	}
}

// drive steps the routine until it finishes or suspends on a pending
// future. The waiting/result sentinel pair unwinds suspensions on
// already-settled futures iteratively: repeated immediately-ready waits
// stay in this loop instead of growing the stack through the continuation.
func (d *driver) drive() {
	for {
		if d.out.Fired() {
			// The result was cancelled while the routine was suspended;
			// stop driving.
			d.g.exit()
			return
		}

		y, done := d.g.step()
		if done {
			if d.g.err != nil {
				d.out.FireError(d.g.err)
			} else {
				d.out.Fire(d.g.v)
			}
			return
		}

		s, ok := y.(suspension)
		if !ok {
			d.misuse(y)
			return
		}

		f := s.target()
		d.current = f

		waiting := true
		var rv any
		var rerr error

		f.AddBoth(func(v any, err error) (any, error) {
			if waiting {
				// Settled synchronously inside AddBoth; the loop below
				// picks the outcome up.
				waiting = false
				rv, rerr = v, err
				return nil, nil
			}

			d.current = nil
			s.deliver(v, err)
			d.drive()

			// The routine consumed the outcome; don't keep an error going
			// down the awaited future's own chain.
			return nil, nil
		})

		if waiting {
			// Still pending: the continuation above re-drives once the
			// future settles.
			waiting = false
			return
		}

		d.current = nil
		s.deliver(rv, rerr)
	}
}

func (d *driver) misuse(y any) {
	var err error
	if _, bare := y.(*future.Future); bare {
		err = errors.New("coro: yield WaitFor(f), not the future itself")
	} else {
		err = fmt.Errorf("coro: yielded %T, expected a wait", y)
	}

	d.out.FireError(err)
	d.g.exit()
}
