// Package future provides a single-assignment placeholder for a value that
// becomes available later. A Future carries an ordered chain of
// callback/errback stages that run once it fires, supports cancellation with
// optional canceller hooks, and can be chained to or aggregated with other
// futures.
//
// Futures are not safe for concurrent use. The package assumes the
// cooperative model of event-driven code: exactly one logical thread of
// control drives a future's state transitions at a time. "Waiting" on a
// future means attaching a stage and returning control to the caller, never
// blocking.
package future

import (
	"errors"
	"runtime"

	"github.com/cschleiden/go-futures/failure"
	"github.com/cschleiden/go-futures/log"
	"github.com/google/uuid"
)

// ErrCancelled is the error a future fails with when it is cancelled and its
// canceller does not settle it.
var ErrCancelled = errors.New("future cancelled")

// Callback consumes the current success result and produces the next one.
// Returning a non-nil error moves processing to the error side of the chain.
// Returning a *Future suspends the chain until that future settles.
type Callback func(v any) (any, error)

// Errback consumes the current error result. Returning a nil error moves
// processing back to the success side of the chain.
type Errback func(err error) (any, error)

// Canceller stops the pending operation behind a future when Cancel is
// invoked. It receives the future being cancelled. If it does not fire the
// future itself, the future fails with ErrCancelled.
type Canceller func(f *Future)

type state int

const (
	statePending state = iota
	stateFired
	stateChained
)

// stage is one callback/errback pair in the chain. Exactly one of the two
// runs, selected by whether the result is a value or an error at the time
// the stage is reached.
type stage struct {
	callback Callback
	errback  Errback
}

// result is the current outcome of a fired future. While next is non-nil the
// chain is suspended, waiting for the nested future to settle.
type result struct {
	value any
	err   error
	next  *Future
}

type Future struct {
	state state
	res   result

	stages []stage

	// pauseDepth > 0 suspends draining. It is incremented once per nested
	// future being flattened and by explicit Pause calls.
	pauseDepth int

	// draining defers re-entrant drains to the outer drain loop, for
	// handlers that fire futures or add stages synchronously.
	draining bool

	canceller Canceller
	cancelled bool

	// cancelling is set while the canceller runs; a fire from inside it is
	// the canceller settling the future and must not be swallowed.
	cancelling bool

	// suppressNextFire swallows exactly one late fire from the original
	// operation after a cancellation that had no canceller to stop it.
	suppressNextFire bool

	logger log.Logger
	id     string
}

// Option configures a future at construction time.
type Option func(f *Future)

// WithCanceller sets the canceller invoked when the future is cancelled
// before it settles.
func WithCanceller(c Canceller) Option {
	return func(f *Future) {
		f.canceller = c
	}
}

// WithLogger attaches a diagnostic logger. A future that is garbage
// collected while still holding an error result no stage has consumed is
// reported through it.
func WithLogger(l log.Logger) Option {
	return func(f *Future) {
		f.logger = l
	}
}

// New creates a pending future.
func New(opts ...Option) *Future {
	f := &Future{}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger != nil {
		f.id = uuid.NewString()
		runtime.SetFinalizer(f, reportUnobserved)
	}

	return f
}

func reportUnobserved(f *Future) {
	if f.state == stateFired && f.res.next == nil && f.res.err != nil {
		f.logger.Error("unhandled error in future",
			log.FutureIDKey, f.id,
			log.ErrorKey, f.res.err.Error())
	}
}

func passthruCallback(v any) (any, error) { return v, nil }

func passthruErrback(err error) (any, error) { return nil, err }

// AddCallbacks appends a callback/errback pair to the chain. Either may be
// nil, in which case the corresponding side of the result passes through
// unchanged. If the future has already fired, the pair runs immediately
// against the current result.
func (f *Future) AddCallbacks(cb Callback, eb Errback) *Future {
	if f.state == stateChained {
		panic("future: cannot add stage to an already-chained future")
	}

	if cb == nil {
		cb = passthruCallback
	}
	if eb == nil {
		eb = passthruErrback
	}

	f.stages = append(f.stages, stage{callback: cb, errback: eb})

	if f.state == stateFired {
		f.drain()
	}

	return f
}

// AddCallback appends a success handler; errors pass through.
func (f *Future) AddCallback(cb Callback) *Future {
	return f.AddCallbacks(cb, nil)
}

// AddErrback appends an error handler; values pass through.
func (f *Future) AddErrback(eb Errback) *Future {
	return f.AddCallbacks(nil, eb)
}

// AddBoth appends a single handler invoked for both success and error
// results. Exactly one of v and err is set.
func (f *Future) AddBoth(fn func(v any, err error) (any, error)) *Future {
	return f.AddCallbacks(
		func(v any) (any, error) { return fn(v, nil) },
		func(err error) (any, error) { return fn(nil, err) },
	)
}

// Fire settles the future with a success value and runs the chain. Firing a
// future that was cancelled before it settled is a no-op; cancellation
// already decided the outcome. Firing a fired or chained future panics.
func (f *Future) Fire(v any) {
	if f.cancelled && !f.cancelling && f.state != stateFired {
		return
	}
	if f.state == stateChained {
		panic("future: cannot fire an already-chained future")
	}

	f.settle(result{value: v})
}

// FireError settles the future with an error result and runs the chain. The
// same preconditions as Fire apply.
func (f *Future) FireError(err error) {
	if err == nil {
		panic("future: FireError with nil error")
	}

	if f.cancelled && !f.cancelling && f.state != stateFired {
		return
	}
	if f.state == stateChained {
		panic("future: cannot fire an already-chained future")
	}

	f.settle(result{err: err})
}

// settle is the single transition to the fired state. Cancellation and the
// chaining bridge deliver results through it directly, bypassing the public
// fire preconditions.
func (f *Future) settle(res result) {
	if f.state == stateFired {
		if f.suppressNextFire {
			f.suppressNextFire = false
			return
		}
		panic("future: already fired")
	}

	f.state = stateFired
	f.res = res
	f.drain()
}

// Cancel cancels the future. If it has not settled yet, the canceller runs;
// if there is no canceller, or it does not settle the future, the future
// fails with ErrCancelled. Without a canceller, exactly one later fire from
// the original operation is swallowed instead of panicking, so operations
// without cancellation support can be cancelled by their consumers.
//
// If the chain is currently suspended on a nested future, cancellation is
// forwarded there: it always targets whichever future is actually still
// pending. Cancelling twice is a no-op.
func (f *Future) Cancel() {
	f.cancelled = true

	if f.state != stateFired {
		if f.canceller != nil {
			f.cancelling = true
			f.canceller(f)
			f.cancelling = false
		} else {
			// Arrange to eat the fire that the original operation will
			// eventually attempt, since nothing stopped it.
			f.suppressNextFire = true
		}

		if f.state != stateFired {
			f.settle(result{err: ErrCancelled})
		}
	} else if f.res.next != nil {
		f.res.next.Cancel()
	}
}

// Pause suspends running the chain until a matching Unpause.
func (f *Future) Pause() {
	f.pauseDepth++
}

// Unpause releases one Pause and resumes the chain once no pauses remain.
func (f *Future) Unpause() {
	f.pauseDepth--
	if f.pauseDepth < 0 {
		panic("future: negative pause depth")
	}
	if f.pauseDepth > 0 {
		return
	}

	if f.state == stateFired {
		f.drain()
	}
}

// ChainTo links target to be settled by this future's outcome. The settled
// value or error is forwarded, and so is cancellation. The target can no
// longer be fired directly or given stages of its own; only the chain may
// deliver its result. Any number of targets can be chained to one source and
// all of them receive the result; the source's own chain continues with the
// result unchanged.
func (f *Future) ChainTo(target *Future) *Future {
	target.state = stateChained

	return f.AddBoth(func(v any, err error) (any, error) {
		switch {
		case target.cancelled:
			// The target already decided its own outcome; deliver nothing.
		case f.cancelled:
			// Propagate cancellation rather than a stale result.
			target.Cancel()
		default:
			target.settle(result{value: v, err: err})
		}

		return v, err
	})
}

// Fired reports whether the future has settled.
func (f *Future) Fired() bool {
	return f.state == stateFired
}

// Cancelled reports whether Cancel has been called.
func (f *Future) Cancelled() bool {
	return f.cancelled
}

// Result returns the current result. It is only meaningful once the future
// has fired; while the chain is suspended on a nested future both returns
// are nil.
func (f *Future) Result() (any, error) {
	if f.res.next != nil {
		return nil, nil
	}
	return f.res.value, f.res.err
}

// drain runs queued stages against the current result. The loop is
// iterative so that arbitrarily long chains of settled futures use constant
// stack space. A stage returning a pending future pauses the chain; the
// continuation attached to that future re-enters drain when it settles.
func (f *Future) drain() {
	if f.draining {
		// A handler fired this future synchronously. The outer drain loop
		// picks up any new state when the handler returns.
		return
	}

	for f.pauseDepth == 0 && len(f.stages) > 0 {
		st := f.stages[0]
		f.stages[0] = stage{}
		f.stages = f.stages[1:]

		f.draining = true
		v, err := f.runStage(st)
		f.draining = false

		if err != nil {
			f.res = result{err: err}
			continue
		}

		if next, ok := v.(*Future); ok && next != nil {
			// The stage returned another future. Suspend until it settles;
			// control returns to the caller instead of recursing. The
			// draining guard around AddBoth keeps an already-settled next
			// from re-entering drain from inside the continuation, so
			// chains of settled futures unwind in this loop.
			f.res = result{next: next}
			f.Pause()

			f.draining = true
			next.AddBoth(func(v any, err error) (any, error) {
				f.res = result{value: v, err: err}
				f.Unpause()
				return v, err
			})
			f.draining = false

			continue
		}

		f.res = result{value: v}
	}
}

// runStage invokes the stage's handler for the current result. A panic in
// the handler is converted into an error result, continuing the error chain
// from the next stage.
func (f *Future) runStage(st stage) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, failure.FromPanic(r)
		}
	}()

	if f.res.err != nil {
		return st.errback(f.res.err)
	}

	return st.callback(f.res.value)
}
