// Package failure wraps raised conditions together with the stack captured
// at the point they were observed. A Failure travels down a future's error
// chain like any other error; Trap and Raise give handlers the same control
// flow a recovered panic would have.
package failure

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Failure is an error with a captured stack trace.
type Failure struct {
	err   error
	stack string
}

// Wrap captures the given error into a Failure. If err is already a Failure
// it is returned unchanged, the original stack is kept.
func Wrap(err error) *Failure {
	if f, ok := err.(*Failure); ok {
		return f
	}

	return &Failure{
		err:   err,
		stack: stack(err),
	}
}

// FromPanic converts a value recovered from a panic into a Failure.
func FromPanic(v any) *Failure {
	if f, ok := v.(*Failure); ok {
		return f
	}

	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}

	return &Failure{
		err:   err,
		stack: stack(v),
	}
}

func stack(v any) string {
	goerr := goerrors.Wrap(v, 2)
	return string(goerr.Stack())
}

func (f *Failure) Error() string {
	return f.err.Error()
}

func (f *Failure) Unwrap() error {
	return f.err
}

// Stack returns the stack captured when the failure was created.
func (f *Failure) Stack() string {
	return f.stack
}

// Trap returns the first of the given kinds matching the wrapped error. If
// none matches, the failure is re-raised and propagates to the next error
// handler in the chain.
func (f *Failure) Trap(kinds ...error) error {
	for _, k := range kinds {
		if errors.Is(f.err, k) {
			return k
		}
	}

	panic(f)
}

// Raise propagates the failure as a panic. Inside a future handler or a
// coroutine routine it becomes that future's error result.
func (f *Failure) Raise() {
	panic(f)
}
