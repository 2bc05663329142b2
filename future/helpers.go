package future

import "github.com/cschleiden/go-futures/failure"

// Resolved returns a future that has already fired with v. Useful when
// synchronous code has to satisfy a future-returning interface.
func Resolved(v any) *Future {
	f := New()
	f.Fire(v)
	return f
}

// Rejected returns a future that has already failed with err.
func Rejected(err error) *Future {
	f := New()
	f.FireError(err)
	return f
}

// From invokes fn and captures its outcome in a future. If fn itself returns
// a future, that future is returned unchanged; a panic becomes an error
// result.
func From(fn func() (any, error)) *Future {
	v, err := invoke(fn)
	if err != nil {
		return Rejected(err)
	}

	if f, ok := v.(*Future); ok && f != nil {
		return f
	}

	return Resolved(v)
}

func invoke(fn func() (any, error)) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, failure.FromPanic(r)
		}
	}()

	return fn()
}
