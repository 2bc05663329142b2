package future

import "fmt"

// AggregateResult is one entry in an aggregate's outcome: the value or error
// the corresponding input future settled with.
type AggregateResult struct {
	OK    bool
	Value any
	Err   error
}

// FirstValue is the result an aggregate configured with FireOnFirstValue
// fires with: the first value to arrive and the position of the input that
// produced it.
type FirstValue struct {
	Value any
	Index int
}

// FirstError wraps the first failing input of a fail-fast aggregate.
type FirstError struct {
	Cause error
	Index int
}

func (e *FirstError) Error() string {
	return fmt.Sprintf("future %d failed: %v", e.Index, e.Cause)
}

func (e *FirstError) Unwrap() error {
	return e.Cause
}

type aggregateOptions struct {
	fireOnFirstValue bool
	fireOnFirstError bool
	suppressErrors   bool
}

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateOptions)

// FireOnFirstValue fires the aggregate with a FirstValue as soon as any
// input succeeds, without waiting for the others.
func FireOnFirstValue() AggregateOption {
	return func(o *aggregateOptions) {
		o.fireOnFirstValue = true
	}
}

// FireOnFirstError fails the aggregate with a *FirstError as soon as any
// input fails, without waiting for the others.
func FireOnFirstError() AggregateOption {
	return func(o *aggregateOptions) {
		o.fireOnFirstError = true
	}
}

// SuppressErrors swallows an input's error after recording it, so it does
// not propagate to stages added to that input after aggregation.
func SuppressErrors() AggregateOption {
	return func(o *aggregateOptions) {
		o.suppressErrors = true
	}
}

// Aggregate combines futures into a single future that fires with an ordered
// []AggregateResult once every input has settled, or earlier when configured
// with FireOnFirstValue or FireOnFirstError. An empty input fires
// immediately with an empty result sequence.
//
// The inputs remain usable; stages may still be added to them after
// aggregation and see each input's own result.
func Aggregate(futures []*Future, opts ...AggregateOption) *Future {
	var o aggregateOptions
	for _, opt := range opts {
		opt(&o)
	}

	agg := New()
	results := make([]AggregateResult, len(futures))

	if len(futures) == 0 && !o.fireOnFirstValue {
		agg.Fire(results)
		return agg
	}

	finished := 0

	for i, f := range futures {
		index := i

		f.AddBoth(func(v any, err error) (any, error) {
			results[index] = AggregateResult{OK: err == nil, Value: v, Err: err}
			finished++

			if agg.state != stateFired {
				switch {
				case err == nil && o.fireOnFirstValue:
					agg.Fire(FirstValue{Value: v, Index: index})
				case err != nil && o.fireOnFirstError:
					agg.FireError(&FirstError{Cause: err, Index: index})
				case finished == len(results):
					agg.Fire(results)
				}
			}

			if err != nil && o.suppressErrors {
				return nil, nil
			}

			return v, err
		})
	}

	return agg
}

// GatherResults waits for every future to succeed and fires with the plain
// ordered sequence of values. The first failure fires a *FirstError instead.
func GatherResults(futures []*Future) *Future {
	agg := Aggregate(futures, FireOnFirstError())

	agg.AddCallback(func(v any) (any, error) {
		rs := v.([]AggregateResult)

		values := make([]any, len(rs))
		for i, r := range rs {
			if !r.OK {
				// FireOnFirstError fails the aggregate before a full result
				// can contain an error entry.
				panic("future: non-success result in gathered aggregate")
			}
			values[i] = r.Value
		}

		return values, nil
	})

	return agg
}
