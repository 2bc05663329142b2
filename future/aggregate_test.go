package future

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Aggregate_EmptyFiresImmediately(t *testing.T) {
	agg := Aggregate(nil)

	require.True(t, agg.Fired())

	v, err := agg.Result()
	require.NoError(t, err)
	require.Empty(t, v.([]AggregateResult))
}

func Test_Aggregate_CollectsResultsInOrder(t *testing.T) {
	a := New()
	b := New()
	c := New()

	agg := Aggregate([]*Future{a, b, c})
	require.False(t, agg.Fired())

	errB := errors.New("b failed")

	// Fire out of order; slots stay positional.
	c.Fire(3)
	a.Fire(1)
	require.False(t, agg.Fired())
	b.FireError(errB)

	require.True(t, agg.Fired())

	v, err := agg.Result()
	require.NoError(t, err)

	results := v.([]AggregateResult)
	require.Len(t, results, 3)

	require.True(t, results[0].OK)
	require.Equal(t, 1, results[0].Value)

	require.False(t, results[1].OK)
	require.ErrorIs(t, results[1].Err, errB)

	require.True(t, results[2].OK)
	require.Equal(t, 3, results[2].Value)
}

func Test_Aggregate_FireOnFirstValue(t *testing.T) {
	a := New()
	b := New()

	agg := Aggregate([]*Future{a, b}, FireOnFirstValue())

	b.Fire("winner")

	require.True(t, agg.Fired())

	v, err := agg.Result()
	require.NoError(t, err)

	first := v.(FirstValue)
	require.Equal(t, "winner", first.Value)
	require.Equal(t, 1, first.Index)

	// A straggler firing later must not re-fire the aggregate.
	a.Fire("late")
	require.Equal(t, first, mustResult(t, agg))
}

func Test_Aggregate_FireOnFirstError(t *testing.T) {
	a := New()
	b := New()
	c := New()

	agg := Aggregate([]*Future{a, b, c}, FireOnFirstError())

	a.Fire(1)

	cause := errors.New("disk on fire")
	b.FireError(cause)

	require.True(t, agg.Fired())

	_, err := agg.Result()

	var first *FirstError
	require.ErrorAs(t, err, &first)
	require.Equal(t, 1, first.Index)
	require.ErrorIs(t, first, cause)

	c.FireError(errors.New("too late"))
	_, err = agg.Result()
	require.ErrorAs(t, err, &first)
	require.Equal(t, 1, first.Index)
}

func Test_Aggregate_SuppressErrorsConsumesChildErrors(t *testing.T) {
	a := New()

	agg := Aggregate([]*Future{a}, SuppressErrors())

	a.FireError(errors.New("swallowed"))

	// The child's chain continues with a nil value, not the error.
	var afterV any
	var afterErr error
	a.AddBoth(func(v any, err error) (any, error) {
		afterV, afterErr = v, err
		return v, err
	})

	require.Nil(t, afterV)
	require.NoError(t, afterErr)

	v, err := agg.Result()
	require.NoError(t, err)

	results := v.([]AggregateResult)
	require.False(t, results[0].OK)
	require.Error(t, results[0].Err)
}

func Test_GatherResults_CollectsValues(t *testing.T) {
	a := New()
	b := New()

	g := GatherResults([]*Future{a, b})

	a.Fire("one")
	b.Fire("two")

	v, err := g.Result()
	require.NoError(t, err)
	require.Equal(t, []any{"one", "two"}, v)
}

func Test_GatherResults_FailsOnFirstError(t *testing.T) {
	a := New()
	b := New()

	g := GatherResults([]*Future{a, b})

	cause := errors.New("nope")
	b.FireError(cause)

	require.True(t, g.Fired())

	_, err := g.Result()

	var first *FirstError
	require.ErrorAs(t, err, &first)
	require.Equal(t, 1, first.Index)
	require.ErrorIs(t, err, cause)
}

func mustResult(t *testing.T, f *Future) any {
	t.Helper()

	v, err := f.Result()
	require.NoError(t, err)

	return v
}
