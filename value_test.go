package constrain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/constrain/observable"
)

func nonNegative() Constraint[int, string] {
	return New(func(_ context.Context, value int) (Result[string], error) {
		if value < 0 {
			return InvalidWithDiagnostic[string]("must not be negative"), nil
		}
		return Valid[string](), nil
	})
}

func lessThan(limit int) Constraint[int, string] {
	return New(func(_ context.Context, value int) (Result[string], error) {
		return NewResult(value < limit, "checked against limit"), nil
	})
}

func TestValueSyncAggregation(t *testing.T) {
	v := NewValue(5, StateUnknown, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{nonNegative(), lessThan(10)},
	})
	defer v.Dispose()

	assert.True(t, v.Valid())
	assert.False(t, v.Invalid())
	assert.False(t, v.Validating())
	assert.Equal(t, 5, v.Get())

	v.Set(-1)

	assert.False(t, v.Valid())
	assert.True(t, v.Invalid())
	assert.Equal(t, -1, v.Get())
	assert.Equal(t, []string{"must not be negative"}, v.Diagnostics().Invalid())
	assert.Equal(t, []string{"checked against limit"}, v.Diagnostics().Valid())

	v.Set(3)

	assert.True(t, v.Valid())
	assert.Equal(t, []string{"checked against limit"}, v.Diagnostics().All())
}

func TestValueWithoutConstraintsIsAlwaysValid(t *testing.T) {
	v := NewValue("a", StateUnknown, ValueOptions[string, string]{})
	defer v.Dispose()

	assert.True(t, v.Valid())
	assert.Equal(t, "a", v.ConstrainedValue().Get())

	v.Set("b")

	assert.True(t, v.Valid())
	assert.Equal(t, "b", v.ConstrainedValue().Get(), "without constraints the snapshot follows directly")
}

func TestValueInitialStateTrusted(t *testing.T) {
	checks := 0
	c := New(func(_ context.Context, value int) (Result[string], error) {
		checks++
		return NewResult(value >= 0, ""), nil
	})

	v := NewValue(-5, StateInvalid, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c},
	})
	defer v.Dispose()

	assert.True(t, v.Invalid(), "the given verdict is trusted")
	assert.Equal(t, 0, checks, "no validation runs until a change")

	v.Set(7)

	assert.Equal(t, 1, checks)
	assert.True(t, v.Valid())
}

func TestValueConsolidatedNotifications(t *testing.T) {
	v := NewValue(5, StateUnknown, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{nonNegative(), lessThan(10)},
	})
	defer v.Dispose()

	type event struct {
		change   ChangeType
		oldValue bool
		newValue bool
	}
	var events []event
	v.SubscribeValidation(func(_ Status[string], change ChangeType, oldValue, newValue bool) {
		events = append(events, event{change, oldValue, newValue})
	})

	// Both constraints fail, but only the signals that flipped notify, once
	// each, after the whole pass.
	v.Set(-1)
	assert.Equal(t, []event{
		{ChangeValid, true, false},
		{ChangeInvalid, false, true},
	}, events)

	// Still invalid: no signal flips, no notification.
	events = nil
	v.Set(-2)
	assert.Empty(t, events)

	events = nil
	v.Set(3)
	assert.Equal(t, []event{
		{ChangeValid, false, true},
		{ChangeInvalid, true, false},
	}, events)
}

func TestValueDiagnosticsNotifyOncePerPass(t *testing.T) {
	v := NewValue(5, StateUnknown, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{nonNegative(), lessThan(10)},
	})
	defer v.Dispose()

	calls := 0
	v.Diagnostics().Subscribe(func() { calls++ })

	v.Set(20)

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"checked against limit"}, v.Diagnostics().Invalid())
}

func TestValueSnapshotLagsInvalidValues(t *testing.T) {
	v := NewValue(5, StateUnknown, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{nonNegative()},
	})
	defer v.Dispose()

	snapshot := v.ConstrainedValue()
	require.Equal(t, 5, snapshot.Get())

	notified := 0
	snapshot.Subscribe(func() { notified++ })

	v.Set(-1)
	assert.Equal(t, -1, v.Get())
	assert.Equal(t, 5, snapshot.Get(), "the snapshot keeps the last valid value")
	assert.Equal(t, 0, notified)

	v.Set(8)
	assert.Equal(t, 8, snapshot.Get())
	assert.Equal(t, 1, notified)
}

func TestValueDependencyRetriggersValidation(t *testing.T) {
	limit := observable.NewValue(10)
	c := New(func(_ context.Context, value int) (Result[string], error) {
		return NewResult(value < limit.Get(), "limit"), nil
	}, limit)

	v := NewValue(5, StateUnknown, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c},
	})
	defer v.Dispose()

	require.True(t, v.Valid())

	limit.Set(3)
	assert.True(t, v.Invalid(), "a dependency change re-runs dependent constraints")

	limit.Set(100)
	assert.True(t, v.Valid())
}

func TestValueCheckErrorsAndPanicsAreInvalid(t *testing.T) {
	tests := []struct {
		name  string
		check CheckFunc[int, string]
	}{
		{
			name: "error",
			check: func(_ context.Context, _ int) (Result[string], error) {
				return Result[string]{}, errors.New("backend unavailable")
			},
		},
		{
			name: "panic",
			check: func(_ context.Context, _ int) (Result[string], error) {
				panic("unexpected")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValue(1, StateUnknown, ValueOptions[int, string]{
				Constraints: []Constraint[int, string]{New(tt.check)},
			})
			defer v.Dispose()

			assert.True(t, v.Invalid())
			assert.False(t, v.Valid())
			assert.Empty(t, v.Diagnostics().All(), "a failed check carries no diagnostic")
		})
	}
}

func TestValueAsyncValidation(t *testing.T) {
	release := make(chan struct{})
	completed := make(chan struct{}, 8)

	c := NewAsync(func(_ context.Context, value int) (Result[string], error) {
		<-release
		return NewResult(value >= 0, "async"), nil
	}).WithCompletionExecutor(func(fn func()) {
		fn()
		completed <- struct{}{}
	})

	v := NewValue(0, StateValid, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c},
	})
	defer v.Dispose()

	v.Set(7)

	assert.True(t, v.Validating())
	assert.False(t, v.Valid())
	assert.False(t, v.Invalid())

	close(release)
	<-completed

	assert.False(t, v.Validating())
	assert.True(t, v.Valid())
	assert.Equal(t, 7, v.ConstrainedValue().Get())
}

func TestValueAsyncSupersededResultIsDiscarded(t *testing.T) {
	gates := map[int]chan struct{}{
		1:  make(chan struct{}),
		-1: make(chan struct{}),
	}
	completed := make(chan struct{}, 8)

	c := NewAsync(func(_ context.Context, value int) (Result[string], error) {
		<-gates[value]
		return NewResult(value >= 0, "async"), nil
	}).WithCompletionExecutor(func(fn func()) {
		fn()
		completed <- struct{}{}
	})

	v := NewValue(0, StateValid, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c},
	})
	defer v.Dispose()

	v.Set(1)
	v.Set(-1)
	require.True(t, v.Validating())

	// The newer request resolves first and becomes authoritative.
	close(gates[-1])
	<-completed

	assert.True(t, v.Invalid())
	assert.False(t, v.Validating())

	// The stale run for value 1 completes afterwards; its valid result must
	// not overwrite the authoritative one.
	close(gates[1])
	<-completed

	assert.True(t, v.Invalid())
	assert.False(t, v.Valid())
	assert.Equal(t, 0, v.ConstrainedValue().Get(), "a superseded result never reaches the snapshot")
}

func TestValueSettled(t *testing.T) {
	release := make(chan struct{})
	c := NewAsync(func(_ context.Context, value int) (Result[string], error) {
		<-release
		return Valid[string](), nil
	})

	v := NewValue(0, StateValid, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c},
	})
	defer v.Dispose()

	// Nothing in flight: returns immediately.
	require.NoError(t, v.Settled(context.Background()))

	v.Set(1)
	require.True(t, v.Validating())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, v.Settled(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)
	go func() { done <- v.Settled(context.Background()) }()

	close(release)

	require.NoError(t, <-done)
	assert.True(t, v.Valid())
}

func TestValueDispose(t *testing.T) {
	started := make(chan struct{})
	c := NewAsync(func(ctx context.Context, _ int) (Result[string], error) {
		close(started)
		<-ctx.Done()
		return Valid[string](), ctx.Err()
	})

	limit := observable.NewValue(10)
	v := NewValue(0, StateValid, ValueOptions[int, string]{
		Constraints: []Constraint[int, string]{c, New(func(_ context.Context, value int) (Result[string], error) {
			return NewResult(value < limit.Get(), ""), nil
		}, limit)},
	})

	v.Set(1)
	<-started
	require.True(t, v.Validating())

	v.Dispose()
	v.Dispose()

	assert.False(t, v.Validating())
	assert.NoError(t, v.Settled(context.Background()))

	// A detached dependency no longer triggers validation.
	invalid := v.Invalid()
	limit.Set(-100)
	assert.Equal(t, invalid, v.Invalid())
}
