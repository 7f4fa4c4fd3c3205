package constraints

import (
	"cmp"
	"context"

	"github.com/reglet-dev/constrain"
	"github.com/reglet-dev/constrain/observable"
)

// GreaterThan requires a value strictly greater than min.
func GreaterThan[T cmp.Ordered](min T) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		if value <= min {
			return invalid("greater_than", "value %v must be greater than %v", value, min), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// GreaterThanOrEqualTo requires a value greater than or equal to min.
func GreaterThanOrEqualTo[T cmp.Ordered](min T) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		if value < min {
			return invalid("greater_than_or_equal", "value %v must be at least %v", value, min), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// LessThan requires a value strictly less than max.
func LessThan[T cmp.Ordered](max T) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		if value >= max {
			return invalid("less_than", "value %v must be less than %v", value, max), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// LessThanOrEqualTo requires a value less than or equal to max.
func LessThanOrEqualTo[T cmp.Ordered](max T) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		if value > max {
			return invalid("less_than_or_equal", "value %v must be at most %v", value, max), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// Between requires min <= value < max.
func Between[T cmp.Ordered](min, max T) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		if value < min || value >= max {
			return invalid("between", "value %v must be in [%v, %v)", value, min, max), nil
		}
		return constrain.Valid[Diagnostic](), nil
	})
}

// GreaterThanObservable requires a value strictly greater than the current
// value of min. The constraint re-runs whenever min changes.
func GreaterThanObservable[T cmp.Ordered](min observable.Readable[T]) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		m := min.Get()
		if value <= m {
			return invalid("greater_than", "value %v must be greater than %v", value, m), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, min)
}

// GreaterThanOrEqualToObservable requires a value greater than or equal to
// the current value of min. The constraint re-runs whenever min changes.
func GreaterThanOrEqualToObservable[T cmp.Ordered](min observable.Readable[T]) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		m := min.Get()
		if value < m {
			return invalid("greater_than_or_equal", "value %v must be at least %v", value, m), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, min)
}

// LessThanObservable requires a value strictly less than the current value
// of max. The constraint re-runs whenever max changes.
func LessThanObservable[T cmp.Ordered](max observable.Readable[T]) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		m := max.Get()
		if value >= m {
			return invalid("less_than", "value %v must be less than %v", value, m), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, max)
}

// LessThanOrEqualToObservable requires a value less than or equal to the
// current value of max. The constraint re-runs whenever max changes.
func LessThanOrEqualToObservable[T cmp.Ordered](max observable.Readable[T]) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		m := max.Get()
		if value > m {
			return invalid("less_than_or_equal", "value %v must be at most %v", value, m), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, max)
}

// BetweenObservable requires min <= value < max against the current bounds.
// The constraint re-runs whenever either bound changes.
func BetweenObservable[T cmp.Ordered](min, max observable.Readable[T]) constrain.Constraint[T, Diagnostic] {
	return constrain.New(func(_ context.Context, value T) (constrain.Result[Diagnostic], error) {
		lo, hi := min.Get(), max.Get()
		if value < lo || value >= hi {
			return invalid("between", "value %v must be in [%v, %v)", value, lo, hi), nil
		}
		return constrain.Valid[Diagnostic](), nil
	}, min, max)
}
