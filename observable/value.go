package observable

import "sync"

// Value is an observable scalar. The zero Value is not usable; construct one
// with NewValue.
type Value[T any] struct {
	notifier
	vmu sync.RWMutex
	v   T
}

// NewValue returns an observable holding the given initial value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.vmu.RLock()
	defer v.vmu.RUnlock()
	return v.v
}

// Set stores a new value and notifies subscribers. Subscribers are notified
// unconditionally; value comparison is left to the listener because T is not
// required to be comparable.
func (v *Value[T]) Set(value T) {
	v.vmu.Lock()
	v.v = value
	v.vmu.Unlock()
	v.fire()
}

// Readable is the read-only view of an observable scalar, used for outbound
// surfaces such as constrained snapshots.
type Readable[T any] interface {
	Observable
	Get() T
}

var _ Readable[int] = (*Value[int])(nil)
