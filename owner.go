package constrain

import "sync"

// owner serializes all state transitions of one property and its elements,
// playing the role of the single logical owner thread. Worker goroutines
// never touch aggregation state directly; completions lock the owner and
// queue their notifications, which the unlocking caller then fires outside
// the lock so listeners may safely re-enter the property.
type owner struct {
	mu      sync.Mutex
	pending []func()
}

// queue schedules fn to run after the current critical section. Called with
// the lock held.
func (o *owner) queue(fn func()) {
	o.pending = append(o.pending, fn)
}

// take returns and clears the queued actions. Called with the lock held,
// immediately before unlocking.
func (o *owner) take() []func() {
	actions := o.pending
	o.pending = nil
	return actions
}

// run executes queued actions. Called without the lock.
func (o *owner) run(actions []func()) {
	for _, fn := range actions {
		fn()
	}
}

// perform runs fn inside the critical section, then fires whatever actions
// fn queued. Called without the lock.
func (o *owner) perform(fn func()) {
	o.mu.Lock()
	fn()
	actions := o.take()
	o.mu.Unlock()
	o.run(actions)
}
