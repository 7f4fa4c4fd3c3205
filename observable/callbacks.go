package observable

import "sync"

// callbacks is a typed listener registry for change events. It mirrors
// notifier but carries an event payload.
type callbacks[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

func (c *callbacks[T]) subscribe(fn func(T)) Subscription {
	if fn == nil {
		panic("observable: nil listener")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs == nil {
		c.subs = make(map[int]func(T), 1)
	}

	id := c.next
	c.next++
	c.subs[id] = fn

	return &subscription{fn: func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}}
}

func (c *callbacks[T]) fire(event T) {
	c.mu.Lock()
	fns := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}
