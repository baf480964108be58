// Package observe provides a latest-value holder with conflating subscribers.
package observe

import "sync"

// Value holds the most recently stored T and fans it out to subscribers.
// Each subscriber channel buffers one value; a slow reader only ever sees the
// latest one, and Store never blocks on a reader.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[int]chan T
	nextID int
	closed bool
}

// New returns a Value initialised to initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{cur: initial, subs: make(map[int]chan T)}
}

// Load returns the current value.
func (v *Value[T]) Load() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Store replaces the current value and notifies subscribers.
// Stores are totally ordered; subscribers observe them in that order, possibly
// skipping intermediate values.
func (v *Value[T]) Store(x T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cur = x
	if v.closed {
		return
	}
	for _, ch := range v.subs {
		offer(ch, x)
	}
}

// Subscribe returns a channel that immediately receives the current value and
// then every later value (latest wins). Cancel stops delivery and closes the
// channel; it is safe to call more than once.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	ch := make(chan T, 1)
	if v.closed {
		close(ch)
		return ch, func() {}
	}

	id := v.nextID
	v.nextID++
	v.subs[id] = ch
	ch <- v.cur

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if c, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Later stores update the value but
// notify no one.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}

// offer sends x without blocking, replacing any unread value.
// Callers hold the lock, so ch has no other sender.
func offer[T any](ch chan T, x T) {
	select {
	case ch <- x:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- x
}
