// Package observable provides a typed state container with get, set and
// subscribe, decoupled from any rendering mechanism. Collections and flags
// exposed by the stores and the cart engine are published through it.
package observable

import "sync"

// Value holds a single observed value of type T. Set replaces the value
// and notifies every subscriber with the new value. Subscribers run on
// the caller's goroutine, outside the container's lock, so a subscriber
// may call Get without deadlocking. Subscribers must not mutate the
// owning store; each collection has exactly one writer role.
type Value[T any] struct {
	mu     sync.Mutex
	v      T
	subs   map[int64]func(T)
	nextID int64
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[int64]func(T))}
}

func (o *Value[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

func (o *Value[T]) Set(v T) {
	o.mu.Lock()
	o.v = v
	fns := make([]func(T), 0, len(o.subs))
	for _, fn := range o.subs {
		fns = append(fns, fn)
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn for future updates and returns a cancel func.
// fn is not invoked with the current value; call Get for that.
func (o *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}
