// Package reactive provides synchronous observable values.
//
// A Value notifies its subscribers before Set returns, so anything derived
// from it is already up to date when the writer regains control. There is no
// scheduling and no batching: every write is one recomputation.
package reactive

import "sync"

// Readable is an observable value that cannot be written by the holder.
type Readable[T any] interface {
	// Get returns the current value.
	Get() T
	// Subscribe registers fn, calls it once with the current value, and
	// returns a function that removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())
}

// Value is a writable observable.
type Value[T any] struct {
	mu   sync.Mutex
	v    T
	subs map[int]func(T)
	next int
}

// New creates a Value holding v.
func New[T any](v T) *Value[T] {
	return &Value[T]{v: v, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (x *Value[T]) Get() T {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.v
}

// Set replaces the value and notifies every subscriber.
func (x *Value[T]) Set(v T) {
	x.mu.Lock()
	x.v = v
	subs := x.snapshot()
	x.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update sets the value to fn(current).
func (x *Value[T]) Update(fn func(T) T) {
	x.Set(fn(x.Get()))
}

// Subscribe implements Readable.
func (x *Value[T]) Subscribe(fn func(T)) func() {
	x.mu.Lock()
	id := x.next
	x.next++
	x.subs[id] = fn
	v := x.v
	x.mu.Unlock()

	fn(v)

	return func() {
		x.mu.Lock()
		delete(x.subs, id)
		x.mu.Unlock()
	}
}

// snapshot returns subscribers in registration order. Callers hold mu.
func (x *Value[T]) snapshot() []func(T) {
	out := make([]func(T), 0, len(x.subs))
	for id := 0; id < x.next; id++ {
		if fn, ok := x.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
