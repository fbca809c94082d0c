package reactive

// Derived is a read-only value computed from other observables.
type Derived[T any] struct {
	out   *Value[T]
	stops []func()
}

// Derive2 returns a value equal to fn(a, b) that is recomputed synchronously
// whenever a or b changes.
func Derive2[A, B, R any](a Readable[A], b Readable[B], fn func(A, B) R) *Derived[R] {
	d := &Derived[R]{out: New(fn(a.Get(), b.Get()))}

	// Subscribe fires immediately; the initial value is already computed.
	ready := false
	d.stops = append(d.stops,
		a.Subscribe(func(av A) {
			if ready {
				d.out.Set(fn(av, b.Get()))
			}
		}),
		b.Subscribe(func(bv B) {
			if ready {
				d.out.Set(fn(a.Get(), bv))
			}
		}),
	)
	ready = true
	return d
}

// Get implements Readable.
func (d *Derived[T]) Get() T {
	return d.out.Get()
}

// Subscribe implements Readable.
func (d *Derived[T]) Subscribe(fn func(T)) func() {
	return d.out.Subscribe(fn)
}

// Stop detaches d from its inputs. The last computed value stays readable.
func (d *Derived[T]) Stop() {
	for _, stop := range d.stops {
		stop()
	}
	d.stops = nil
}
