package analytics

// ring is a fixed-capacity ring buffer. Pushing beyond capacity overwrites
// the oldest element, giving O(1) updates and bounded memory regardless of
// event rate.
type ring[T any] struct {
	buf   []T
	head  int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when full.
func (r *ring[T]) Push(v T) {
	r.buf[(r.head+r.count)%len(r.buf)] = v
	if r.count < len(r.buf) {
		r.count++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

// Len returns the number of stored elements.
func (r *ring[T]) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *ring[T]) Cap() int { return len(r.buf) }

// Full reports whether the ring holds Cap() elements.
func (r *ring[T]) Full() bool { return r.count == len(r.buf) }

// At returns the i-th element in insertion order (0 = oldest).
func (r *ring[T]) At(i int) T {
	return r.buf[(r.head+i)%len(r.buf)]
}

// Last returns the most recently pushed element. Callers must check Len first.
func (r *ring[T]) Last() T {
	return r.At(r.count - 1)
}

// Slice copies the elements into a new slice in insertion order.
func (r *ring[T]) Slice() []T {
	out := make([]T, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.At(i)
	}
	return out
}
