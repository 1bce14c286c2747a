// Package history provides the bounded rolling windows that back the
// dashboard's charts and tables.
package history

// Buffer is a fixed-capacity ring. Pushing onto a full buffer evicts the
// oldest element. The zero value is unusable; use New.
type Buffer[T any] struct {
	items []T
	start int
	size  int
}

// New returns an empty buffer holding at most capacity elements.
// A capacity below one is treated as one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends v, evicting the oldest element when full.
func (b *Buffer[T]) Push(v T) {
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = v
		b.size++
		return
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % len(b.items)
}

// Len returns the number of stored elements.
func (b *Buffer[T]) Len() int { return b.size }

// Cap returns the maximum number of stored elements.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// At returns the i-th element, oldest first.
func (b *Buffer[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= b.size {
		return zero, false
	}
	return b.items[(b.start+i)%len(b.items)], true
}

// Last returns the newest element.
func (b *Buffer[T]) Last() (T, bool) {
	return b.At(b.size - 1)
}

// Set replaces the i-th element (oldest first) in place.
func (b *Buffer[T]) Set(i int, v T) bool {
	if i < 0 || i >= b.size {
		return false
	}
	b.items[(b.start+i)%len(b.items)] = v
	return true
}

// IndexFunc returns the position of the first element satisfying match,
// or -1.
func (b *Buffer[T]) IndexFunc(match func(T) bool) int {
	for i := range b.size {
		if match(b.items[(b.start+i)%len(b.items)]) {
			return i
		}
	}
	return -1
}

// Values returns a copy of the contents, oldest to newest.
func (b *Buffer[T]) Values() []T {
	out := make([]T, b.size)
	for i := range b.size {
		out[i] = b.items[(b.start+i)%len(b.items)]
	}
	return out
}

// Reset discards every element.
func (b *Buffer[T]) Reset() {
	clear(b.items)
	b.start, b.size = 0, 0
}
