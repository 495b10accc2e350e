package sampling

// Buffer holds values pre-drawn from a fitted model. When a value is
// requested from an empty buffer exactly size new values are drawn before
// one is handed out.
type Buffer[T any] struct {
	size     int
	values   []T
	draw     func() T
	onRefill func(n int)
}

// NewBuffer creates an empty buffer refilled in batches of size values.
// onRefill may be nil.
func NewBuffer[T any](size int, draw func() T, onRefill func(n int)) *Buffer[T] {
	if size <= 0 {
		size = 1
	}
	return &Buffer[T]{
		size:     size,
		values:   make([]T, 0, size),
		draw:     draw,
		onRefill: onRefill,
	}
}

// Next pops one value, refilling first if the buffer is empty
func (b *Buffer[T]) Next() T {
	if len(b.values) == 0 {
		b.Fill()
	}
	last := len(b.values) - 1
	v := b.values[last]
	b.values = b.values[:last]
	return v
}

// Fill appends one batch of freshly drawn values
func (b *Buffer[T]) Fill() {
	for i := 0; i < b.size; i++ {
		b.values = append(b.values, b.draw())
	}
	if b.onRefill != nil {
		b.onRefill(b.size)
	}
}

// Len returns the number of values currently buffered
func (b *Buffer[T]) Len() int {
	return len(b.values)
}

// Size returns the refill batch size
func (b *Buffer[T]) Size() int {
	return b.size
}
