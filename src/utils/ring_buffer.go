package utils

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of float64 values.
// Appending to a full buffer overwrites the oldest value.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	data     []float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}

	return &RingBuffer{
		data:     make([]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// NewRingBufferFrom fills a buffer of the given capacity with the tail of values.
func NewRingBufferFrom(capacity int, values []float64) *RingBuffer {
	rb := NewRingBuffer(capacity)
	start := 0
	if len(values) > capacity {
		start = len(values) - capacity
	}
	for _, v := range values[start:] {
		rb.Append(v)
	}
	return rb
}

// -----------------------------------------------------------------------------

// Append adds a value, dropping the oldest when full
func (rb *RingBuffer) Append(v float64) {
	rb.data[rb.index] = v
	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Snapshot returns the stored values from oldest to newest.
func (rb *RingBuffer) Snapshot() []float64 {
	out := make([]float64, rb.size)
	start := (rb.index - rb.size + rb.capacity) % rb.capacity
	for i := 0; i < rb.size; i++ {
		out[i] = rb.data[(start+i)%rb.capacity]
	}
	return out
}

// -----------------------------------------------------------------------------

// Latest returns the newest value, or false when empty.
func (rb *RingBuffer) Latest() (float64, bool) {
	if rb.size == 0 {
		return 0, false
	}
	return rb.data[(rb.index-1+rb.capacity)%rb.capacity], true
}

// -----------------------------------------------------------------------------

func (rb *RingBuffer) Len() int      { return rb.size }
func (rb *RingBuffer) Capacity() int { return rb.capacity }
func (rb *RingBuffer) IsFull() bool  { return rb.size == rb.capacity }
