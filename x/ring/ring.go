// Package ring provides the fixed-capacity byte FIFO used to stage data
// between the USB side and the link side.
//
// A Buffer has no internal locking. It is owned by the shared-resource
// container and the caller must hold exclusive access for the duration of
// every operation.
package ring

import (
	"linkbridge-go/errcode"
)

// Buffer is a circular byte FIFO with a fixed capacity.
//
// count is the sole authority on emptiness/fullness; the cursors are derived
// bookkeeping and are never read independently of count.
type Buffer struct {
	buf      []byte
	writePos int
	readPos  int
	count    int
}

// New returns an empty buffer with the given capacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Buffer{buf: make([]byte, capacity)}
}

// Push appends data to the buffer. Either all bytes are admitted or none:
// if data does not fit in the available space the buffer is left untouched
// and RingOverflow is returned.
func (b *Buffer) Push(data []byte) error {
	n := len(data)
	if n > b.AvailableSpace() {
		return errcode.RingOverflow
	}

	// Copy in at most two contiguous runs across the wrap point.
	first := len(b.buf) - b.writePos
	if first > n {
		first = n
	}
	copy(b.buf[b.writePos:b.writePos+first], data[:first])
	if second := n - first; second > 0 {
		copy(b.buf[:second], data[first:])
	}

	b.writePos = (b.writePos + n) % len(b.buf)
	b.count += n
	return nil
}

// Pop copies up to len(output) bytes out in FIFO order and returns how many
// were copied. An empty buffer yields 0, not an error.
func (b *Buffer) Pop(output []byte) int {
	n := len(output)
	if n > b.count {
		n = b.count
	}
	if n == 0 {
		return 0
	}

	first := len(b.buf) - b.readPos
	if first > n {
		first = n
	}
	copy(output[:first], b.buf[b.readPos:b.readPos+first])
	if second := n - first; second > 0 {
		copy(output[first:n], b.buf[:second])
	}

	b.readPos = (b.readPos + n) % len(b.buf)
	b.count -= n
	return n
}

// PopN extracts at most n bytes into dst, truncating silently to what the
// buffer actually holds and what dst can take. Used to pull exactly the byte
// count a link transmit needs.
func (b *Buffer) PopN(dst []byte, n int) int {
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return 0
	}
	return b.Pop(dst[:n])
}

// Len returns the number of buffered bytes.
func (b *Buffer) Len() int { return b.count }

// IsEmpty reports whether the buffer holds no data.
func (b *Buffer) IsEmpty() bool { return b.count == 0 }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// AvailableSpace returns how many more bytes Push can admit.
func (b *Buffer) AvailableSpace() int { return len(b.buf) - b.count }

// Clear resets the cursors and count and zeroes the backing memory.
func (b *Buffer) Clear() {
	b.writePos = 0
	b.readPos = 0
	b.count = 0
	for i := range b.buf {
		b.buf[i] = 0
	}
}
