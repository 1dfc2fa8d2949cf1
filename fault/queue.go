// Package fault carries diagnostic codes from wherever a fault is detected
// to the LED annunciator. It is the only part of the bridge reachable from
// every concurrency level, so the queue takes a full lock for the O(1)
// duration of each access; everything else in the tree relies on exclusive
// ownership instead.
package fault

import (
	"sync"
	"sync/atomic"

	"linkbridge-go/config"
)

// Queue is a bounded FIFO of 16-bit fault codes. Enqueue on a full queue
// fails without escalation; under a fault storm newer codes are simply lost.
type Queue struct {
	mu    sync.Mutex
	codes [config.FaultQueueLen]uint16
	head  int
	tail  int
	count int
}

// TryEnqueue appends a code and reports whether it was admitted.
func (q *Queue) TryEnqueue(code uint16) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == len(q.codes) {
		return false
	}
	q.codes[q.tail] = code
	q.tail = (q.tail + 1) % len(q.codes)
	q.count++
	return true
}

// Dequeue removes and returns the oldest code.
func (q *Queue) Dequeue() (uint16, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return 0, false
	}
	code := q.codes[q.head]
	q.head = (q.head + 1) % len(q.codes)
	q.count--
	return code, true
}

// Len returns the number of queued codes.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// HasFaults reports whether any code is waiting for display.
func (q *Queue) HasFaults() bool { return q.Len() > 0 }

// -----------------------------------------------------------------------------
// Process-wide queue
// -----------------------------------------------------------------------------

var shared atomic.Pointer[Queue]

// SharedQueue returns the process-wide fault queue, constructing it exactly
// once. Callers receive the handle explicitly and pass it into the components
// that need it rather than reaching for it ambiently.
func SharedQueue() *Queue {
	if q := shared.Load(); q != nil {
		return q
	}
	q := &Queue{}
	if shared.CompareAndSwap(nil, q) {
		return q
	}
	return shared.Load()
}
