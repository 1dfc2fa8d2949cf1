package fault

import (
	"sync/atomic"

	"linkbridge-go/errcode"
)

// Dispatcher funnels domain errors into the queue as central-taxonomy codes.
// Nothing here ever propagates back into the data path: an error that cannot
// be unified, or a full queue, is logged and forgotten.
type Dispatcher struct {
	q *Queue

	// dropped counts codes lost to a full queue since boot.
	dropped atomic.Uint32
}

// NewDispatcher returns a dispatcher feeding q.
func NewDispatcher(q *Queue) *Dispatcher {
	return &Dispatcher{q: q}
}

// Report unifies err and enqueues its code. Safe to call with nil.
func (d *Dispatcher) Report(err error) {
	if err == nil {
		return
	}
	dev, ok := errcode.Unify(err)
	if !ok {
		println("Warn: unclassified fault:", err.Error())
		return
	}
	println("Error:", dev.Error())
	if !d.q.TryEnqueue(dev.Ordinal()) {
		d.dropped.Add(1)
		println("Warn: fault queue full, code dropped")
	}
}

// Dropped returns how many codes were lost to queue overflow.
func (d *Dispatcher) Dropped() uint32 { return d.dropped.Load() }
