package fault

import (
	"sync"
	"testing"

	"linkbridge-go/config"
	"linkbridge-go/errcode"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue
	for i := uint16(0); i < 10; i++ {
		if !q.TryEnqueue(i) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	for i := uint16(0); i < 10; i++ {
		code, ok := q.Dequeue()
		if !ok || code != i {
			t.Fatalf("dequeue = %d,%v want %d", code, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("dequeue on empty queue succeeded")
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	var q Queue
	for i := 0; i < config.FaultQueueLen; i++ {
		if !q.TryEnqueue(uint16(i)) {
			t.Fatalf("enqueue %d rejected below capacity", i)
		}
	}
	if q.TryEnqueue(999) {
		t.Fatal("enqueue succeeded on full queue")
	}
	if q.Len() != config.FaultQueueLen {
		t.Fatalf("len = %d", q.Len())
	}
	// The dropped code must not have displaced queued ones.
	if code, _ := q.Dequeue(); code != 0 {
		t.Fatalf("head = %d after drop", code)
	}
}

func TestQueueConcurrentAccess(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				q.TryEnqueue(uint16(i))
			}
		}()
	}
	wg.Wait()
	if q.Len() != 200 {
		t.Fatalf("len = %d, want 200", q.Len())
	}
}

func TestSharedQueueSingleton(t *testing.T) {
	a := SharedQueue()
	b := SharedQueue()
	if a != b {
		t.Fatal("SharedQueue returned distinct instances")
	}
}

func TestDispatcherMapsDomains(t *testing.T) {
	cases := []struct {
		err  error
		want uint16
	}{
		{errcode.USBReadError, uint16(errcode.DeviceUSBFault)},
		{errcode.DMARetryLimitExceeded, uint16(errcode.DeviceDMAFault)},
		{errcode.LinkTransferFault, uint16(errcode.DeviceDMAFault)},
		{errcode.LEDSetState, uint16(errcode.DeviceLEDFault)},
		{errcode.RingOverflow, uint16(errcode.DeviceBufferOverflow)},
		{errcode.RingEmpty, uint16(errcode.DeviceBufferOverflow)},
		{errcode.RingInsufficientSpace, uint16(errcode.DeviceBufferOverflow)},
	}
	var q Queue
	d := NewDispatcher(&q)
	for _, c := range cases {
		d.Report(c.err)
	}
	for _, c := range cases {
		code, ok := q.Dequeue()
		if !ok || code != c.want {
			t.Fatalf("for %v got code %d, want %d", c.err, code, c.want)
		}
	}
}

func TestDispatcherNeverEscalates(t *testing.T) {
	var q Queue
	d := NewDispatcher(&q)

	// nil and unclassifiable errors are ignored.
	d.Report(nil)
	if q.HasFaults() {
		t.Fatal("nil report enqueued a code")
	}

	// A full queue only bumps the drop counter.
	for i := 0; i < config.FaultQueueLen; i++ {
		q.TryEnqueue(0)
	}
	d.Report(errcode.USBWriteError)
	if d.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", d.Dropped())
	}
}
