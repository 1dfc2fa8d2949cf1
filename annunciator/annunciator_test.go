package annunciator

import (
	"testing"

	"linkbridge-go/errcode"
	"linkbridge-go/fault"
)

// fakeLED records on/off pulses against a simulated clock.
type fakeLED struct {
	now     *int64
	on      bool
	onSince int64
	pulses  []int64 // durations of completed on periods, ms
	failSet bool
}

func (l *fakeLED) Set(on bool) error {
	if l.failSet {
		return errcode.LEDSetState
	}
	if on && !l.on {
		l.onSince = *l.now
	}
	if !on && l.on {
		l.pulses = append(l.pulses, *l.now-l.onSince)
	}
	l.on = on
	return nil
}

func (l *fakeLED) Get() (bool, error) { return l.on, nil }

// play steps the simulated clock 1 ms at a time until the queue is drained
// and playback has terminated.
func play(t *testing.T, a *Annunciator, q *fault.Queue, clock *int64) {
	t.Helper()
	for limit := 0; limit < 200000; limit++ {
		a.Update(*clock)
		if !a.Playing() && q.Len() == 0 {
			// One more tick confirms it stays idle.
			a.Update(*clock)
			if !a.Playing() {
				return
			}
		}
		*clock++
	}
	t.Fatal("playback did not terminate")
}

func TestPlaysCodesInOrderWithoutInterleaving(t *testing.T) {
	var q fault.Queue
	var clock int64
	led := &fakeLED{now: &clock}
	a := New(led, &q, nil)

	q.TryEnqueue(5)
	q.TryEnqueue(12)
	play(t, a, &q, &clock)

	// 5 -> "....." then 12 -> ".---- ..---".
	want := []int64{
		200, 200, 200, 200, 200, // ..... (code 5, complete)
		200, 600, 600, 600, 600, // .----
		200, 200, 600, 600, 600, // ..---
	}
	if len(led.pulses) != len(want) {
		t.Fatalf("got %d pulses %v, want %d", len(led.pulses), led.pulses, len(want))
	}
	for i, d := range led.pulses {
		if d != want[i] {
			t.Fatalf("pulse %d lasted %dms, want %dms (pulses %v)", i, d, want[i], led.pulses)
		}
	}
}

func TestIdleWithEmptyQueue(t *testing.T) {
	var q fault.Queue
	var clock int64
	led := &fakeLED{now: &clock}
	a := New(led, &q, nil)

	for i := 0; i < 100; i++ {
		a.Update(clock)
		clock += 10
	}
	if a.Playing() || led.on || len(led.pulses) != 0 {
		t.Fatalf("annunciator left idle state with nothing queued")
	}
}

func TestNextCodeFetchedOnlyAfterCompletion(t *testing.T) {
	var q fault.Queue
	var clock int64
	led := &fakeLED{now: &clock}
	a := New(led, &q, nil)

	q.TryEnqueue(0)
	a.Update(clock) // loads code 0
	if !a.Playing() {
		t.Fatal("sequence not loaded")
	}
	// A code arriving mid-playback must wait.
	q.TryEnqueue(1)
	for a.Playing() {
		a.Update(clock)
		clock++
		if q.Len() == 0 {
			break
		}
	}
	if q.Len() != 1 {
		t.Fatal("second code fetched before first sequence terminated")
	}
}

func TestInvalidSymbolResets(t *testing.T) {
	var q fault.Queue
	var clock int64
	led := &fakeLED{now: &clock}
	a := New(led, &q, nil)

	// Corrupt a loaded sequence so the invalid-symbol path runs.
	q.TryEnqueue(5)
	a.Update(clock)
	a.seq[2] = '?'

	for i := 0; i < 10000 && a.Playing(); i++ {
		a.Update(clock)
		clock++
	}
	if a.Playing() {
		t.Fatal("invalid symbol did not discard the sequence")
	}
	if led.on {
		t.Fatal("LED left on after reset")
	}
}

func TestLEDFailureIsReported(t *testing.T) {
	var q fault.Queue
	var clock int64
	led := &fakeLED{now: &clock, failSet: true}
	var reported []error
	a := New(led, &q, func(err error) { reported = append(reported, err) })

	q.TryEnqueue(5)
	a.Update(clock)
	clock++
	a.Update(clock)
	if len(reported) == 0 {
		t.Fatal("LED set failure was not reported")
	}
	if reported[0] != errcode.LEDSetState {
		t.Fatalf("reported %v", reported[0])
	}
}
