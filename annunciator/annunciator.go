// Package annunciator plays queued fault codes on the status LED as
// Morse-coded decimal digits. It is the only user-visible diagnostic channel
// when nothing else is attached.
package annunciator

import (
	"linkbridge-go/config"
	"linkbridge-go/errcode"
	"linkbridge-go/fault"
	"linkbridge-go/x/morse"
)

// LED is the status LED as the annunciator sees it.
type LED interface {
	Set(on bool) error
	Get() (bool, error)
}

// Timing constants in milliseconds.
const (
	DotMs         = 200
	DashMs        = DotMs * 3
	SymbolPauseMs = DotMs
	WordPauseMs   = DotMs * 7
)

// State of the playback machine.
type State uint8

const (
	// StateIdle waits to start the next symbol (or the next code).
	StateIdle State = iota
	// StateSignal holds the LED on for the symbol's duration.
	StateSignal
	// StatePause holds the LED off between symbols or digit groups.
	StatePause
)

// Annunciator dequeues codes one at a time and times the LED pattern.
// Codes play strictly in FIFO order; the next code is not fetched until the
// previous sequence has fully terminated.
type Annunciator struct {
	led     LED
	queue   *fault.Queue
	report  func(error)
	seq     [config.MaxMorseLen]byte
	length  int
	index   int
	active  bool
	state   State
	lastMs  int64
}

// New returns an annunciator reading from queue and driving led. report
// receives LED and encoding failures; it may be nil.
func New(led LED, queue *fault.Queue, report func(error)) *Annunciator {
	if report == nil {
		report = func(error) {}
	}
	return &Annunciator{led: led, queue: queue, report: report}
}

// Update advances the state machine. nowMs is the current timestamp in
// milliseconds; callers tick it from the display loop.
func (a *Annunciator) Update(nowMs int64) {
	if !a.active {
		a.startNextSequence()
		return
	}

	elapsed := nowMs - a.lastMs
	switch a.state {
	case StateIdle:
		a.stepIdle(nowMs)
	case StateSignal:
		a.stepSignal(elapsed, nowMs)
	case StatePause:
		a.stepPause(elapsed, nowMs)
	}
}

// Playing reports whether a sequence is in progress.
func (a *Annunciator) Playing() bool { return a.active }

// startNextSequence loads the next queued code, if any.
func (a *Annunciator) startNextSequence() {
	code, ok := a.queue.Dequeue()
	if !ok {
		return
	}
	n, err := morse.EncodeNumber(a.seq[:], code)
	if err != nil {
		a.report(err)
		return
	}
	a.length = n
	a.index = 0
	a.state = StateIdle
	a.lastMs = 0
	a.active = true
}

func (a *Annunciator) stepIdle(nowMs int64) {
	if a.index >= a.length {
		a.reset()
		return
	}
	switch a.seq[a.index] {
	case morse.Dot, morse.Dash:
		a.setLED(true)
		a.state = StateSignal
		a.lastMs = nowMs
	case morse.Gap:
		a.state = StatePause
		a.lastMs = nowMs
	default:
		// An invalid symbol discards the whole sequence.
		a.reset()
	}
}

func (a *Annunciator) stepSignal(elapsed, nowMs int64) {
	var duration int64
	switch a.seq[a.index] {
	case morse.Dot:
		duration = DotMs
	case morse.Dash:
		duration = DashMs
	default:
		a.reset()
		return
	}
	if elapsed >= duration {
		a.setLED(false)
		a.state = StatePause
		a.lastMs = nowMs
	}
}

func (a *Annunciator) stepPause(elapsed, nowMs int64) {
	var pause int64
	switch a.seq[a.index] {
	case morse.Dot, morse.Dash:
		pause = SymbolPauseMs
	case morse.Gap:
		pause = WordPauseMs
	default:
		a.reset()
		return
	}
	if elapsed >= pause {
		a.index++
		a.state = StateIdle
		a.lastMs = nowMs
	}
}

// reset discards the current sequence and returns to empty idle, ready for
// the next code.
func (a *Annunciator) reset() {
	a.setLED(false)
	a.length = 0
	a.index = 0
	a.state = StateIdle
	a.lastMs = 0
	a.active = false
}

func (a *Annunciator) setLED(on bool) {
	if err := a.led.Set(on); err != nil {
		a.report(errcode.LEDSetState)
	}
}
