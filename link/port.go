// Package link drives the two hardware transfer directions of the UART side
// against the staging rings, with bounded retry on hardware faults.
package link

// Status is the polled state of one transfer direction.
type Status uint8

const (
	Idle Status = iota
	Active
	Complete
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Complete:
		return "complete"
	case Error:
		return "error"
	}
	return "unknown"
}

// Port is the hardware transfer handle for the wire-side UART.
//
// The port owns the raw transfer arenas; TXBuffer and RXBuffer hand out range
// views into them, so there is never an aliasing question between the
// transfer-in-flight view and the buffer contents. Flag state is polled, not
// delivered by callback, which keeps the manager pure and testable.
type Port interface {
	// StartWrite begins transmitting the first n bytes of the TX arena.
	StartWrite(n int) error
	// StartRead begins a receive sized to the full RX arena.
	StartRead() error

	TXStatus() Status
	RXStatus() Status

	// TXBuffer returns a writable view of the first n bytes of the TX arena.
	TXBuffer(n int) ([]byte, bool)
	// RXBuffer returns a readable view of the first n bytes of the RX arena.
	RXBuffer(n int) ([]byte, bool)

	// RXRemaining is the hardware down-counter: arena size minus the bytes
	// received so far in the current transfer.
	RXRemaining() int

	// RXIdle reports that the line has gone quiet with no receive in flight,
	// the cue to harvest a partially filled burst.
	RXIdle() bool

	TXFault() bool
	RXFault() bool

	// RestartTX and RestartRX re-arm a direction after its faults have been
	// cleared.
	RestartTX() error
	RestartRX() error

	// ClearFaults resets the hardware fault flags for both directions.
	ClearFaults()
}
