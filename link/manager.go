package link

import (
	"linkbridge-go/config"
	"linkbridge-go/errcode"
	"linkbridge-go/x/ring"
)

// MaxRetryCount bounds consecutive fault recoveries per direction. It is a
// consecutive-failure tolerance, not a total budget: a fresh fault window
// after the reset gets the full allowance again.
const MaxRetryCount = 3

// Manager owns the port and moves bytes between it and the staging rings.
// Each direction keeps its own consecutive-fault counter.
type Manager struct {
	port      Port
	txRetries uint8
	rxRetries uint8
	scratch   [config.DMABufferLen]byte
}

// NewManager returns a manager driving port.
func NewManager(port Port) *Manager {
	return &Manager{port: port}
}

// HandleTX pulls n bytes from the TX ring into the port's TX arena and
// starts the transmit.
//
// Returns DMABufferUnderflow when n exceeds the arena or the ring holds
// fewer bytes, DMAWriteError when the arena view or the start fails. Fault
// flags are cleared before WriteError is reported so the next attempt starts
// clean.
func (m *Manager) HandleTX(tx *ring.Buffer, n int) error {
	if n > config.DMABufferLen || tx.Len() < n {
		return errcode.DMABufferUnderflow
	}

	got := tx.PopN(m.scratch[:], n)
	dst, ok := m.port.TXBuffer(got)
	if !ok {
		return errcode.DMAWriteError
	}
	copy(dst, m.scratch[:got])

	if err := m.port.StartWrite(got); err != nil {
		m.port.ClearFaults()
		return errcode.DMAWriteError
	}
	m.txRetries = 0
	return nil
}

// HandleRX harvests the bytes the current receive has produced, pushes them
// into the RX ring, and re-arms the receive for the full arena.
//
// Returns DMAReadError on a transfer fault, DMABufferOverflow when the ring
// cannot take the harvested bytes (the receive is still re-armed so the wire
// is never left unserviced).
func (m *Manager) HandleRX(rx *ring.Buffer) error {
	received := config.DMABufferLen - m.port.RXRemaining()
	if received < 0 || received > config.DMABufferLen {
		return errcode.DMAReadError
	}

	var pushErr error
	if received > 0 {
		src, ok := m.port.RXBuffer(received)
		if !ok {
			return errcode.DMAReadError
		}
		if err := rx.Push(src); err != nil {
			pushErr = errcode.DMABufferOverflow
		}
	}

	if err := m.port.StartRead(); err != nil {
		m.port.ClearFaults()
		return errcode.DMAReadError
	}
	if pushErr != nil {
		return pushErr
	}
	m.rxRetries = 0
	return nil
}

// HandleFaults polls both directions for hardware faults and recovers in
// place: clear flags, restart, bump the direction's counter. Exceeding
// MaxRetryCount yields DMARetryLimitExceeded and resets that counter to
// zero.
func (m *Manager) HandleFaults() error {
	if m.port.RXFault() {
		if err := m.recover(&m.rxRetries, m.port.RestartRX); err != nil {
			return err
		}
	}
	if m.port.TXFault() {
		if err := m.recover(&m.txRetries, m.port.RestartTX); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) recover(retries *uint8, restart func() error) error {
	*retries++
	if *retries > MaxRetryCount {
		*retries = 0
		return errcode.DMARetryLimitExceeded
	}
	m.port.ClearFaults()
	if err := restart(); err != nil {
		return errcode.DMAInitError
	}
	return nil
}

// TXIdle reports whether a new transmit may be started.
func (m *Manager) TXIdle() bool {
	s := m.port.TXStatus()
	return s == Idle || s == Complete
}

// RXIdle reports whether the line is quiet, the cue to harvest a partial
// burst before the arena fills.
func (m *Manager) RXIdle() bool { return m.port.RXIdle() }

// RXComplete reports whether the in-flight receive has filled the arena.
func (m *Manager) RXComplete() bool { return m.port.RXStatus() == Complete }

// RXPending reports whether the current receive has produced any bytes yet.
func (m *Manager) RXPending() bool {
	return m.port.RXRemaining() < config.DMABufferLen
}
