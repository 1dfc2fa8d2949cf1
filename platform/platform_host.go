//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"linkbridge-go/config"
	"linkbridge-go/errcode"
	"linkbridge-go/link"
)

// Setup on a host build wires a loopback: whatever leaves over the link
// comes straight back, so the full pipeline can run with nothing attached.
func Setup() (*Hardware, error) {
	lp := NewLoopbackPort()
	return &Hardware{
		Link:      lp,
		USB:       NewMemoryEndpoint(),
		FaultLED:  &MemoryLED{},
		StatusLED: &MemoryLED{},
	}, nil
}

// -----------------------------------------------------------------------------
// Loopback link port
// -----------------------------------------------------------------------------

// LoopbackPort implements link.Port with the wire shorted: completed
// transmits feed the receive side. Faults can be injected for exercising the
// retry path.
type LoopbackPort struct {
	mu sync.Mutex

	txArena [config.DMABufferLen]byte
	rxArena [config.DMABufferLen]byte

	wire     []byte // in flight between TX and RX
	rxFill   int
	rxActive bool

	txFaulted bool
	rxFaulted bool
}

func NewLoopbackPort() *LoopbackPort { return &LoopbackPort{} }

func (p *LoopbackPort) StartWrite(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 || n > len(p.txArena) {
		return errcode.LinkTransferFault
	}
	p.wire = append(p.wire, p.txArena[:n]...)
	return nil
}

func (p *LoopbackPort) StartRead() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxFill = 0
	p.rxActive = true
	return nil
}

func (p *LoopbackPort) TXStatus() link.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.txFaulted {
		return link.Error
	}
	return link.Idle // loopback transmits complete instantly
}

func (p *LoopbackPort) RXStatus() link.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rxFaulted {
		return link.Error
	}
	if !p.rxActive {
		return link.Idle
	}
	p.pump()
	if p.rxFill == len(p.rxArena) {
		return link.Complete
	}
	return link.Active
}

func (p *LoopbackPort) TXBuffer(n int) ([]byte, bool) {
	if n < 0 || n > len(p.txArena) {
		return nil, false
	}
	return p.txArena[:n], true
}

func (p *LoopbackPort) RXBuffer(n int) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n < 0 || n > p.rxFill {
		return nil, false
	}
	return p.rxArena[:n], true
}

func (p *LoopbackPort) RXRemaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pump()
	return len(p.rxArena) - p.rxFill
}

func (p *LoopbackPort) RXIdle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pump()
	return len(p.wire) == 0
}

func (p *LoopbackPort) TXFault() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.txFaulted
}

func (p *LoopbackPort) RXFault() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rxFaulted
}

func (p *LoopbackPort) RestartTX() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txFaulted = false
	return nil
}

func (p *LoopbackPort) RestartRX() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rxFill = 0
	p.rxActive = true
	p.rxFaulted = false
	return nil
}

func (p *LoopbackPort) ClearFaults() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txFaulted = false
	p.rxFaulted = false
}

// InjectFault raises a hardware fault flag on one direction ("tx" or "rx").
func (p *LoopbackPort) InjectFault(dir string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dir == "tx" {
		p.txFaulted = true
	} else {
		p.rxFaulted = true
	}
}

// pump moves in-flight wire bytes into the RX arena. Callers hold mu.
func (p *LoopbackPort) pump() {
	if !p.rxActive || len(p.wire) == 0 {
		return
	}
	n := copy(p.rxArena[p.rxFill:], p.wire)
	p.rxFill += n
	p.wire = p.wire[n:]
}

// -----------------------------------------------------------------------------
// In-memory USB endpoint
// -----------------------------------------------------------------------------

// MemoryEndpoint is a host-side stand-in for the CDC port: packets are
// injected and drained programmatically.
type MemoryEndpoint struct {
	mu          sync.Mutex
	configured  bool
	inbound     [][]byte
	outbound    []byte
	acceptLimit int
}

func NewMemoryEndpoint() *MemoryEndpoint {
	return &MemoryEndpoint{configured: true}
}

func (e *MemoryEndpoint) Configured() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configured
}

// SetConfigured flips the enumeration state.
func (e *MemoryEndpoint) SetConfigured(on bool) {
	e.mu.Lock()
	e.configured = on
	e.mu.Unlock()
}

// SetAcceptLimit caps how many bytes a single Write accepts (0 = unlimited),
// to exercise short-write handling.
func (e *MemoryEndpoint) SetAcceptLimit(n int) {
	e.mu.Lock()
	e.acceptLimit = n
	e.mu.Unlock()
}

// Inject queues one host-to-device packet.
func (e *MemoryEndpoint) Inject(p []byte) {
	e.mu.Lock()
	e.inbound = append(e.inbound, append([]byte(nil), p...))
	e.mu.Unlock()
}

// Drain returns and clears everything the device has sent to the host.
func (e *MemoryEndpoint) Drain() []byte {
	e.mu.Lock()
	out := e.outbound
	e.outbound = nil
	e.mu.Unlock()
	return out
}

func (e *MemoryEndpoint) ReadPacket(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.inbound) == 0 {
		return 0, nil
	}
	pkt := e.inbound[0]
	e.inbound = e.inbound[1:]
	return copy(p, pkt), nil
}

func (e *MemoryEndpoint) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(p)
	if e.acceptLimit > 0 && n > e.acceptLimit {
		n = e.acceptLimit
	}
	e.outbound = append(e.outbound, p[:n]...)
	return n, nil
}

// -----------------------------------------------------------------------------
// In-memory LED
// -----------------------------------------------------------------------------

// MemoryLED records its level.
type MemoryLED struct {
	mu sync.Mutex
	on bool
}

func (l *MemoryLED) Set(on bool) error {
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
	return nil
}

func (l *MemoryLED) Get() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on, nil
}
