// Package pipeline runs the duplex forwarding loops: USB packets into the TX
// ring and out over the link, wire bytes into the RX ring and out to the USB
// host. Every failure funnels into the fault dispatcher; the data path never
// blocks on diagnostics.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"linkbridge-go/bus"
	"linkbridge-go/config"
	"linkbridge-go/fault"
	"linkbridge-go/hostbridge"
	"linkbridge-go/link"
	"linkbridge-go/x/ring"
)

var (
	topicState = bus.Topic{"pipeline", "state"}
	topicStats = bus.Topic{"pipeline", "stats"}
)

// Stats is the counters snapshot published on the bus.
type Stats struct {
	USBIn   uint32 `json:"usb_in"`
	USBOut  uint32 `json:"usb_out"`
	WireIn  uint32 `json:"wire_in"`
	WireOut uint32 `json:"wire_out"`
	Dropped uint32 `json:"fault_codes_dropped"`
}

// Service owns the rings, the bridge and the transfer manager. The link
// resources are shared between the two direction loops, so access goes
// through one mutex; holding it is this module's stand-in for raising to the
// resource ceiling.
type Service struct {
	mu     sync.Mutex
	bridge *hostbridge.Bridge
	mgr    *link.Manager
	disp   *fault.Dispatcher
	tx     *ring.Buffer
	rx     *ring.Buffer

	usbIn   atomic.Uint32
	usbOut  atomic.Uint32
	wireIn  atomic.Uint32
	wireOut atomic.Uint32
}

// New wires a pipeline over the given endpoint-facing bridge and link
// manager. Ring capacities are fixed at build time.
func New(bridge *hostbridge.Bridge, mgr *link.Manager, disp *fault.Dispatcher) *Service {
	return &Service{
		bridge: bridge,
		mgr:    mgr,
		disp:   disp,
		tx:     ring.New(config.RingBufferLen),
		rx:     ring.New(config.RingBufferLen),
	}
}

// Start arms the receive direction and spawns the forwarding loops. It
// returns immediately; the loops run until ctx is cancelled.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	// First harvest is empty and just arms the initial receive.
	s.mu.Lock()
	err := s.mgr.HandleRX(s.rx)
	s.mu.Unlock()
	if err != nil {
		s.disp.Report(err)
	}

	go s.downstreamLoop(ctx)
	go s.upstreamLoop(ctx)
	go s.statsLoop(ctx, conn)

	if conn != nil {
		conn.Publish(conn.NewMessage(topicState, "running", true))
	}
	return nil
}

// downstreamLoop moves host data toward the wire.
func (s *Service) downstreamLoop(ctx context.Context) {
	tick := time.NewTicker(config.PipelineTick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: pipeline downstream loop stopping")
			return
		case <-tick.C:
			s.pollDownstream()
		}
	}
}

// upstreamLoop moves wire data toward the host and polls for link faults.
func (s *Service) upstreamLoop(ctx context.Context) {
	tick := time.NewTicker(config.PipelineTick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: pipeline upstream loop stopping")
			return
		case <-tick.C:
			s.pollUpstream()
		}
	}
}

func (s *Service) pollDownstream() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.bridge.HandleUSB(s.tx)
	if err != nil {
		s.disp.Report(err)
	} else {
		s.usbIn.Add(uint32(n))
	}

	if s.tx.Len() > 0 && s.mgr.TXIdle() {
		chunk := s.tx.Len()
		if chunk > config.DMABufferLen {
			chunk = config.DMABufferLen
		}
		if err := s.mgr.HandleTX(s.tx, chunk); err != nil {
			s.disp.Report(err)
		} else {
			s.wireOut.Add(uint32(chunk))
		}
	}
}

func (s *Service) pollUpstream() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mgr.HandleFaults(); err != nil {
		s.disp.Report(err)
	}

	// Harvest on a full arena, or early when the line has gone idle with a
	// partial burst waiting, to keep short messages low-latency.
	if s.mgr.RXComplete() || (s.mgr.RXIdle() && s.mgr.RXPending()) {
		before := s.rx.Len()
		if err := s.mgr.HandleRX(s.rx); err != nil {
			s.disp.Report(err)
		} else {
			s.wireIn.Add(uint32(s.rx.Len() - before))
		}
	}

	n, err := s.bridge.ProcessRXBuffer(s.rx)
	if err != nil {
		s.disp.Report(err)
	}
	s.usbOut.Add(uint32(n))
}

// statsLoop publishes a retained counters snapshot once a second.
func (s *Service) statsLoop(ctx context.Context, conn *bus.Connection) {
	if conn == nil {
		return
	}
	tick := time.NewTicker(1 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			conn.Publish(conn.NewMessage(topicStats, s.Snapshot(), true))
		}
	}
}

// Snapshot returns the current counters.
func (s *Service) Snapshot() Stats {
	return Stats{
		USBIn:   s.usbIn.Load(),
		USBOut:  s.usbOut.Load(),
		WireIn:  s.wireIn.Load(),
		WireOut: s.wireOut.Load(),
		Dropped: s.disp.Dropped(),
	}
}
