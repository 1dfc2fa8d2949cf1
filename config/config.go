// Package config holds the fixed build-time capacities and cadences of the
// bridge. Sizes are consumed by the core packages but owned here, so a board
// variant can be retuned in one place.
package config

import "time"

// Link transfer sizing.
const (
	// RingBufferLen is the capacity of each direction's staging ring.
	RingBufferLen = 512

	// DMABufferLen is the size of the hardware transfer arena per direction.
	// One transfer moves at most this many bytes.
	DMABufferLen = 128

	// DataPacketSize is the largest USB packet the bridge stages per call.
	DataPacketSize = 128
)

// Diagnostics sizing.
const (
	// FaultQueueLen bounds the fault-code queue. Codes beyond this are
	// dropped.
	FaultQueueLen = 256

	// MaxMorseLen caps an encoded playback sequence in symbols. Unreachable
	// for 16-bit codes but enforced.
	MaxMorseLen = 100
)

// LinkBaud is the wire-side UART baud rate.
const LinkBaud uint32 = 115200

// Service loop cadences.
const (
	PipelineTick  = 1 * time.Millisecond
	DisplayTick   = 10 * time.Millisecond
	HeartbeatTick = 1 * time.Second
)
