// Package hostbridge moves packets between the USB virtual-serial endpoint
// and the staging rings.
package hostbridge

import (
	"linkbridge-go/config"
	"linkbridge-go/errcode"
	"linkbridge-go/x/ring"
)

// Endpoint is the USB CDC serial endpoint as the bridge sees it.
type Endpoint interface {
	// Configured reports whether enumeration has completed.
	Configured() bool
	// ReadPacket fills p with at most one packet and returns its length.
	// No pending data is (0, nil), not an error.
	ReadPacket(p []byte) (int, error)
	// Write sends p toward the host. Short writes are permitted by the
	// transport and must be handled by the caller.
	Write(p []byte) (int, error)
}

// Bridge owns the fixed staging areas for both directions, so packet
// handling never allocates.
type Bridge struct {
	usb     Endpoint
	inbound [config.DataPacketSize]byte
	staging [config.DataPacketSize]byte
}

// New returns a bridge over usb.
func New(usb Endpoint) *Bridge {
	return &Bridge{usb: usb}
}

// HandleUSB reads one packet from the endpoint into the TX ring and returns
// how many bytes were admitted.
//
// Before enumeration completes this is a no-op, not an error. A packet the
// ring cannot take whole is rejected entirely: either every byte of the
// packet is admitted or none.
func (b *Bridge) HandleUSB(tx *ring.Buffer) (int, error) {
	if !b.usb.Configured() {
		return 0, nil
	}

	n, err := b.usb.ReadPacket(b.inbound[:])
	if err != nil {
		return 0, errcode.USBReadError
	}
	if n == 0 {
		return 0, nil
	}

	if tx.AvailableSpace() < n {
		return 0, errcode.USBBufferOverflow
	}
	if err := tx.Push(b.inbound[:n]); err != nil {
		return 0, errcode.USBBufferOverflow
	}
	return n, nil
}

// ProcessRXBuffer drains up to one packet's worth from the RX ring and
// writes it to the endpoint, returning the bytes actually sent.
//
// On a short write the unsent remainder is pushed back onto the ring's tail,
// which serves it after any bytes that arrived from the wire in the interim.
// That reordering is long-standing behavior and is kept as is.
func (b *Bridge) ProcessRXBuffer(rx *ring.Buffer) (int, error) {
	if rx.IsEmpty() {
		return 0, nil
	}

	n := rx.Pop(b.staging[:])
	written, err := b.usb.Write(b.staging[:n])
	if err != nil {
		return 0, errcode.USBWriteError
	}
	if written < n {
		if err := rx.Push(b.staging[written:n]); err != nil {
			return written, errcode.USBBufferOverflow
		}
	}
	return written, nil
}
