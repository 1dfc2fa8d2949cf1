// Package errcode defines the closed error taxonomies of the bridge.
//
// Each domain is its own enum; the numeric value of a variant is its ordinal
// within that domain only. Once a code has been unified and queued for
// display, the domain context is gone, so unrelated faults from different
// domains may share a number. That ambiguity is deliberate and documented.
package errcode

// Ordinal is implemented by every domain error. The returned value is the
// variant's position inside its own taxonomy, nothing more.
type Ordinal interface {
	error
	Ordinal() uint16
}

// -----------------------------------------------------------------------------
// Ring buffer domain
// -----------------------------------------------------------------------------

type RingError uint16

const (
	RingOverflow RingError = iota
	RingInsufficientSpace
	RingEmpty
)

func (e RingError) Ordinal() uint16 { return uint16(e) }

func (e RingError) Error() string {
	switch e {
	case RingOverflow:
		return "ring buffer overflow"
	case RingInsufficientSpace:
		return "insufficient space in ring buffer"
	case RingEmpty:
		return "ring buffer empty"
	}
	return "ring buffer error"
}

// -----------------------------------------------------------------------------
// LED domain
// -----------------------------------------------------------------------------

type LEDError uint16

const (
	LEDSetState LEDError = iota
	LEDReadState
)

func (e LEDError) Ordinal() uint16 { return uint16(e) }

func (e LEDError) Error() string {
	switch e {
	case LEDSetState:
		return "failed to set LED state"
	case LEDReadState:
		return "failed to read LED state"
	}
	return "LED error"
}

// -----------------------------------------------------------------------------
// Link (UART-side) domain
// -----------------------------------------------------------------------------

type LinkError uint16

const (
	LinkDMAFault LinkError = iota
	LinkTransferFault
	LinkTimeout
	LinkNotInitialized
	LinkBufferOverflow
	LinkFlagNotSet
)

func (e LinkError) Ordinal() uint16 { return uint16(e) }

func (e LinkError) Error() string {
	switch e {
	case LinkDMAFault:
		return "DMA fault on link"
	case LinkTransferFault:
		return "link transfer fault"
	case LinkTimeout:
		return "link operation timed out"
	case LinkNotInitialized:
		return "link not initialized"
	case LinkBufferOverflow:
		return "link buffer overflow"
	case LinkFlagNotSet:
		return "link flag not set"
	}
	return "link error"
}

// -----------------------------------------------------------------------------
// USB domain
// -----------------------------------------------------------------------------

type USBError uint16

const (
	USBNotInitialized USBError = iota
	USBReadError
	USBWriteError
	USBBufferOverflow
	USBInitError
	USBPollError
)

func (e USBError) Ordinal() uint16 { return uint16(e) }

func (e USBError) Error() string {
	switch e {
	case USBNotInitialized:
		return "USB device not initialized"
	case USBReadError:
		return "failed to read from USB"
	case USBWriteError:
		return "failed to write to USB"
	case USBBufferOverflow:
		return "USB buffer overflow"
	case USBInitError:
		return "failed to initialize USB"
	case USBPollError:
		return "failed to poll USB"
	}
	return "USB error"
}

// -----------------------------------------------------------------------------
// DMA transfer domain
// -----------------------------------------------------------------------------

type DMAError uint16

const (
	DMAInitError DMAError = iota
	DMATransferError
	DMARetryLimitExceeded
	DMABufferOverflow
	DMABufferUnderflow
	DMAWriteError
	DMAReadError
)

func (e DMAError) Ordinal() uint16 { return uint16(e) }

func (e DMAError) Error() string {
	switch e {
	case DMAInitError:
		return "failed to initialize DMA"
	case DMATransferError:
		return "DMA transfer error"
	case DMARetryLimitExceeded:
		return "DMA retry limit exceeded"
	case DMABufferOverflow:
		return "DMA buffer overflow"
	case DMABufferUnderflow:
		return "DMA buffer underflow"
	case DMAWriteError:
		return "failed to write using DMA"
	case DMAReadError:
		return "failed to read using DMA"
	}
	return "DMA error"
}

// -----------------------------------------------------------------------------
// Initialization domain
// -----------------------------------------------------------------------------

type InitError uint16

const (
	InitUART InitError = iota
	InitUSB
	InitClock
	InitTable
)

func (e InitError) Ordinal() uint16 { return uint16(e) }

func (e InitError) Error() string {
	switch e {
	case InitUART:
		return "UART initialization error"
	case InitUSB:
		return "USB initialization error"
	case InitClock:
		return "clock initialization error"
	case InitTable:
		return "lookup table initialization error"
	}
	return "initialization error"
}

// -----------------------------------------------------------------------------
// Central device domain
// -----------------------------------------------------------------------------

// DeviceError is the unified taxonomy everything collapses into before a code
// is queued for display.
type DeviceError uint16

const (
	DeviceUSBFault DeviceError = iota
	DeviceDMAFault
	DeviceBufferOverflow
	DeviceTimeout
	DeviceLEDFault
)

func (e DeviceError) Ordinal() uint16 { return uint16(e) }

func (e DeviceError) Error() string {
	switch e {
	case DeviceUSBFault:
		return "USB device fault"
	case DeviceDMAFault:
		return "DMA fault"
	case DeviceBufferOverflow:
		return "device buffer overflow"
	case DeviceTimeout:
		return "operation timed out"
	case DeviceLEDFault:
		return "LED fault"
	}
	return "device fault"
}

// Unify collapses any domain error into the central taxonomy. UART-side link
// faults are treated as DMA-layer faults; every ring buffer variant folds
// into BufferOverflow, so the three ring variants are not distinguishable
// past this point.
func Unify(err error) (DeviceError, bool) {
	switch e := err.(type) {
	case nil:
		return 0, false
	case DeviceError:
		return e, true
	case USBError:
		return DeviceUSBFault, true
	case DMAError:
		return DeviceDMAFault, true
	case LinkError:
		return DeviceDMAFault, true
	case LEDError:
		return DeviceLEDFault, true
	case RingError:
		return DeviceBufferOverflow, true
	}
	return 0, false
}
