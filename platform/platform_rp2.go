//go:build rp2040 || rp2350

package platform

import (
	"image/color"
	"machine"
	"time"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/ws2812"

	"linkbridge-go/config"
	"linkbridge-go/errcode"
	"linkbridge-go/link"
)

// Default wiring on Pico-family boards.
const (
	linkTXPin = machine.GP0
	linkRXPin = machine.GP1

	// Status LED for the heartbeat; the on-board LED is reserved for fault
	// annunciation so it is useful with nothing else attached.
	statusPin = machine.GP15
)

// usbSettle is how long after boot we assume CDC enumeration may still be in
// progress.
const usbSettle = 2 * time.Second

// Setup configures uart0 as the wire link, machine.Serial (USB CDC on RP2)
// as the host endpoint, and the LEDs.
func Setup() (*Hardware, error) {
	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: config.LinkBaud,
		TX:       linkTXPin,
		RX:       linkRXPin,
	}); err != nil {
		return nil, errcode.InitUART
	}

	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return nil, errcode.InitUSB
	}

	return &Hardware{
		Link:      &uartPort{u: u},
		USB:       &cdcEndpoint{boot: time.Now()},
		FaultLED:  newGPIOLED(machine.LED),
		StatusLED: newGPIOLED(statusPin),
	}, nil
}

// -----------------------------------------------------------------------------
// Link port over the IRQ-driven UART
// -----------------------------------------------------------------------------

// uartPort adapts uartx's buffered UART to the polled transfer-port model.
// The UART's interrupt-fed FIFOs play the role the DMA controller does on
// bigger parts: a transfer is started, progresses without the pipeline's
// involvement, and is observed by polling. The arenas live here; views into
// them are handed out, never independent copies of ownership.
type uartPort struct {
	u *uartx.UART

	txArena [config.DMABufferLen]byte
	rxArena [config.DMABufferLen]byte

	txPending []byte // unsent tail of the TX arena
	rxFill    int
	rxActive  bool

	txFaulted bool
	rxFaulted bool
}

func (p *uartPort) StartWrite(n int) error {
	if n < 0 || n > len(p.txArena) {
		return errcode.LinkTransferFault
	}
	p.txPending = p.txArena[:n]
	p.pumpTX()
	return nil
}

func (p *uartPort) StartRead() error {
	p.rxFill = 0
	p.rxActive = true
	return nil
}

func (p *uartPort) TXStatus() link.Status {
	if p.txFaulted {
		return link.Error
	}
	p.pumpTX()
	if len(p.txPending) > 0 {
		return link.Active
	}
	return link.Idle
}

func (p *uartPort) RXStatus() link.Status {
	if p.rxFaulted {
		return link.Error
	}
	if !p.rxActive {
		return link.Idle
	}
	p.pumpRX()
	if p.rxFill == len(p.rxArena) {
		return link.Complete
	}
	return link.Active
}

func (p *uartPort) TXBuffer(n int) ([]byte, bool) {
	if n < 0 || n > len(p.txArena) {
		return nil, false
	}
	return p.txArena[:n], true
}

func (p *uartPort) RXBuffer(n int) ([]byte, bool) {
	if n < 0 || n > p.rxFill {
		return nil, false
	}
	return p.rxArena[:n], true
}

func (p *uartPort) RXRemaining() int {
	p.pumpRX()
	return len(p.rxArena) - p.rxFill
}

func (p *uartPort) RXIdle() bool {
	p.pumpRX()
	return p.u.Buffered() == 0
}

// The RP2 UART reports line errors only through its receive path; the
// IRQ driver drops bad frames before we see them, so the fault flags stay
// clear unless a restart fails.
func (p *uartPort) TXFault() bool { return p.txFaulted }
func (p *uartPort) RXFault() bool { return p.rxFaulted }

func (p *uartPort) RestartTX() error {
	p.txPending = nil
	p.txFaulted = false
	return nil
}

func (p *uartPort) RestartRX() error {
	p.rxFill = 0
	p.rxActive = true
	p.rxFaulted = false
	return nil
}

func (p *uartPort) ClearFaults() {
	p.txFaulted = false
	p.rxFaulted = false
}

func (p *uartPort) pumpTX() {
	for len(p.txPending) > 0 {
		n := p.u.SendSome(p.txPending)
		if n == 0 {
			return
		}
		p.txPending = p.txPending[n:]
	}
}

func (p *uartPort) pumpRX() {
	if !p.rxActive || p.rxFill == len(p.rxArena) {
		return
	}
	n, err := p.u.Read(p.rxArena[p.rxFill:])
	if err != nil {
		p.rxFaulted = true
		return
	}
	p.rxFill += n
}

// -----------------------------------------------------------------------------
// USB CDC endpoint
// -----------------------------------------------------------------------------

// cdcEndpoint wraps machine.Serial, which is the USB CDC port on RP2 boards.
type cdcEndpoint struct {
	boot time.Time
}

func (e *cdcEndpoint) Configured() bool {
	// The stack exposes no enumeration flag; give the host a settle window
	// after boot before treating the port as live.
	return time.Since(e.boot) > usbSettle
}

func (e *cdcEndpoint) ReadPacket(p []byte) (int, error) {
	n := machine.Serial.Buffered()
	if n == 0 {
		return 0, nil
	}
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return i, nil
		}
		p[i] = b
	}
	return n, nil
}

func (e *cdcEndpoint) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}

// -----------------------------------------------------------------------------
// LEDs
// -----------------------------------------------------------------------------

type gpioLED struct {
	pin machine.Pin
}

func newGPIOLED(pin machine.Pin) *gpioLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.Low()
	return &gpioLED{pin: pin}
}

func (l *gpioLED) Set(on bool) error {
	l.pin.Set(on)
	return nil
}

func (l *gpioLED) Get() (bool, error) { return l.pin.Get(), nil }

// pixelLED drives a WS2812 NeoPixel as a single-colour status LED, for
// boards (RP2040-Zero and friends) whose only LED is addressable.
type pixelLED struct {
	dev ws2812.Device
	on  color.RGBA
	lit bool
}

// NewPixelLED returns a red NeoPixel LED on pin. Select it from a board
// variant's setup in place of the GPIO fault LED.
func NewPixelLED(pin machine.Pin) *pixelLED {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &pixelLED{dev: ws2812.NewWS2812(pin), on: color.RGBA{R: 0x40}}
}

func (l *pixelLED) Set(on bool) error {
	c := color.RGBA{}
	if on {
		c = l.on
	}
	if err := l.dev.WriteColors([]color.RGBA{c}); err != nil {
		return errcode.LEDSetState
	}
	l.lit = on
	return nil
}

func (l *pixelLED) Get() (bool, error) { return l.lit, nil }
