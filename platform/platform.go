// Package platform assembles the board-facing side of the bridge: the link
// transfer port, the USB CDC endpoint and the two status LEDs. Build tags
// select the RP2 implementation or the host loopback used by tests and the
// bridgetest harness.
package platform

import (
	"linkbridge-go/annunciator"
	"linkbridge-go/hostbridge"
	"linkbridge-go/link"
)

// Hardware is everything Setup hands to the services.
type Hardware struct {
	Link link.Port
	USB  hostbridge.Endpoint

	// FaultLED plays Morse-coded fault digits; StatusLED blinks the
	// heartbeat.
	FaultLED  annunciator.LED
	StatusLED annunciator.LED
}
