// Package heartbeat toggles the operational status LED so an attached human
// can see the firmware is alive. Lowest priority: it may be starved without
// harm.
package heartbeat

import (
	"context"
	"time"

	"linkbridge-go/annunciator"
	"linkbridge-go/bus"
	"linkbridge-go/config"
)

var topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}

type Service struct {
	led annunciator.LED
}

func New(led annunciator.LED) *Service {
	return &Service{led: led}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(config.HeartbeatTick)
	defer tick.Stop()

	on := false
	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			on = !on
			if err := s.led.Set(on); err != nil {
				println("Warn: heartbeat LED set failed")
			}
		case msg := <-cfgSub.Channel():
			// Change tick interval if requested.
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if interval, ok := iv.(float64); ok && interval > 0 {
						tick.Reset(time.Duration(interval * float64(time.Second)))
						println("Info: heartbeat interval updated")
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
