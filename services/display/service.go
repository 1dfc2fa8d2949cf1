// Package display runs the fault annunciator loop. It gets the highest
// service priority in the scheduler wiring so queued faults are never
// starved of display time.
package display

import (
	"context"
	"time"

	"linkbridge-go/annunciator"
	"linkbridge-go/config"
	"linkbridge-go/x/timex"
)

type Service struct {
	ann *annunciator.Annunciator
}

func New(ann *annunciator.Annunciator) *Service {
	return &Service{ann: ann}
}

// Start spawns the display loop. The annunciator is ticked with wall-clock
// milliseconds; the tick period only bounds timing granularity, not the
// symbol durations themselves.
func (s *Service) Start(ctx context.Context) error {
	go s.loop(ctx)
	return nil
}

func (s *Service) loop(ctx context.Context) {
	tick := time.NewTicker(config.DisplayTick)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: display service stopping")
			return
		case <-tick.C:
			s.ann.Update(timex.NowMs())
		}
	}
}
