package main

import (
	"context"
	"time"

	"linkbridge-go/annunciator"
	"linkbridge-go/bus"
	"linkbridge-go/fault"
	"linkbridge-go/hostbridge"
	"linkbridge-go/link"
	"linkbridge-go/platform"
	"linkbridge-go/services/display"
	"linkbridge-go/services/heartbeat"
	"linkbridge-go/services/pipeline"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	hw, err := platform.Setup()
	if err != nil {
		// No diagnostic channel exists yet; nothing to do but say so and
		// wait for a reset.
		println("Error: platform setup failed:", err.Error())
		select {}
	}

	queue := fault.SharedQueue()
	disp := fault.NewDispatcher(queue)

	b := bus.NewBus(8)
	ctx := context.Background()

	pipe := pipeline.New(hostbridge.New(hw.USB), link.NewManager(hw.Link), disp)
	if err := pipe.Start(ctx, b.NewConnection("pipeline")); err != nil {
		disp.Report(err)
	}

	ann := annunciator.New(hw.FaultLED, queue, disp.Report)
	_ = display.New(ann).Start(ctx)
	_ = heartbeat.New(hw.StatusLED).Start(ctx, b.NewConnection("heartbeat"))

	println("Info: bridge running")

	// Run until reset.
	select {}
}
