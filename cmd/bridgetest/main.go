// cmd/bridgetest/main.go
//
// Host-side harness for the bridge pipeline. Runs the whole stack against
// the loopback link, so bytes "sent" from the fake host come back to it, and
// faults can be injected to watch the diagnostic path end to end.
//
// Usage: run, then type commands:
//
//	send <text...>   inject one USB packet
//	burst <n>        inject n bytes of counter data
//	limit <n>        cap endpoint writes at n bytes (0 = unlimited)
//	fault <tx|rx>    raise a hardware fault flag on the link
//	plug / unplug    toggle USB enumeration state
//	codes            drain queued fault codes and show their Morse patterns
//	stats            print pipeline counters and queue depth
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"linkbridge-go/annunciator"
	"linkbridge-go/bus"
	"linkbridge-go/config"
	"linkbridge-go/fault"
	"linkbridge-go/hostbridge"
	"linkbridge-go/link"
	"linkbridge-go/platform"
	"linkbridge-go/services/display"
	"linkbridge-go/services/pipeline"
	"linkbridge-go/x/morse"
)

func main() {
	port := platform.NewLoopbackPort()
	usb := platform.NewMemoryEndpoint()
	led := &platform.MemoryLED{}

	queue := fault.SharedQueue()
	disp := fault.NewDispatcher(queue)
	b := bus.NewBus(8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := pipeline.New(hostbridge.New(usb), link.NewManager(port), disp)
	if err := pipe.Start(ctx, b.NewConnection("pipeline")); err != nil {
		fmt.Fprintln(os.Stderr, "pipeline start:", err)
		os.Exit(1)
	}
	ann := annunciator.New(led, queue, disp.Report)
	_ = display.New(ann).Start(ctx)

	fmt.Println("bridgetest: loopback pipeline running; 'help' for commands")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		args, err := shlex.Split(sc.Text())
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "send":
			payload := strings.Join(args[1:], " ")
			if payload == "" {
				fmt.Println("send: nothing to send")
				continue
			}
			usb.Inject([]byte(payload))
			awaitEcho(usb, len(payload))

		case "burst":
			n := argInt(args, 1, 64)
			data := make([]byte, n)
			for i := range data {
				data[i] = byte(i)
			}
			usb.Inject(data)
			awaitEcho(usb, n)

		case "limit":
			usb.SetAcceptLimit(argInt(args, 1, 0))

		case "fault":
			dir := "rx"
			if len(args) > 1 {
				dir = args[1]
			}
			port.InjectFault(dir)
			fmt.Println("injected", dir, "fault")

		case "plug":
			usb.SetConfigured(true)
		case "unplug":
			usb.SetConfigured(false)

		case "codes":
			drained := 0
			for {
				code, ok := queue.Dequeue()
				if !ok {
					break
				}
				var seq [config.MaxMorseLen]byte
				if n, err := morse.EncodeNumber(seq[:], code); err == nil {
					fmt.Printf("code %d  %s\n", code, seq[:n])
				} else {
					fmt.Printf("code %d  (encode: %v)\n", code, err)
				}
				drained++
			}
			if drained == 0 {
				fmt.Println("queue empty")
			}

		case "stats":
			st := pipe.Snapshot()
			fmt.Printf("usb_in=%d usb_out=%d wire_in=%d wire_out=%d dropped=%d queued_codes=%d\n",
				st.USBIn, st.USBOut, st.WireIn, st.WireOut, st.Dropped, queue.Len())

		case "help":
			fmt.Println("send | burst | limit | fault | plug | unplug | codes | stats | quit")

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command:", args[0])
		}
	}
}

// awaitEcho waits briefly for the loopback to return n bytes to the host.
func awaitEcho(usb *platform.MemoryEndpoint, n int) {
	deadline := time.Now().Add(500 * time.Millisecond)
	var got []byte
	for time.Now().Before(deadline) {
		got = append(got, usb.Drain()...)
		if len(got) >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	fmt.Printf("echoed %d/%d bytes: %q\n", len(got), n, got)
}

func argInt(args []string, i, def int) int {
	if len(args) <= i {
		return def
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return def
	}
	return v
}
