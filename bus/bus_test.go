package bus

import (
	"testing"
	"time"
)

func recv(t *testing.T, sub *Subscription) *Message {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		return msg
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
		return nil
	}
}

func TestBasicPubSub(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(Topic{"config", "heartbeat"})
	conn.Publish(conn.NewMessage(Topic{"config", "heartbeat"}, "hello", false))

	if got := recv(t, sub); got.Payload.(string) != "hello" {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestNoDeliveryToOtherTopics(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(Topic{"pipeline", "stats"})
	conn.Publish(conn.NewMessage(Topic{"pipeline", "state"}, "x", false))

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected delivery: %v", msg.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRetainedMessage(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(Topic{"pipeline", "state"}, "running", true))

	// A late subscriber still sees the retained state.
	sub := conn.Subscribe(Topic{"pipeline", "state"})
	if got := recv(t, sub); got.Payload.(string) != "running" {
		t.Errorf("retained payload = %v", got.Payload)
	}

	// Publishing nil clears it.
	conn.Publish(conn.NewMessage(Topic{"pipeline", "state"}, nil, true))
	late := conn.Subscribe(Topic{"pipeline", "state"})
	select {
	case msg := <-late.Channel():
		if msg.Payload != nil {
			t.Fatalf("retained message not cleared: %v", msg.Payload)
		}
	case <-time.After(20 * time.Millisecond):
	}
}

func TestFullMailboxDropsOldest(t *testing.T) {
	b := NewBus(2)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(Topic{"t"})

	for i := 0; i < 5; i++ {
		conn.Publish(conn.NewMessage(Topic{"t"}, i, false))
	}
	if got := recv(t, sub); got.Payload.(int) != 3 {
		t.Errorf("first queued = %v, want 3", got.Payload)
	}
	if got := recv(t, sub); got.Payload.(int) != 4 {
		t.Errorf("second queued = %v, want 4", got.Payload)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(Topic{"a", "b"})
	sub.Unsubscribe()

	conn.Publish(conn.NewMessage(Topic{"a", "b"}, "after", false))
	if _, ok := <-sub.Channel(); ok {
		t.Fatal("message delivered after unsubscribe")
	}
}

func TestDisconnectClosesAll(t *testing.T) {
	b := NewBus(4)
	conn := b.NewConnection("test")
	s1 := conn.Subscribe(Topic{"a"})
	s2 := conn.Subscribe(Topic{"b"})
	conn.Disconnect()

	if _, ok := <-s1.Channel(); ok {
		t.Fatal("s1 still open")
	}
	if _, ok := <-s2.Channel(); ok {
		t.Fatal("s2 still open")
	}
}
