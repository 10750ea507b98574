package pubsub

import (
	"testing"
	"time"

	"github.com/opencourt/scoutbook/internal/logger"
)

func init() {
	logger.Init("error")
}

func TestNewEmbeddedNATSPubSub(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	if ps.server == nil {
		t.Error("server should not be nil")
	}
	if ps.nc == nil {
		t.Error("NATS connection should not be nil")
	}
	if ps.js == nil {
		t.Error("JetStream context should not be nil")
	}
	if ps.GetServerURL() == "" {
		t.Error("server URL should not be empty")
	}
}

func TestDefaultEmbeddedNATSOptions(t *testing.T) {
	opts := DefaultEmbeddedNATSOptions()

	if opts.Port != -1 {
		t.Errorf("expected port -1 (random), got %d", opts.Port)
	}
	if opts.Subject != "scouting.events" {
		t.Errorf("expected subject scouting.events, got %s", opts.Subject)
	}
	if opts.StoreDir != "" {
		t.Errorf("expected in-memory storage, got store dir %s", opts.StoreDir)
	}
}

func TestEmbeddedNATSSubscribeUnsubscribe(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	ch := ps.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() returned nil channel")
	}
	if ps.GetSubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", ps.GetSubscriberCount())
	}

	ps.Unsubscribe(ch)
	if ps.GetSubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after unsubscribe, got %d", ps.GetSubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}

func TestEmbeddedNATSPublishAndReceive(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	// Give the subscription goroutine time to start
	time.Sleep(100 * time.Millisecond)

	ch := ps.Subscribe()

	event := NewEvent(EventPlayerAdd, map[string]interface{}{"number": 7})
	ps.Publish(event)

	select {
	case received := <-ch:
		if received.Type != EventPlayerAdd {
			t.Errorf("expected type %s, got %s", EventPlayerAdd, received.Type)
		}
		// JSON round-trips numbers as float64
		if received.Payload["number"] != 7.0 {
			t.Error("payload mismatch")
		}
		if received.ID != event.ID {
			t.Errorf("expected ID %s, got %s", event.ID, received.ID)
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for event")
	}
}

func TestEmbeddedNATSFanout(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}
	defer ps.Close()

	time.Sleep(100 * time.Millisecond)

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	ps.Publish(NewEvent(EventDataClear, nil))

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventDataClear {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventDataClear, received.Type)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestEmbeddedNATSClose(t *testing.T) {
	ps, err := NewEmbeddedNATSPubSub(DefaultEmbeddedNATSOptions())
	if err != nil {
		t.Fatalf("Failed to create embedded NATS: %v", err)
	}

	ch := ps.Subscribe()
	ps.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after Close()")
		}
	default:
		t.Error("channel should be closed and readable")
	}
}
