package pubsub

import (
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	ps := New()
	if ps == nil {
		t.Fatal("New() returned nil")
	}
	if ps.subscribers == nil {
		t.Error("subscribers slice should be initialized")
	}
	if ps.upstream != nil {
		t.Error("upstream should be nil for basic PubSub")
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	event := NewEvent(EventPlayerAdd, map[string]interface{}{"number": 7})

	if event.ID == "" {
		t.Error("expected a generated event ID")
	}
	if event.Type != EventPlayerAdd {
		t.Errorf("expected type %s, got %s", EventPlayerAdd, event.Type)
	}
	if event.At.Before(before) {
		t.Error("expected a current timestamp")
	}
	if event.Payload["number"] != 7 {
		t.Error("payload mismatch")
	}

	other := NewEvent(EventPlayerAdd, nil)
	if other.ID == event.ID {
		t.Error("expected distinct IDs per event")
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()
	if ch1 == nil || ch2 == nil {
		t.Fatal("Subscribe() returned nil channel")
	}

	ps.mu.RLock()
	if len(ps.subscribers) != 2 {
		t.Errorf("expected 2 subscribers, got %d", len(ps.subscribers))
	}
	ps.mu.RUnlock()

	ps.Unsubscribe(ch1)

	ps.mu.RLock()
	if len(ps.subscribers) != 1 {
		t.Errorf("expected 1 subscriber after unsubscribe, got %d", len(ps.subscribers))
	}
	ps.mu.RUnlock()

	// Unsubscribed channel is closed
	select {
	case _, ok := <-ch1:
		if ok {
			t.Error("channel should be closed after unsubscribe")
		}
	default:
		t.Error("channel should be closed and readable")
	}

	// The remaining subscriber still receives events
	ps.Publish(Event{Type: EventDataClear})
	select {
	case received := <-ch2:
		if received.Type != EventDataClear {
			t.Errorf("expected type %s, got %s", EventDataClear, received.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestUnsubscribeNonexistent(t *testing.T) {
	ps := New()

	// A channel pubsub never managed; must not panic or close it.
	ch := make(chan Event, 10)
	ps.Unsubscribe(ch)

	select {
	case ch <- Event{Type: EventExport}:
		// still open
	default:
	}
}

func TestPublishNoSubscribers(t *testing.T) {
	ps := New()

	// Should not panic
	ps.Publish(Event{Type: EventGameSelect})
}

func TestPublishFanout(t *testing.T) {
	ps := New()
	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	event := Event{
		Type:    EventPlayerUpdate,
		Payload: map[string]interface{}{"index": 0},
	}
	ps.Publish(event)

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventPlayerUpdate {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventPlayerUpdate, received.Type)
			}
			if received.Payload["index"] != 0 {
				t.Errorf("subscriber %d: payload mismatch", i)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}

func TestPublishDropsWhenChannelFull(t *testing.T) {
	ps := New()
	ch := ps.Subscribe()

	// Buffer size is 10; the excess is dropped, never blocked on.
	for i := 0; i < 15; i++ {
		ps.Publish(Event{Type: EventPlayerAdd})
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
		default:
			if count != 10 {
				t.Errorf("expected 10 buffered events, got %d", count)
			}
			return
		}
	}
}

func TestConcurrentSubscribeUnsubscribe(t *testing.T) {
	ps := New()

	var wg sync.WaitGroup
	numGoroutines := 50

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := ps.Subscribe()
			time.Sleep(time.Millisecond)
			ps.Unsubscribe(ch)
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps.Publish(Event{Type: EventPlayerAdd})
		}()
	}

	wg.Wait()

	ps.mu.RLock()
	subCount := len(ps.subscribers)
	ps.mu.RUnlock()

	if subCount != 0 {
		t.Errorf("expected 0 subscribers after all unsubscribe, got %d", subCount)
	}
}

// mockUpstream implements Upstream for testing.
type mockUpstream struct {
	mu          sync.Mutex
	published   []Event
	subscribers []chan Event
}

func newMockUpstream() *mockUpstream {
	return &mockUpstream{
		published:   []Event{},
		subscribers: []chan Event{},
	}
}

func (m *mockUpstream) Publish(event Event) {
	m.mu.Lock()
	m.published = append(m.published, event)
	subs := make([]chan Event, len(m.subscribers))
	copy(subs, m.subscribers)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (m *mockUpstream) Subscribe() chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan Event, 100)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

func (m *mockUpstream) Unsubscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subscribers {
		if sub == ch {
			close(ch)
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			break
		}
	}
}

func (m *mockUpstream) publishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Event, len(m.published))
	copy(result, m.published)
	return result
}

func TestPublishWithUpstream(t *testing.T) {
	upstream := newMockUpstream()
	ps := NewWithUpstream(upstream)

	// Give the bridge goroutine time to start
	time.Sleep(10 * time.Millisecond)

	ch := ps.Subscribe()

	ps.Publish(Event{Type: EventPlayerAdd, Payload: map[string]interface{}{"number": 7}})

	time.Sleep(10 * time.Millisecond)
	published := upstream.publishedEvents()
	if len(published) != 1 {
		t.Errorf("expected 1 event published to upstream, got %d", len(published))
	}

	// The local subscriber gets the event via the upstream broadcast back.
	select {
	case received := <-ch:
		if received.Type != EventPlayerAdd {
			t.Errorf("expected type %s, got %s", EventPlayerAdd, received.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event from upstream")
	}
}

func TestUpstreamBroadcastToLocalSubscribers(t *testing.T) {
	upstream := newMockUpstream()
	ps := NewWithUpstream(upstream)

	time.Sleep(10 * time.Millisecond)

	ch1 := ps.Subscribe()
	ch2 := ps.Subscribe()

	// Another instance publishing on the shared bus
	upstream.Publish(Event{Type: EventDataClear})

	for i, ch := range []chan Event{ch1, ch2} {
		select {
		case received := <-ch:
			if received.Type != EventDataClear {
				t.Errorf("subscriber %d: expected type %s, got %s", i, EventDataClear, received.Type)
			}
		case <-time.After(100 * time.Millisecond):
			t.Errorf("subscriber %d: timeout waiting for event", i)
		}
	}
}
