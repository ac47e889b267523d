package session

import (
	"sync"
	"time"
)

// EventType classifies messages emitted by the session.
type EventType string

const (
	EventTypeState   EventType = "state"
	EventTypeSettled EventType = "settled"
)

// Event is a sequenced payload consumed by UI subscribers.
type Event struct {
	Seq         int64     `json:"seq"`
	Timestamp   time.Time `json:"timestamp"`
	Type        EventType `json:"type"`
	State       State     `json:"state"`
	OperationID string    `json:"operation_id,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// EventBus stores recent events, provides incremental reads and push
// subscriptions for the websocket feed.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	nextSub   int64
	maxEvents int
	events    []Event
	subs      map[int64]chan Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 200
	}
	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
		subs:      make(map[int64]chan Event),
	}
}

// Publish appends one event, assigns sequence and timestamp, and fans it
// out to subscribers. Slow subscribers lose events rather than block.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// Subscribe registers a push channel. The returned cancel func must be
// called to release the subscription.
func (b *EventBus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSub++
	id := b.nextSub
	ch := make(chan Event, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
