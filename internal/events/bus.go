package events

import (
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufSize = 256

// EventBus is a channel-based pub-sub bus carrying progress events from
// batch workers to whoever renders them. Events are immutable values, so
// subscribers never share state with publishers.
type EventBus struct {
	mu      sync.RWMutex
	subs    map[string][]chan Event // topic -> subscriber channels
	allSubs []chan Event            // subscribed to every topic
	closed  bool
	dropped atomic.Uint64
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subs: make(map[string][]chan Event),
	}
}

// Subscribe returns a channel receiving events published to topic.
// bufSize defaults to 256 if <= 0.
func (b *EventBus) Subscribe(topic string, bufSize int) <-chan Event {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.subs[topic] = append(b.subs[topic], ch)
	return ch
}

// SubscribeAll returns a channel receiving events from every topic.
func (b *EventBus) SubscribeAll(bufSize int) <-chan Event {
	ch := newChan(bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Publish delivers event without blocking. Subscribers whose buffer is
// full miss the event; Dropped counts how often that happened.
func (b *EventBus) Publish(topic string, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for _, ch := range b.targets(topic) {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// PublishWait delivers event, waiting up to timeout per subscriber for
// buffer space. It reports whether every subscriber received it. Used for
// events that must not be lost, such as the end of a run.
func (b *EventBus) PublishWait(topic string, event Event, timeout time.Duration) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	delivered, expired := true, false
	for _, ch := range b.targets(topic) {
		if expired {
			select {
			case ch <- event:
			default:
				b.dropped.Add(1)
				delivered = false
			}
			continue
		}
		select {
		case ch <- event:
		case <-timer.C:
			expired = true
			b.dropped.Add(1)
			delivered = false
		}
	}
	return delivered
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes the bus and all subscriber channels. Idempotent.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	for _, ch := range b.allSubs {
		close(ch)
	}
}

// targets lists topic subscribers followed by all-topic subscribers.
// Caller must hold b.mu.
func (b *EventBus) targets(topic string) []chan Event {
	out := make([]chan Event, 0, len(b.subs[topic])+len(b.allSubs))
	out = append(out, b.subs[topic]...)
	return append(out, b.allSubs...)
}

func newChan(bufSize int) chan Event {
	if bufSize <= 0 {
		bufSize = defaultBufSize
	}
	return make(chan Event, bufSize)
}
