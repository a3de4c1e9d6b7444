// Package eventbus is an in-memory publish/subscribe bus. The guideline
// ingest service publishes after storing chunks; the embedder consumes and
// computes vectors asynchronously.
//
// Design:
//   - Buffered channel per subscriber (buffer=100).
//   - Publish never blocks: the event is dropped if a subscriber lags.
//   - No persistence; events are fire-and-forget.
package eventbus

import "sync"

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) <-chan Event
}

const subscriberBuffer = 100

// Bus is the in-memory EventBus implementation.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// New returns an empty in-memory Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]chan Event)}
}

// Subscribe registers a subscriber for topic and returns its receive channel.
// The caller owns the consumption loop and must drain the channel.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers an Event to every subscriber of topic, dropping it for
// subscribers whose buffers are full.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
