package bus

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

const defaultLogSize = 1000

// InProcessBus is an observer-pattern event bus for agents sharing one
// process. Subscribers are invoked synchronously from Publish in
// registration order; a failing subscriber is logged and skipped, never
// allowed to block or fail its neighbors. Grounded on
// original_source/backend/core/event_bus.py's InMemoryEventBus.
type InProcessBus struct {
	logger *log.Logger

	mu          sync.RWMutex
	subscribers map[string][]*subscriberEntry
	nextID      uint64

	logMu   sync.Mutex
	eventLog []Envelope
	logSize  int
}

type subscriberEntry struct {
	id      uint64
	handler Handler
}

// NewInProcessBus creates an in-process bus. logger may be nil, in which
// case log.Default() is used.
func NewInProcessBus(logger *log.Logger) *InProcessBus {
	if logger == nil {
		logger = log.Default()
	}
	return &InProcessBus{
		logger:      logger,
		subscribers: make(map[string][]*subscriberEntry),
		logSize:     defaultLogSize,
	}
}

// Subscribe registers handler for topic and returns a handle for Unsubscribe.
func (b *InProcessBus) Subscribe(topic string, handler Handler) *Subscription {
	id := atomic.AddUint64(&b.nextID, 1)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], &subscriberEntry{id: id, handler: handler})
	b.mu.Unlock()

	return &Subscription{id: id, topic: topic}
}

// Unsubscribe removes sub. A nil or already-removed subscription is a no-op.
func (b *InProcessBus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.subscribers[sub.topic]
	for i, e := range entries {
		if e.id == sub.id {
			b.subscribers[sub.topic] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Publish dispatches data to every handler subscribed to topic, in
// registration order, isolating each handler's failure from the rest.
func (b *InProcessBus) Publish(ctx context.Context, topic string, data any) error {
	env := Envelope{Topic: topic, Timestamp: timeNow(), Data: data}

	b.appendLog(env)

	b.mu.RLock()
	entries := make([]*subscriberEntry, len(b.subscribers[topic]))
	copy(entries, b.subscribers[topic])
	b.mu.RUnlock()

	for _, e := range entries {
		if err := b.invoke(e.handler, env); err != nil {
			b.logger.Printf("bus: handler failed on %s: %v", topic, err)
		}
	}

	return nil
}

func (b *InProcessBus) invoke(h Handler, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicAsError(r)
		}
	}()
	return h(env)
}

func (b *InProcessBus) appendLog(env Envelope) {
	b.logMu.Lock()
	defer b.logMu.Unlock()

	b.eventLog = append(b.eventLog, env)
	if len(b.eventLog) > b.logSize {
		b.eventLog = b.eventLog[len(b.eventLog)-b.logSize:]
	}
}

// RecentEvents returns up to limit most-recent envelopes, optionally
// filtered to one topic.
func (b *InProcessBus) RecentEvents(topic string, limit int) []Envelope {
	b.logMu.Lock()
	defer b.logMu.Unlock()

	var out []Envelope
	if topic == "" {
		out = append(out, b.eventLog...)
	} else {
		for _, e := range b.eventLog {
			if e.Topic == topic {
				out = append(out, e)
			}
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
