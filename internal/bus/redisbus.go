package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBus is the cross-process transport: identical Subscribe/Publish
// contract as InProcessBus, backed by Redis PUBLISH/SUBSCRIBE so that
// agents running in separate processes can share topics. Grounded on
// original_source/backend/core/event_bus.py's EventBus (the
// redis.asyncio-backed class, as distinct from InMemoryEventBus).
type RedisBus struct {
	logger *log.Logger
	client *redis.Client

	mu          sync.Mutex
	pubsub      *redis.PubSub
	subscribers map[string][]*subscriberEntry
	nextID      uint64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRedisBus creates a broker transport over an existing *redis.Client.
// The caller owns the client's lifecycle (creation and Close).
func NewRedisBus(client *redis.Client, logger *log.Logger) *RedisBus {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisBus{
		logger:      logger,
		client:      client,
		subscribers: make(map[string][]*subscriberEntry),
	}
}

type wireMessage struct {
	Topic     string          `json:"topic"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Publish serializes data into the wire envelope and publishes it to the
// Redis channel named topic.
func (b *RedisBus) Publish(ctx context.Context, topic string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("bus: marshal payload for %s: %w", topic, err)
	}

	msg := wireMessage{
		Topic:     topic,
		Timestamp: timeNow().Format("2006-01-02T15:04:05.000Z07:00"),
		Data:      payload,
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("bus: marshal envelope for %s: %w", topic, err)
	}

	if err := b.client.Publish(ctx, topic, raw).Err(); err != nil {
		return fmt.Errorf("bus: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a local handler for topic, subscribing the
// underlying Redis connection to the channel the first time a handler is
// added for that topic.
func (b *RedisBus) Subscribe(topic string, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if _, ok := b.subscribers[topic]; !ok && b.pubsub != nil {
		b.pubsub.Subscribe(context.Background(), topic)
	}

	b.subscribers[topic] = append(b.subscribers[topic], &subscriberEntry{id: id, handler: handler})
	return &Subscription{id: id, topic: topic}
}

// Unsubscribe removes sub; it does not unsubscribe the Redis channel even
// if no local handlers remain, since StartListening owns channel
// membership for the process lifetime.
func (b *RedisBus) Unsubscribe(sub *Subscription) {
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

// StartListening opens the Redis pubsub connection, subscribes to every
// topic that already has local handlers, and begins routing incoming
// messages to them. It runs until ctx is canceled or StopListening is
// called.
func (b *RedisBus) StartListening(ctx context.Context) error {
	b.mu.Lock()
	if b.pubsub != nil {
		b.mu.Unlock()
		return fmt.Errorf("bus: already listening")
	}

	topics := make([]string, 0, len(b.subscribers))
	for topic := range b.subscribers {
		topics = append(topics, topic)
	}

	listenCtx, cancel := context.WithCancel(ctx)
	b.pubsub = b.client.Subscribe(listenCtx, topics...)
	b.cancel = cancel
	b.done = make(chan struct{})
	pubsub := b.pubsub
	done := b.done
	b.mu.Unlock()

	go b.listen(listenCtx, pubsub, done)
	return nil
}

func (b *RedisBus) listen(ctx context.Context, pubsub *redis.PubSub, done chan struct{}) {
	defer close(done)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.route(msg)
		}
	}
}

func (b *RedisBus) route(msg *redis.Message) {
	var wire wireMessage
	if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
		b.logger.Printf("bus: invalid envelope on %s: %v", msg.Channel, err)
		return
	}

	var data any
	if err := json.Unmarshal(wire.Data, &data); err != nil {
		b.logger.Printf("bus: invalid payload on %s: %v", msg.Channel, err)
		return
	}

	env := Envelope{Topic: msg.Channel, Timestamp: timeNow(), Data: data}
	if ts, err := time.Parse(time.RFC3339Nano, wire.Timestamp); err == nil {
		env.Timestamp = ts.UTC()
	}

	b.mu.Lock()
	entries := make([]*subscriberEntry, len(b.subscribers[msg.Channel]))
	copy(entries, b.subscribers[msg.Channel])
	b.mu.Unlock()

	for _, e := range entries {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Printf("bus: handler failed on %s: %v", msg.Channel, panicAsError(r))
				}
			}()
			if err := e.handler(env); err != nil {
				b.logger.Printf("bus: handler failed on %s: %v", msg.Channel, err)
			}
		}()
	}
}

// StopListening cancels the listen loop and closes the pubsub connection.
func (b *RedisBus) StopListening() error {
	b.mu.Lock()
	pubsub := b.pubsub
	cancel := b.cancel
	done := b.done
	b.pubsub = nil
	b.cancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if pubsub != nil {
		return pubsub.Close()
	}
	return nil
}
