// Package bus implements topic-addressed publish/subscribe between agents,
// with an in-process transport and a Redis-backed cross-process transport
// sharing the same contract.
package bus

import (
	"context"
	"time"
)

// Canonical topics. Agents subscribe to these; nothing else is a contract.
const (
	TopicParlayRequests     = "parlay.requests"
	TopicParlayResponses    = "parlay.responses"
	TopicRiskAlerts         = "risk.alerts"
	TopicRiskResponses      = "risk.responses"
	TopicSimulationResponse = "simulation.responses"
	TopicUserActivity       = "user.activity"
	TopicFeedbackOutcomes   = "feedback.outcomes"
	TopicMarketMovements    = "market.movements"
	TopicUIUpdates          = "ui.updates"
)

// Envelope wraps every published payload with the topic it was published on
// and the time it was published, following the wire envelope contract.
type Envelope struct {
	Topic     string
	Timestamp time.Time
	Data      any
}

// Handler processes one envelope. A handler that panics or returns an error
// must not affect delivery to any other handler on the same topic.
type Handler func(Envelope) error

// Subscription is an opaque handle returned by Subscribe, used to
// Unsubscribe later. Handlers are not directly comparable in Go, so every
// subscription gets an identity token instead.
type Subscription struct {
	id    uint64
	topic string
}

// Bus is the shared contract implemented by both transports.
type Bus interface {
	// Publish dispatches data to every handler currently subscribed to
	// topic. Publish itself never blocks on a slow or failing handler
	// beyond the handler's own execution; it returns once delivery to
	// all local handlers has been attempted.
	Publish(ctx context.Context, topic string, data any) error

	// Subscribe registers handler for topic. Subscribing the same
	// handler value twice registers it twice; callers wanting
	// idempotent registration should track their own Subscription.
	Subscribe(topic string, handler Handler) *Subscription

	// Unsubscribe removes a previously returned subscription. Removing
	// an already-removed or unknown subscription is a no-op.
	Unsubscribe(sub *Subscription)
}

// Diagnostics is implemented by transports that keep a bounded event log,
// currently only the in-process transport.
type Diagnostics interface {
	// RecentEvents returns up to limit most-recent envelopes, optionally
	// filtered to one topic. Returned in publication order.
	RecentEvents(topic string, limit int) []Envelope
}

// Listener is implemented by transports with an explicit connect/listen
// lifecycle (the broker transport). The in-process transport has no such
// lifecycle and does not implement it.
type Listener interface {
	StartListening(ctx context.Context) error
	StopListening() error
}
