package bus

import (
	"context"
	"errors"
	"testing"
)

func TestInProcessBusDeliversToAllSubscribers(t *testing.T) {
	b := NewInProcessBus(nil)

	var gotA, gotB any
	b.Subscribe("topic.a", func(e Envelope) error { gotA = e.Data; return nil })
	b.Subscribe("topic.a", func(e Envelope) error { gotB = e.Data; return nil })

	if err := b.Publish(context.Background(), "topic.a", "hello"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if gotA != "hello" || gotB != "hello" {
		t.Fatalf("expected both subscribers to receive the payload, got %v %v", gotA, gotB)
	}
}

func TestInProcessBusIsolatesFailingSubscriber(t *testing.T) {
	b := NewInProcessBus(nil)

	var secondCalled bool
	b.Subscribe("topic.a", func(e Envelope) error { return errors.New("boom") })
	b.Subscribe("topic.a", func(e Envelope) error { secondCalled = true; return nil })

	if err := b.Publish(context.Background(), "topic.a", nil); err != nil {
		t.Fatalf("publish should not surface subscriber errors: %v", err)
	}

	if !secondCalled {
		t.Fatal("a failing handler must not prevent delivery to other handlers")
	}
}

func TestInProcessBusIsolatesPanickingSubscriber(t *testing.T) {
	b := NewInProcessBus(nil)

	var secondCalled bool
	b.Subscribe("topic.a", func(e Envelope) error { panic("boom") })
	b.Subscribe("topic.a", func(e Envelope) error { secondCalled = true; return nil })

	if err := b.Publish(context.Background(), "topic.a", nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !secondCalled {
		t.Fatal("a panicking handler must not prevent delivery to other handlers")
	}
}

func TestInProcessBusUnsubscribe(t *testing.T) {
	b := NewInProcessBus(nil)

	var calls int
	sub := b.Subscribe("topic.a", func(e Envelope) error { calls++; return nil })
	b.Unsubscribe(sub)

	b.Publish(context.Background(), "topic.a", nil)

	if calls != 0 {
		t.Fatalf("expected 0 calls after unsubscribe, got %d", calls)
	}
}

func TestInProcessBusRingBufferBounded(t *testing.T) {
	b := NewInProcessBus(nil)
	b.logSize = 3

	for i := 0; i < 10; i++ {
		b.Publish(context.Background(), "t", i)
	}

	events := b.RecentEvents("", 100)
	if len(events) != 3 {
		t.Fatalf("expected ring buffer bounded to 3, got %d", len(events))
	}
	if events[len(events)-1].Data != 9 {
		t.Fatalf("expected last event to be the most recent publish, got %v", events[len(events)-1].Data)
	}
}

func TestInProcessBusRecentEventsFiltersByTopic(t *testing.T) {
	b := NewInProcessBus(nil)
	b.Publish(context.Background(), "topic.a", 1)
	b.Publish(context.Background(), "topic.b", 2)
	b.Publish(context.Background(), "topic.a", 3)

	events := b.RecentEvents("topic.a", 100)
	if len(events) != 2 {
		t.Fatalf("expected 2 events for topic.a, got %d", len(events))
	}
}
