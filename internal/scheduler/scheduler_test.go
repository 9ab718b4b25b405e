package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSchedulerIsolatesPerGameFailures(t *testing.T) {
	var mu sync.Mutex
	var processed []string
	var failures []string

	fetch := func(ctx context.Context, from, to time.Time) ([]GameCandidate, error) {
		return []GameCandidate{{GameID: "bad"}, {GameID: "good"}}, nil
	}
	wave1 := func(ctx context.Context, g GameCandidate) error {
		mu.Lock()
		defer mu.Unlock()
		if g.GameID == "bad" {
			return errors.New("boom")
		}
		processed = append(processed, g.GameID)
		return nil
	}
	noop := func(ctx context.Context, g GameCandidate) error { return nil }

	cfg := DefaultConfig()
	cfg.Wave1Interval = 10 * time.Millisecond
	cfg.Wave2Interval = time.Hour
	cfg.Wave3Interval = time.Hour

	s := New(cfg, fetch, wave1, noop, noop, nil)
	s.OnError(func(wave int, gameID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, gameID)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("unexpected error starting: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		mu.Lock()
		done := len(processed) > 0 && len(failures) > 0
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(processed) == 0 {
		t.Fatal("expected the good game to be processed despite the bad game's failure")
	}
	if len(failures) == 0 {
		t.Fatal("expected the bad game's failure to be reported via OnError")
	}
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	fetch := func(ctx context.Context, from, to time.Time) ([]GameCandidate, error) { return nil, nil }
	noop := func(ctx context.Context, g GameCandidate) error { return nil }

	cfg := DefaultConfig()
	s := New(cfg, fetch, noop, noop, noop, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = s.Start(ctx)
	_ = s.Start(ctx)
	if !s.IsRunning() {
		t.Fatal("expected scheduler to be running after Start")
	}
	s.Stop()
	if s.IsRunning() {
		t.Fatal("expected scheduler to be stopped after Stop")
	}
}
