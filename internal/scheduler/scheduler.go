// Package scheduler runs the three independent cooperative sweeps that
// drive the signal lifecycle forward: wave 1 discovery, wave 2 stability
// validation, and wave 3 final lock/publish.
//
// Grounded on pkg/trader/orchestrator/orchestrator.go's background-loop
// pattern (ticker + select on ctx.Done()/stopCh/ticker.C, per-stage error
// isolation via a callback), adapted from one shared interval to three
// independent ones.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// GameCandidate is the minimal shape a sweep needs to decide whether a
// game is in its window.
type GameCandidate struct {
	GameID       string
	CommenceTime time.Time
}

// GameFetcher lists games whose commence time falls in [from, to].
type GameFetcher func(ctx context.Context, from, to time.Time) ([]GameCandidate, error)

// WaveHandler processes one game for one wave. An error from a handler is
// isolated to that game; it never aborts the sweep.
type WaveHandler func(ctx context.Context, game GameCandidate) error

// Config times the three sweeps and their lookahead windows.
type Config struct {
	Wave1Interval time.Duration
	Wave2Interval time.Duration
	Wave3Interval time.Duration

	Wave1WindowMin time.Duration
	Wave1WindowMax time.Duration
	Wave2WindowMin time.Duration
	Wave2WindowMax time.Duration
	Wave3WindowMin time.Duration
	Wave3WindowMax time.Duration
}

// DefaultConfig matches the scheduled sweep cadence: wave 1 every 30
// minutes for games 4-6h out, wave 2 every 15 minutes for games 110-130m
// out, wave 3 every 5 minutes for games 60-75m out.
func DefaultConfig() Config {
	return Config{
		Wave1Interval:  30 * time.Minute,
		Wave2Interval:  15 * time.Minute,
		Wave3Interval:  5 * time.Minute,
		Wave1WindowMin: 4 * time.Hour,
		Wave1WindowMax: 6 * time.Hour,
		Wave2WindowMin: 110 * time.Minute,
		Wave2WindowMax: 130 * time.Minute,
		Wave3WindowMin: 60 * time.Minute,
		Wave3WindowMax: 75 * time.Minute,
	}
}

// Scheduler owns the three sweep loops.
type Scheduler struct {
	cfg        Config
	fetchGames GameFetcher
	wave1      WaveHandler
	wave2      WaveHandler
	wave3      WaveHandler
	logger     *log.Logger

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}

	onError func(wave int, gameID string, err error)

	// fetchLimiter throttles calls into fetchGames, which the three
	// sweep loops share concurrently against one odds adapter.
	fetchLimiter *rate.Limiter
}

// New creates a Scheduler. logger may be nil to use log.Default(). The
// three sweep loops share one fetchGames call rate of 10 requests/sec with
// a burst of 5, the same limiter shape as pkg/polymarket/clob/client.go's
// CLOB client uses against its own upstream.
func New(cfg Config, fetchGames GameFetcher, wave1, wave2, wave3 WaveHandler, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		cfg:          cfg,
		fetchGames:   fetchGames,
		wave1:        wave1,
		wave2:        wave2,
		wave3:        wave3,
		logger:       logger,
		stopCh:       make(chan struct{}),
		fetchLimiter: rate.NewLimiter(rate.Limit(10), 5),
	}
}

// OnError sets a callback invoked whenever a single game's handler fails;
// the sweep itself continues regardless.
func (s *Scheduler) OnError(fn func(wave int, gameID string, err error)) {
	s.onError = fn
}

// Start launches the three sweep loops. Calling Start on an already
// running Scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx, 1, s.cfg.Wave1Interval, s.cfg.Wave1WindowMin, s.cfg.Wave1WindowMax, s.wave1)
	go s.loop(ctx, 2, s.cfg.Wave2Interval, s.cfg.Wave2WindowMin, s.cfg.Wave2WindowMax, s.wave2)
	go s.loop(ctx, 3, s.cfg.Wave3Interval, s.cfg.Wave3WindowMin, s.cfg.Wave3WindowMax, s.wave3)

	return nil
}

// Stop signals all sweep loops to exit. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		close(s.stopCh)
		s.running = false
	}
}

// IsRunning reports whether the scheduler's loops are active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, wave int, interval, windowMin, windowMax time.Duration, handler WaveHandler) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx, wave, windowMin, windowMax, handler)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context, wave int, windowMin, windowMax time.Duration, handler WaveHandler) {
	if err := s.fetchLimiter.Wait(ctx); err != nil {
		return
	}

	now := time.Now().UTC()
	games, err := s.fetchGames(ctx, now.Add(windowMin), now.Add(windowMax))
	if err != nil {
		s.logger.Printf("scheduler: wave %d fetch failed: %v", wave, err)
		return
	}

	for _, game := range games {
		if err := handler(ctx, game); err != nil {
			wrapped := fmt.Errorf("wave %d game %s: %w", wave, game.GameID, err)
			s.logger.Printf("scheduler: %v", wrapped)
			if s.onError != nil {
				s.onError(wave, game.GameID, err)
			}
		}
	}
}
