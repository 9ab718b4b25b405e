// Package orchestrator wires the event bus, signal lifecycle manager,
// parlay engine, risk agent, and three-wave scheduler into one runtime,
// and exposes the façade the HTTP surface calls into.
//
// Grounded on pkg/trader/orchestrator/orchestrator.go (background-loop
// wiring, running/stopCh guard, callback hooks) and cmd/agentd/main.go
// (how the daemon constructs and starts it). Per the design note on
// module-level singletons, Runtime is an explicit value constructed once
// by cmd/signald/main.go rather than a package-level global, so tests can
// build an independent Runtime with fake adapters.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/beatvegas/signal-engine/internal/bus"
	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/beatvegas/signal-engine/internal/parlay"
	"github.com/beatvegas/signal-engine/internal/risk"
	"github.com/beatvegas/signal-engine/internal/scheduler"
	"github.com/beatvegas/signal-engine/internal/signal"
	"github.com/beatvegas/signal-engine/internal/teams"
	"github.com/shopspring/decimal"
)

// Publisher is the publish-only capability handed to components that must
// emit events without holding a back-reference to the Runtime that owns
// them, breaking the orchestrator/agent reference cycle.
type Publisher interface {
	Publish(ctx context.Context, topic string, data interface{}) error
}

// ProfileStore looks up a user's bankroll profile, falling back to
// risk.DefaultProfile when none is persisted.
type ProfileStore interface {
	Profile(ctx context.Context, userID string) (risk.UserProfile, bool, error)
}

// GradingRecords persists the grading contract's idempotency records and
// backs RecordPickOutcome's re-grade dedup (§6: posting the same grading
// request twice must yield the same stored record).
type GradingRecords interface {
	FindByKey(ctx context.Context, key string) (edge.GradingRecord, bool, error)
	Store(ctx context.Context, rec edge.GradingRecord) error
}

// Runtime holds every wired component. Construct one with New, call Start
// once, and use the façade methods for request/response flows; wave
// advancement happens through the scheduler in the background.
type Runtime struct {
	bus            bus.Bus
	signals        *signal.Manager
	tilt           *risk.Detector
	profiles       ProfileStore
	gradingRecords GradingRecords
	scheduler      *scheduler.Scheduler
	teams          *teams.Registry
	logger         *log.Logger

	mu      sync.Mutex
	running bool
}

// Config wires a Runtime's dependencies. Bus, Signals, and Tilt are
// required; Profiles, GradingRecords, Scheduler, and Teams may be nil
// (bankroll checks fall back to defaults, grading skips idempotency dedup,
// the scheduler simply never starts, and team mapping-drift detection is
// skipped).
type Config struct {
	Bus            bus.Bus
	Signals        *signal.Manager
	Tilt           *risk.Detector
	Profiles       ProfileStore
	GradingRecords GradingRecords
	Scheduler      *scheduler.Scheduler
	Teams          *teams.Registry
	Logger         *log.Logger
}

// New constructs a Runtime. It does not start anything until Start is
// called.
func New(cfg Config) *Runtime {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runtime{
		bus:            cfg.Bus,
		signals:        cfg.Signals,
		tilt:           cfg.Tilt,
		profiles:       cfg.Profiles,
		gradingRecords: cfg.GradingRecords,
		scheduler:      cfg.Scheduler,
		teams:          cfg.Teams,
		logger:         logger,
	}
}

// Start subscribes the runtime's internal handlers and starts the
// scheduler. Calling Start on an already-running Runtime is a no-op,
// mirroring the Python singleton's "if _orchestrator is None" guard.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	if listener, ok := r.bus.(bus.Listener); ok {
		if err := listener.StartListening(ctx); err != nil {
			return fmt.Errorf("start bus listener: %w", err)
		}
	}

	if r.scheduler != nil {
		if err := r.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	r.logger.Println("runtime started")
	return nil
}

// Shutdown stops the scheduler and bus listener. Safe to call more than
// once.
func (r *Runtime) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}

	if r.scheduler != nil {
		r.scheduler.Stop()
	}
	if listener, ok := r.bus.(bus.Listener); ok {
		if err := listener.StopListening(); err != nil {
			r.logger.Printf("runtime: error stopping bus listener: %v", err)
		}
	}

	r.running = false
	r.logger.Println("runtime stopped")
}

// IsRunning reports whether Start has completed without a matching
// Shutdown.
func (r *Runtime) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// RequestParlayAnalysis runs the parlay engine against pool and publishes
// the result on bus.TopicParlayResponses.
func (r *Runtime) RequestParlayAnalysis(ctx context.Context, pool []parlay.Candidate, profile parlay.Profile, legCount int, opts parlay.PoolOptions) (parlay.Result, error) {
	result := parlay.GenerateParlay(pool, profile, legCount, opts)

	if r.bus != nil {
		if err := r.bus.Publish(ctx, bus.TopicParlayResponses, result); err != nil {
			r.logger.Printf("runtime: failed to publish parlay response: %v", err)
		}
	}

	return result, nil
}

// CheckBetSize runs the risk agent's bet-size check for userID, applying
// the persisted profile if one exists or the documented defaults
// otherwise, and publishes the result on bus.TopicRiskResponses.
func (r *Runtime) CheckBetSize(ctx context.Context, userID string, amount, winProbability float64, americanOdds int) (risk.BetSizeResult, error) {
	profile := r.resolveProfile(ctx, userID)
	result := risk.CheckBetSize(profile, decimal.NewFromFloat(amount), winProbability, americanOdds)

	if r.bus != nil {
		if err := r.bus.Publish(ctx, bus.TopicRiskResponses, result); err != nil {
			r.logger.Printf("runtime: failed to publish risk response: %v", err)
		}
	}

	return result, nil
}

func (r *Runtime) resolveProfile(ctx context.Context, userID string) risk.UserProfile {
	if r.profiles != nil {
		if profile, ok, err := r.profiles.Profile(ctx, userID); err == nil && ok {
			return profile
		}
	}
	return risk.DefaultProfile(userID)
}

// GradingRequest carries the idempotency-key inputs and score-reconciliation
// data for one grading call, per the external grading contract (§6).
// PickID/Source/SettlementRulesVersion/ClvRulesVersion together determine
// the idempotency key; posting the same four values twice must not grade
// sig a second time or publish a second feedback-outcome event.
type GradingRequest struct {
	PickID                 string
	Source                 string
	SettlementRulesVersion string
	ClvRulesVersion        string
	ScoreHome              string
	ScoreAway              string
	Degraded               bool
	AdminOverrideNote      string
}

// RecordPickOutcome grades sig with result and publishes the outcome on
// bus.TopicFeedbackOutcomes, returning the stored GradingRecord. If a
// record already exists for req's idempotency key, grading and publishing
// are skipped and the existing record is returned unchanged — the §8
// round-trip property that posting the same grading request twice yields
// the same stored record.
//
// scoreHome/scoreAway (carried on req) are the team names as reported by
// the score adapter for the completed game; if they fail to reconcile
// against the signal's own HomeTeam/AwayTeam, grading still proceeds (the
// score adapter's final score is presumptively correct) but a
// mapping-drift alert is published on bus.TopicRiskAlerts so an operator
// can investigate before the next wave trusts that provider's team names.
func (r *Runtime) RecordPickOutcome(ctx context.Context, sig *signal.Signal, result edge.Result, req GradingRequest) (edge.GradingRecord, error) {
	key := edge.GradingKey(req.PickID, req.Source, req.SettlementRulesVersion, req.ClvRulesVersion)

	if r.gradingRecords != nil {
		if existing, found, err := r.gradingRecords.FindByKey(ctx, key); err == nil && found {
			return existing, nil
		}
	}

	if err := r.signals.GradeSignal(sig, result); err != nil {
		return edge.GradingRecord{}, fmt.Errorf("record pick outcome: %w", err)
	}

	if r.teams != nil && req.ScoreHome != "" && req.ScoreAway != "" {
		if drift, found := teams.DetectMappingDrift(sig.HomeTeam, sig.AwayTeam, req.ScoreHome, req.ScoreAway); found {
			r.logger.Printf("runtime: team mapping drift on game %s: event=%s/%s score=%s/%s",
				sig.GameID, drift.EventHome, drift.EventAway, drift.ScoreHome, drift.ScoreAway)
			if r.bus != nil {
				if err := r.bus.Publish(ctx, bus.TopicRiskAlerts, drift); err != nil {
					r.logger.Printf("runtime: failed to publish mapping drift alert: %v", err)
				}
			}
		}
	}

	if r.bus != nil {
		if err := r.bus.Publish(ctx, bus.TopicFeedbackOutcomes, sig); err != nil {
			r.logger.Printf("runtime: failed to publish feedback outcome: %v", err)
		}
	}

	gradedAt := time.Now().UTC()
	if sig.GradedAt != nil {
		gradedAt = *sig.GradedAt
	}
	rec := edge.NewGradingRecord(req.PickID, req.Source, req.SettlementRulesVersion, req.ClvRulesVersion, result, gradedAt, req.Degraded, req.AdminOverrideNote)

	if r.gradingRecords != nil {
		if err := r.gradingRecords.Store(ctx, rec); err != nil {
			r.logger.Printf("runtime: failed to persist grading record: %v", err)
		}
	}

	return rec, nil
}
