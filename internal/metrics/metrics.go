// Package metrics provides Prometheus metrics for the signal engine.
//
// Grounded on pkg/trader/metrics/metrics.go's per-domain *Vec field layout,
// registerAll() registration pass, and package-level Default() singleton,
// re-themed from order/trade/position metrics to signal/parlay/risk/
// scheduler metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineMetrics collects and exposes signal-engine Prometheus metrics.
type EngineMetrics struct {
	registry *prometheus.Registry

	// Signal lifecycle metrics
	SignalsCreated   *prometheus.CounterVec
	SignalsPublished *prometheus.CounterVec
	SignalsLocked    *prometheus.CounterVec
	SignalsGraded    *prometheus.CounterVec
	SignalEdgePct    *prometheus.HistogramVec
	WaveDriftPct     *prometheus.HistogramVec

	// Parlay metrics
	ParlaysGenerated    *prometheus.CounterVec
	ParlayFallbackSteps *prometheus.HistogramVec
	ParlayLegCount      *prometheus.HistogramVec
	ParlayCombinedProb  *prometheus.HistogramVec
	ParlayExhausted     *prometheus.CounterVec

	// Risk metrics
	BetSizeAlerts   *prometheus.CounterVec
	TiltAlerts      *prometheus.CounterVec
	BankrollHealth  *prometheus.GaugeVec
	KellySuggested  *prometheus.HistogramVec

	// Scheduler metrics
	SweepRuns       *prometheus.CounterVec
	SweepGameErrors *prometheus.CounterVec
	GamesInWindow   *prometheus.GaugeVec
}

// New creates an EngineMetrics collector with its own registry.
func New() *EngineMetrics {
	registry := prometheus.NewRegistry()

	em := &EngineMetrics{
		registry: registry,

		SignalsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_signals_created_total",
				Help: "Total number of signals created at wave 1 discovery",
			},
			[]string{"sport"},
		),
		SignalsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_signals_published_total",
				Help: "Total number of signals reaching PUBLISHED at wave 3",
			},
			[]string{"sport", "outcome"},
		),
		SignalsLocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_signals_locked_total",
				Help: "Total number of signals locked with a frozen entry",
			},
			[]string{"sport"},
		),
		SignalsGraded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_signals_graded_total",
				Help: "Total number of signals graded after game completion",
			},
			[]string{"sport", "result"},
		),
		SignalEdgePct: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_signal_edge_pct",
				Help:    "Compressed edge percentage at publish time",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 7, 10, 15, 20},
			},
			[]string{"sport"},
		),
		WaveDriftPct: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_wave_drift_pct",
				Help:    "Absolute edge drift between consecutive waves",
				Buckets: []float64{0, 0.5, 1, 1.5, 2, 3, 5, 8},
			},
			[]string{"sport"},
		),

		ParlaysGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_parlays_generated_total",
				Help: "Total number of parlay generation attempts",
			},
			[]string{"mode", "recommendation"},
		),
		ParlayFallbackSteps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_parlay_fallback_steps",
				Help:    "Number of fallback-ladder steps used before a parlay was assembled",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
			[]string{},
		),
		ParlayLegCount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_parlay_leg_count",
				Help:    "Leg count of generated parlays",
				Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8},
			},
			[]string{},
		),
		ParlayCombinedProb: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_parlay_combined_probability",
				Help:    "Combined hit probability of generated parlays",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
			[]string{},
		),
		ParlayExhausted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_parlay_ladder_exhausted_total",
				Help: "Total number of parlay requests that exhausted the fallback ladder with no valid legs",
			},
			[]string{},
		),

		BetSizeAlerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_bet_size_alerts_total",
				Help: "Total number of bet-size alerts issued, by level",
			},
			[]string{"level"},
		),
		TiltAlerts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_tilt_alerts_total",
				Help: "Total number of tilt alerts issued, by reason",
			},
			[]string{"reason"},
		),
		BankrollHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalengine_bankroll_drawdown_pct",
				Help: "Most recently observed bankroll drawdown percentage, by user",
			},
			[]string{"user_id"},
		),
		KellySuggested: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signalengine_kelly_suggested_size_usd",
				Help:    "Fractional-Kelly suggested bet size in USD",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{},
		),

		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_scheduler_sweep_runs_total",
				Help: "Total number of scheduler sweeps run, by wave",
			},
			[]string{"wave"},
		),
		SweepGameErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalengine_scheduler_game_errors_total",
				Help: "Total number of per-game handler failures during a sweep, by wave",
			},
			[]string{"wave"},
		),
		GamesInWindow: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signalengine_scheduler_games_in_window",
				Help: "Number of games found in the lookahead window on the last sweep, by wave",
			},
			[]string{"wave"},
		),
	}

	em.registerAll()
	return em
}

func (em *EngineMetrics) registerAll() {
	em.registry.MustRegister(
		em.SignalsCreated,
		em.SignalsPublished,
		em.SignalsLocked,
		em.SignalsGraded,
		em.SignalEdgePct,
		em.WaveDriftPct,
		em.ParlaysGenerated,
		em.ParlayFallbackSteps,
		em.ParlayLegCount,
		em.ParlayCombinedProb,
		em.ParlayExhausted,
		em.BetSizeAlerts,
		em.TiltAlerts,
		em.BankrollHealth,
		em.KellySuggested,
		em.SweepRuns,
		em.SweepGameErrors,
		em.GamesInWindow,
	)
}

// Registry returns the prometheus registry backing these metrics.
func (em *EngineMetrics) Registry() *prometheus.Registry {
	return em.registry
}

// Handler returns the HTTP handler to mount at /metrics.
func (em *EngineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(em.registry, promhttp.HandlerOpts{})
}

// RecordSignalCreated records a wave-1 signal creation.
func (em *EngineMetrics) RecordSignalCreated(sport string) {
	em.SignalsCreated.WithLabelValues(sport).Inc()
}

// RecordSignalPublished records a wave-3 terminal outcome.
func (em *EngineMetrics) RecordSignalPublished(sport, outcome string, edgePct float64) {
	em.SignalsPublished.WithLabelValues(sport, outcome).Inc()
	em.SignalEdgePct.WithLabelValues(sport).Observe(edgePct)
}

// RecordSignalLocked records an entry lock.
func (em *EngineMetrics) RecordSignalLocked(sport string) {
	em.SignalsLocked.WithLabelValues(sport).Inc()
}

// RecordSignalGraded records a graded result.
func (em *EngineMetrics) RecordSignalGraded(sport, result string) {
	em.SignalsGraded.WithLabelValues(sport, result).Inc()
}

// RecordWaveDrift records the absolute edge drift observed between waves.
func (em *EngineMetrics) RecordWaveDrift(sport string, driftPct float64) {
	em.WaveDriftPct.WithLabelValues(sport).Observe(driftPct)
}

// RecordParlay records a completed parlay-generation attempt.
func (em *EngineMetrics) RecordParlay(mode, recommendation string, fallbackSteps, legCount int, combinedProbability float64) {
	em.ParlaysGenerated.WithLabelValues(mode, recommendation).Inc()
	em.ParlayFallbackSteps.WithLabelValues().Observe(float64(fallbackSteps))
	em.ParlayLegCount.WithLabelValues().Observe(float64(legCount))
	em.ParlayCombinedProb.WithLabelValues().Observe(combinedProbability)
}

// RecordParlayExhausted records a fallback ladder that produced no legs.
func (em *EngineMetrics) RecordParlayExhausted() {
	em.ParlayExhausted.WithLabelValues().Inc()
}

// RecordBetSizeAlert records a bet-size alert by level.
func (em *EngineMetrics) RecordBetSizeAlert(level string) {
	em.BetSizeAlerts.WithLabelValues(level).Inc()
}

// RecordTiltAlert records a tilt alert by reason.
func (em *EngineMetrics) RecordTiltAlert(reason string) {
	em.TiltAlerts.WithLabelValues(reason).Inc()
}

// UpdateBankrollHealth records a user's most recent drawdown percentage.
func (em *EngineMetrics) UpdateBankrollHealth(userID string, drawdownPct float64) {
	em.BankrollHealth.WithLabelValues(userID).Set(drawdownPct)
}

// RecordKellySuggestion records a Kelly-suggested bet size.
func (em *EngineMetrics) RecordKellySuggestion(amountUSD float64) {
	em.KellySuggested.WithLabelValues().Observe(amountUSD)
}

// RecordSweep records a scheduler sweep for a wave.
func (em *EngineMetrics) RecordSweep(wave string, gamesFound, gameErrors int) {
	em.SweepRuns.WithLabelValues(wave).Inc()
	em.GamesInWindow.WithLabelValues(wave).Set(float64(gamesFound))
	if gameErrors > 0 {
		em.SweepGameErrors.WithLabelValues(wave).Add(float64(gameErrors))
	}
}

// Global instance for convenience, mirroring the teacher's Default().
var (
	defaultMetrics *EngineMetrics
	once           sync.Once
)

// Default returns the default global metrics instance.
func Default() *EngineMetrics {
	once.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}
