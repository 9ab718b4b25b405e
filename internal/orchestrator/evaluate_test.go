package orchestrator

import (
	"testing"
	"time"

	"github.com/beatvegas/signal-engine/internal/bus"
	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/beatvegas/signal-engine/internal/risk"
	"github.com/beatvegas/signal-engine/internal/signal"
	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

func TestEvaluateWaveSelectsSharpSideForSpreadMarket(t *testing.T) {
	mgr := signal.NewManager(time.Now)
	r := New(Config{Bus: bus.NewInProcessBus(nil), Signals: mgr, Tilt: risk.NewDetector(time.Now)})

	sig := mgr.CreateSignal("sig-1", "game-1", signal.IntentTruthMode, signal.MarketKeySpread)
	sig.HomeTeam = "Knicks"
	sig.AwayTeam = "Hawks"

	eval, err := r.EvaluateWave(sig, signal.Wave1, WaveInputs{
		Edge: edge.MarketInputs{
			Market:         edge.MarketSpread,
			Sport:          sportconfig.NBA,
			RawProbability: 0.65,
			AmericanOdds:   -110,
			Spread:         12.3,
			StdDev:         0.01,
			ConvergenceRate: 0.97,
		},
		MarketSpreadHome: -5.5,
		HomeIsFavorite:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.State != edge.StateEdge {
		t.Fatalf("expected EDGE, got %v", eval.State)
	}
	if sig.LastSharpSide != "Knicks" {
		t.Fatalf("expected the favorite-sharp side Knicks to be recorded, got %q", sig.LastSharpSide)
	}
	if len(sig.WaveHistory) != 1 || sig.WaveHistory[0].SharpSide != "Knicks" {
		t.Fatalf("expected wave 1 history to carry the sharp side, got %+v", sig.WaveHistory)
	}
}

func TestEvaluateWaveNoPlayCarriesNoSharpSide(t *testing.T) {
	mgr := signal.NewManager(time.Now)
	r := New(Config{Bus: bus.NewInProcessBus(nil), Signals: mgr, Tilt: risk.NewDetector(time.Now)})

	sig := mgr.CreateSignal("sig-2", "game-2", signal.IntentTruthMode, signal.MarketKeySpread)
	sig.HomeTeam = "Knicks"
	sig.AwayTeam = "Hawks"

	// A near-zero edge against NBA's 2.5pp threshold should resolve NO_PLAY,
	// and a model spread that matches the market exactly should agree there
	// is nothing to play.
	eval, err := r.EvaluateWave(sig, signal.Wave1, WaveInputs{
		Edge: edge.MarketInputs{
			Market:          edge.MarketSpread,
			Sport:           sportconfig.NBA,
			RawProbability:  0.523809,
			AmericanOdds:    -110,
			Spread:          5.5,
			StdDev:          0.01,
			ConvergenceRate: 0.97,
		},
		MarketSpreadHome: -5.5,
		HomeIsFavorite:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.State != edge.StateNoPlay {
		t.Fatalf("expected NO_PLAY, got %v", eval.State)
	}
}

func TestEvaluateWaveTotalUsesCompressedProbabilitiesForSharpSide(t *testing.T) {
	mgr := signal.NewManager(time.Now)
	r := New(Config{Bus: bus.NewInProcessBus(nil), Signals: mgr, Tilt: risk.NewDetector(time.Now)})

	sig := mgr.CreateSignal("sig-3", "game-3", signal.IntentTruthMode, signal.MarketKeyTotal)

	eval, err := r.EvaluateWave(sig, signal.Wave1, WaveInputs{
		Edge: edge.MarketInputs{
			Market:          edge.MarketTotal,
			Sport:           sportconfig.NBA,
			RawProbability:  0.60,
			AmericanOdds:    -110,
			StdDev:          0.01,
			ConvergenceRate: 0.97,
		},
		UnderOdds:        -110,
		TotalLine:        224.5,
		OverProbability:  0.60,
		UnderProbability: 0.40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.State != edge.StateEdge {
		t.Fatalf("expected EDGE, got %v", eval.State)
	}
	if sig.LastSharpSide != "Over 224.5" {
		t.Fatalf("expected sharp side 'Over 224.5', got %q", sig.LastSharpSide)
	}
}

func TestEvaluateWaveMoneylineUsesCompressedProbabilitiesForSharpSide(t *testing.T) {
	mgr := signal.NewManager(time.Now)
	r := New(Config{Bus: bus.NewInProcessBus(nil), Signals: mgr, Tilt: risk.NewDetector(time.Now)})

	sig := mgr.CreateSignal("sig-4", "game-4", signal.IntentTruthMode, signal.MarketKeyMoneyline)
	sig.HomeTeam = "Celtics"
	sig.AwayTeam = "Heat"

	confirmed := true
	eval, err := r.EvaluateWave(sig, signal.Wave1, WaveInputs{
		Edge: edge.MarketInputs{
			Market:           edge.MarketMoneyline,
			Sport:            sportconfig.MLB,
			RawProbability:   0.65,
			AmericanOdds:     -140,
			StdDev:           0.01,
			ConvergenceRate:  0.97,
			PitcherConfirmed: &confirmed,
		},
		HomeWinProbability: 0.65,
		AwayWinProbability: 0.35,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eval.State != edge.StateEdge {
		t.Fatalf("expected EDGE, got %v", eval.State)
	}
	if sig.LastSharpSide != "Celtics" {
		t.Fatalf("expected sharp side Celtics, got %q", sig.LastSharpSide)
	}
}
