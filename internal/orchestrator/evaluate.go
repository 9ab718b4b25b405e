package orchestrator

import (
	"fmt"

	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/beatvegas/signal-engine/internal/sharpside"
	"github.com/beatvegas/signal-engine/internal/signal"
	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

// WaveInputs carries everything EvaluateWave needs beyond what's already on
// the signal itself: the edge pipeline's market inputs, plus whatever extra
// figures the sharp-side selector for that market type requires.
type WaveInputs struct {
	Edge edge.MarketInputs

	// Spread/puckline only.
	MarketSpreadHome float64
	HomeIsFavorite   bool

	// Total only. Edge.RawProbability/Edge.AmericanOdds carry the over
	// side; UnderOdds is the market's price on the under side.
	TotalLine        float64
	UnderOdds        int
	OverProbability  float64
	UnderProbability float64

	// Moneyline only.
	HomeWinProbability float64
	AwayWinProbability float64
}

// EvaluateWave runs the edge pipeline and, for markets with a play-able
// state, the matching sharp-side selector, then folds both into sig's wave
// history. It is the glue between the sport-agnostic edge evaluator and the
// per-market sharp-side selectors, which otherwise know nothing of each
// other.
func (r *Runtime) EvaluateWave(sig *signal.Signal, wave signal.Wave, in WaveInputs) (edge.Evaluation, error) {
	var eval edge.Evaluation
	var sharpSide string

	switch in.Edge.Market {
	case edge.MarketSpread, edge.MarketPuckline:
		eval = edge.Evaluate(in.Edge)
		sel := sharpside.SelectSpread(sig.HomeTeam, sig.AwayTeam, in.MarketSpreadHome, in.Edge.Spread, in.HomeIsFavorite, eval.Volatility)
		if err := sharpside.ValidateAlignment(eval.State, sel); err != nil {
			return eval, fmt.Errorf("evaluate wave: %w", err)
		}
		sharpSide = sel.SharpSide

	case edge.MarketTotal:
		eval, _ = edge.EvaluateTotal(in.Edge, in.UnderOdds)

		factor := compressionFactor(in.Edge.Sport)
		sel := sharpside.SelectTotal(in.TotalLine, edge.Compress(in.OverProbability, factor), edge.Compress(in.UnderProbability, factor))
		if eval.State != edge.StateNoPlay {
			sharpSide = sel.SharpSideDisplay
		}

	case edge.MarketMoneyline:
		eval = edge.Evaluate(in.Edge)
		factor := compressionFactor(in.Edge.Sport)
		sel := sharpside.SelectMoneyline(sig.HomeTeam, sig.AwayTeam, edge.Compress(in.HomeWinProbability, factor), edge.Compress(in.AwayWinProbability, factor))
		if eval.State != edge.StateNoPlay {
			sharpSide = sel.SharpSideDisplay
		}
	}

	r.signals.RecordWaveEvaluation(sig, wave, eval, sharpSide)
	return eval, nil
}

// compressionFactor looks up the sport's probability compression factor,
// defaulting to a no-op (1.0) for an unknown sport so callers still get a
// defined comparison rather than a silent zero.
func compressionFactor(sport sportconfig.Sport) float64 {
	cfg, ok := sportconfig.Get(sport)
	if !ok {
		return 1.0
	}
	return cfg.CompressionFactor
}
