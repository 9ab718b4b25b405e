package edge

import (
	"testing"

	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

func TestEvaluateTotalPicksOverWhenOverEdgeIsBigger(t *testing.T) {
	eval, side := EvaluateTotal(MarketInputs{
		Market:          MarketTotal,
		Sport:           sportconfig.NBA,
		RawProbability:  0.60,
		AmericanOdds:    -110,
		StdDev:          0.01,
		ConvergenceRate: 0.97,
	}, -110)

	if side != SideOver {
		t.Fatalf("expected OVER, got %v", side)
	}
	if eval.State != StateEdge {
		t.Fatalf("expected EDGE, got %v", eval.State)
	}
}

func TestEvaluateTotalPicksUnderWhenUnderEdgeIsBigger(t *testing.T) {
	eval, side := EvaluateTotal(MarketInputs{
		Market:          MarketTotal,
		Sport:           sportconfig.NBA,
		RawProbability:  0.40,
		AmericanOdds:    -110,
		StdDev:          0.01,
		ConvergenceRate: 0.97,
	}, -110)

	if side != SideUnder {
		t.Fatalf("expected UNDER, got %v", side)
	}
	if eval.State != StateEdge {
		t.Fatalf("expected EDGE, got %v", eval.State)
	}
}

func TestEvaluateTotalJuicedUnderPriceKeepsOverAsTheWinningSide(t *testing.T) {
	// A mild over lean on its own would be a thin edge, but a heavily
	// juiced under price (-400) drags the under's edge deeply negative,
	// so the over still carries the larger (and positive) compressed edge.
	eval, side := EvaluateTotal(MarketInputs{
		Market:          MarketTotal,
		Sport:           sportconfig.NBA,
		RawProbability:  0.55,
		AmericanOdds:    -110,
		StdDev:          0.01,
		ConvergenceRate: 0.97,
	}, -400)

	if side != SideOver {
		t.Fatalf("expected the juiced under price to keep the pick on OVER, got %v", side)
	}
	if eval.CompressedEdge <= 0 {
		t.Fatalf("expected a positive compressed edge for the winning side, got %v", eval.CompressedEdge)
	}
}

func TestEvaluateTotalReturnsNoPlayWhenTheWinningSideIsThin(t *testing.T) {
	eval, side := EvaluateTotal(MarketInputs{
		Market:          MarketTotal,
		Sport:           sportconfig.NBA,
		RawProbability:  0.525,
		AmericanOdds:    -110,
		StdDev:          0.01,
		ConvergenceRate: 0.97,
	}, -110)

	if side != SideOver {
		t.Fatalf("expected OVER to still win the comparison near a coinflip, got %v", side)
	}
	if eval.State != StateNoPlay {
		t.Fatalf("expected NO_PLAY for a near-coinflip total, got %v", eval.State)
	}
}
