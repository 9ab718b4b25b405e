package edge

import (
	"math"
	"testing"

	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

func TestCompressIdempotentAtHalf(t *testing.T) {
	if got := Compress(0.5, 0.8); got != 0.5 {
		t.Fatalf("compress(0.5) = %v, want 0.5", got)
	}
}

func TestCompressMonotonic(t *testing.T) {
	a := Compress(0.55, 0.8)
	b := Compress(0.60, 0.8)
	if !(a < b) {
		t.Fatalf("compress must be monotonic in rawProb: compress(0.55)=%v compress(0.60)=%v", a, b)
	}
}

func TestCompressBounded(t *testing.T) {
	for _, p := range []float64{0, 0.25, 0.5, 0.75, 1} {
		c := Compress(p, 0.8)
		if c < 0 || c > 1 {
			t.Fatalf("compress(%v) = %v out of [0,1]", p, c)
		}
	}
}

func TestAmericanDecimalRoundTrip(t *testing.T) {
	cases := []int{-200, -110, 100, 150, 300}
	for _, o := range cases {
		dec := AmericanToDecimal(o)
		back := decimalToAmerican(dec)
		if back != o {
			t.Errorf("round trip failed for %d: decimal=%v back=%d", o, dec, back)
		}
	}
}

// decimalToAmerican is the inverse used only to test AmericanToDecimal;
// it is not part of the exported pipeline since no component consumes it.
func decimalToAmerican(dec float64) int {
	if dec >= 2.0 {
		return int(math.Round((dec - 1) * 100))
	}
	return int(math.Round(-100 / (dec - 1)))
}

func TestClassifyVolatilityBands(t *testing.T) {
	cases := []struct {
		std  float64
		want VolatilityLevel
	}{
		{0.01, VolatilityLow},
		{0.03, VolatilityMedium},
		{0.05, VolatilityHigh},
		{0.10, VolatilityExtreme},
	}
	for _, c := range cases {
		if got := ClassifyVolatility(c.std); got != c.want {
			t.Errorf("ClassifyVolatility(%v) = %v, want %v", c.std, got, c.want)
		}
	}
}

func TestAssessDistributionExtremeForcesUnstable(t *testing.T) {
	if got := AssessDistribution(VolatilityExtreme, 0.99); got != DistributionUnstableExtreme {
		t.Fatalf("extreme volatility must force UNSTABLE_EXTREME regardless of convergence, got %v", got)
	}
}

func TestAssessDistributionStableRequiresConvergence(t *testing.T) {
	if got := AssessDistribution(VolatilityLow, 0.90); got != DistributionUnstable {
		t.Fatalf("low volatility with weak convergence should not be STABLE, got %v", got)
	}
	if got := AssessDistribution(VolatilityLow, 0.97); got != DistributionStable {
		t.Fatalf("low volatility with strong convergence should be STABLE, got %v", got)
	}
}

func TestIsNearKeyNumber(t *testing.T) {
	keys := []float64{3, 7, 10}
	if !IsNearKeyNumber(3.4, keys) {
		t.Fatal("3.4 should be within 0.5 of key number 3")
	}
	if IsNearKeyNumber(5, keys) {
		t.Fatal("5 is not near any key number")
	}
}

func TestEvaluateQBUnconfirmedBlocksNFL(t *testing.T) {
	confirmed := false
	eval := Evaluate(MarketInputs{
		Market:         MarketSpread,
		Sport:          sportconfig.NFL,
		RawProbability: 0.65,
		AmericanOdds:   -110,
		Spread:         -2,
		QBConfirmed:    &confirmed,
	})

	if eval.State != StateNoPlay || eval.BlockedReason != ReasonQBNotConfirmed {
		t.Fatalf("expected NO_PLAY/QB_NOT_CONFIRMED, got state=%v reason=%s", eval.State, eval.BlockedReason)
	}
}

func TestEvaluateUnstableExtremeTakesPriorityOverGuardrail(t *testing.T) {
	// Confirmation passes, distribution is extreme, AND the spread is
	// oversized. The instability gate must fire first (load-bearing order).
	confirmed := true
	eval := Evaluate(MarketInputs{
		Market:           MarketSpread,
		Sport:            sportconfig.NFL,
		RawProbability:   0.80,
		AmericanOdds:     -110,
		Spread:           20, // exceeds MaxDogSpread
		StdDev:           0.2,
		ConvergenceRate:  0.5,
		QBConfirmed:      &confirmed,
		WeatherCertain:   &confirmed,
	})

	if eval.BlockedReason != ReasonUnstableExtreme {
		t.Fatalf("expected instability gate to fire before guardrail, got reason=%s", eval.BlockedReason)
	}
}

func TestEvaluateLargeSpreadRequiresHigherEdge(t *testing.T) {
	confirmed := true
	// compressedEdge will be moderate; large spread requires 4.0, plain requires 3.0.
	eval := Evaluate(MarketInputs{
		Market:          MarketSpread,
		Sport:           sportconfig.NFL,
		RawProbability:  0.57, // raw edge modest
		AmericanOdds:    -110,
		Spread:          8, // > LargeSpreadCutoff (6.0), within MaxDogSpread (13.0)
		StdDev:          0.01,
		ConvergenceRate: 0.99,
		QBConfirmed:     &confirmed,
		WeatherCertain:  &confirmed,
	})

	if eval.State == StateEdge {
		t.Fatalf("a large spread with only moderate edge should not classify as EDGE, got %+v", eval)
	}
}

func TestEvaluateUnknownSportIsMissingData(t *testing.T) {
	eval := Evaluate(MarketInputs{Market: MarketSpread, Sport: "XFL"})
	if eval.State != StateNoPlay || eval.BlockedReason != ReasonMissingMarketData {
		t.Fatalf("unknown sport should surface MISSING_MARKET_DATA, got %+v", eval)
	}
}

func TestGradeSpreadPush(t *testing.T) {
	if got := GradeSpread(24, 21, -3, RoleFavorite); got != ResultPush {
		t.Fatalf("expected push, got %v", got)
	}
}

func TestGradeSpreadFavoriteCovers(t *testing.T) {
	if got := GradeSpread(24, 20, -3, RoleFavorite); got != ResultWin {
		t.Fatalf("favorite -3 winning by 4 should cover, got %v", got)
	}
	if got := GradeSpread(24, 20, -3, RoleUnderdog); got != ResultLoss {
		t.Fatalf("underdog side should lose when favorite covers, got %v", got)
	}
}

func TestGradeTotal(t *testing.T) {
	if got := GradeTotal(30, 20, 45.5, SideOver); got != ResultWin {
		t.Fatalf("50 total > 45.5 line should win the over, got %v", got)
	}
	if got := GradeTotal(20, 20, 40, SideOver); got != ResultPush {
		t.Fatalf("expected push, got %v", got)
	}
}

func TestGradeMoneyline(t *testing.T) {
	if got := GradeMoneyline(24, 20, true); got != ResultWin {
		t.Fatalf("home won, picked home, expected WIN, got %v", got)
	}
	if got := GradeMoneyline(24, 20, false); got != ResultLoss {
		t.Fatalf("home won, picked away, expected LOSS, got %v", got)
	}
}
