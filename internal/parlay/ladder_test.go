package parlay

import (
	"testing"

	"github.com/beatvegas/signal-engine/internal/edge"
)

func leanCandidate(eventID, sport string) Candidate {
	return Candidate{
		LegID:              "leg-" + eventID,
		EventID:            eventID,
		GameID:             "game-" + eventID,
		Sport:              sport,
		BetType:            BetTypeSpread,
		StrictState:        StrictStateLean,
		WinProbability:     0.75,
		EdgePoints:         8.0,
		Confidence:         90,
		VolatilityBand:     edge.VolatilityHigh,
		DistributionStable: true,
		CanParlay:          true,
	}
}

// TestFallbackLadderOnAllLeanPool: a pool of only LEAN-state, HIGH-volatility
// legs requested at HIGH_CONFIDENCE/5-leg cannot satisfy the strict, no-lean
// profiles, nor BALANCED's single-high-vol-leg cap at five legs; it only
// succeeds once the ladder both admits LEAN legs and downgrades to
// HIGH_VOLATILITY, and even then only once the leg count has been
// decremented to fit HIGH_VOLATILITY's high-vol-leg cap of three.
func TestFallbackLadderOnAllLeanPool(t *testing.T) {
	raw := []Candidate{
		leanCandidate("evt-1", "NBA"),
		leanCandidate("evt-2", "NFL"),
		leanCandidate("evt-3", "NHL"),
		leanCandidate("evt-4", "MLB"),
		leanCandidate("evt-5", "NCAAF"),
	}

	opts := PoolOptions{IncludeGameLines: true, AllowSameGame: false, AllowCrossSport: true}
	pool := BuildCandidatePool(ModeParlay, raw, opts)

	for _, c := range pool {
		if !c.ParlayEligible {
			t.Fatalf("expected candidate %s to be parlay eligible, weight=%v", c.LegID, c.ParlayWeight)
		}
	}

	result := GenerateParlay(pool, ProfileHighConfidence, 5, opts)

	if !result.Success {
		t.Fatalf("expected the ladder to eventually succeed, got failure code %q", result.FailureCode)
	}
	if result.UsedProfile != ProfileHighVolatility {
		t.Fatalf("expected usedProfile HIGH_VOLATILITY, got %v", result.UsedProfile)
	}
	if result.UsedLegCount > 5 {
		t.Fatalf("expected usedLegCount <= 5, got %d", result.UsedLegCount)
	}

	wantCodes := []string{StepFallbackToBalanced, StepEnableHigherRiskLegs, StepFallbackToHighVol}
	for _, code := range wantCodes {
		if !containsStep(result.FallbackSteps, code) {
			t.Fatalf("expected fallback steps to contain %q, got %v", code, result.FallbackSteps)
		}
	}
}

func containsStep(steps []string, code string) bool {
	for _, s := range steps {
		if s == code {
			return true
		}
	}
	return false
}

func TestGenerateParlayNeverEmptyOnSuccess(t *testing.T) {
	raw := []Candidate{
		leanCandidate("evt-1", "NBA"),
		leanCandidate("evt-2", "NFL"),
		leanCandidate("evt-3", "NHL"),
	}
	opts := PoolOptions{IncludeGameLines: true, AllowCrossSport: true}
	pool := BuildCandidatePool(ModeParlay, raw, opts)

	result := GenerateParlay(pool, ProfileHighVolatility, 3, opts)
	if result.Success && len(result.Legs) == 0 {
		t.Fatal("a successful result must never carry zero legs")
	}
}
