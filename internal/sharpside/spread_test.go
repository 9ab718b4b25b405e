package sharpside

import (
	"math"
	"testing"

	"github.com/beatvegas/signal-engine/internal/edge"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestSelectSpreadFavoriteSharp(t *testing.T) {
	sel := SelectSpread("Knicks", "Hawks", -5.5, 12.3, true, edge.VolatilityMedium)

	if sel.Action != ActionLayPoints {
		t.Fatalf("expected LAY_POINTS, got %v", sel.Action)
	}
	if sel.SharpSide != "Knicks" {
		t.Fatalf("expected sharp side Knicks, got %q", sel.SharpSide)
	}
	if !approxEqual(sel.EdgeMagnitude, 6.8, 0.01) {
		t.Fatalf("expected edge magnitude ~6.8, got %v", sel.EdgeMagnitude)
	}
	if sel.MarketDisplay != "Hawks +5.5" {
		t.Fatalf("expected market display 'Hawks +5.5', got %q", sel.MarketDisplay)
	}
}

func TestSelectSpreadTakePointsUnderdog(t *testing.T) {
	sel := SelectSpread("Knicks", "Hawks", -5.5, -3.2, true, edge.VolatilityLow)

	if sel.Action != ActionTakePoints {
		t.Fatalf("expected TAKE_POINTS, got %v", sel.Action)
	}
	if sel.SharpSide != "Hawks" {
		t.Fatalf("expected sharp side Hawks, got %q", sel.SharpSide)
	}
	if !approxEqual(sel.EdgeMagnitude, 2.3, 0.01) {
		t.Fatalf("expected edge magnitude ~2.3, got %v", sel.EdgeMagnitude)
	}
}

func TestSelectSpreadTakePointsLiveSuppressedBySmallEdge(t *testing.T) {
	// market underdog spread 5.5, model says underdog only deserves 7 ->
	// market is shorting the dog, but the edge (1.5) is smaller than the
	// HIGH volatility penalty (2.0), so the play is suppressed.
	sel := SelectSpread("Knicks", "Hawks", -5.5, 7.0, true, edge.VolatilityHigh)

	if sel.Action != ActionNone || sel.SharpSide != noSharpPlay {
		t.Fatalf("expected suppression to NO_SHARP_PLAY, got action=%v side=%q", sel.Action, sel.SharpSide)
	}
}

func TestSelectSpreadTakePointsLiveSurvivesWithEnoughEdge(t *testing.T) {
	// Same shorting-the-dog shape but with a bigger edge than the penalty.
	sel := SelectSpread("Knicks", "Hawks", -5.5, 8.0, true, edge.VolatilityLow)

	if sel.Action != ActionTakePointsLive {
		t.Fatalf("expected TAKE_POINTS_LIVE, got %v", sel.Action)
	}
	if sel.EdgeAfterPenalty <= 0 {
		t.Fatalf("expected positive edge after penalty, got %v", sel.EdgeAfterPenalty)
	}
}

func TestSelectSpreadNoSharpPlayOnEquality(t *testing.T) {
	sel := SelectSpread("Knicks", "Hawks", -5.5, 5.5, true, edge.VolatilityLow)
	if sel.SharpSide != noSharpPlay {
		t.Fatalf("expected NO_SHARP_PLAY on exact equality, got %q", sel.SharpSide)
	}
}

func TestSelectSpreadFavoriteSharpGuardSkippedWhenMarketNotSteep(t *testing.T) {
	// marketFavoriteSpread > -3.0 means the favorite check is skipped
	// entirely regardless of how lopsided modelSpread is.
	sel := SelectSpread("Knicks", "Hawks", -1.0, 20.0, true, edge.VolatilityLow)
	if sel.Action == ActionLayPoints {
		t.Fatalf("favorite_sharp guard should not fire when market favorite spread is above -3.0")
	}
}

func TestValidateAlignmentRejectsMissingSharpSideOnEdge(t *testing.T) {
	sel := Selection{Action: ActionNone, SharpSide: noSharpPlay}
	if err := ValidateAlignment(edge.StateEdge, sel); err == nil {
		t.Fatal("expected an alignment error when EDGE has no sharp side")
	}
}

func TestValidateAlignmentRejectsSharpSideOnNoPlay(t *testing.T) {
	sel := Selection{Action: ActionLayPoints, SharpSide: "Knicks"}
	if err := ValidateAlignment(edge.StateNoPlay, sel); err == nil {
		t.Fatal("expected an alignment error when NO_PLAY carries a sharp side")
	}
}

func TestValidateAlignmentAcceptsConsistentStates(t *testing.T) {
	sel := Selection{Action: ActionLayPoints, SharpSide: "Knicks"}
	if err := ValidateAlignment(edge.StateEdge, sel); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	noPlaySel := Selection{Action: ActionNone, SharpSide: noSharpPlay}
	if err := ValidateAlignment(edge.StateNoPlay, noPlaySel); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
