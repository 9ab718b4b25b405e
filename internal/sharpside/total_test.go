package sharpside

import "testing"

func TestSelectTotalPicksOverOnHigherProbability(t *testing.T) {
	sel := SelectTotal(224.5, 0.58, 0.42)

	if sel.Action != ActionOver {
		t.Fatalf("expected OVER, got %v", sel.Action)
	}
	if sel.SharpSideDisplay != "Over 224.5" {
		t.Fatalf("expected display 'Over 224.5', got %q", sel.SharpSideDisplay)
	}
}

func TestSelectTotalPicksUnderOnHigherProbability(t *testing.T) {
	sel := SelectTotal(224.5, 0.44, 0.56)

	if sel.Action != ActionUnder {
		t.Fatalf("expected UNDER, got %v", sel.Action)
	}
	if sel.SharpSideDisplay != "Under 224.5" {
		t.Fatalf("expected display 'Under 224.5', got %q", sel.SharpSideDisplay)
	}
}

func TestSelectTotalFavorsOverOnExactEquality(t *testing.T) {
	sel := SelectTotal(210.0, 0.50, 0.50)
	if sel.Action != ActionOver {
		t.Fatalf("expected the >= comparison to favor OVER on a tie, got %v", sel.Action)
	}
}
