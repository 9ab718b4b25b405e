package parlay

import "testing"

func TestCorrelationSameGameSpreadTotal(t *testing.T) {
	a := Candidate{EventID: "evt-1", BetType: BetTypeSpread}
	b := Candidate{EventID: "evt-1", BetType: BetTypeTotal}

	rho, conflict := Correlation(a, b)
	if conflict {
		t.Fatal("spread+total same-game pairing should not be flagged as a conflict")
	}
	if rho != corrSameGameSpreadTotal {
		t.Fatalf("expected correlation %v, got %v", corrSameGameSpreadTotal, rho)
	}
}

func TestCombinedProbabilityBetweenProductAndMin(t *testing.T) {
	probs := []float64{0.60, 0.55}
	rho, _ := Correlation(
		Candidate{EventID: "evt-1", BetType: BetTypeSpread},
		Candidate{EventID: "evt-1", BetType: BetTypeTotal},
	)

	combined := CombinedProbability(probs, rho)
	product := probs[0] * probs[1]
	min := probs[1]

	if combined < product || combined > min {
		t.Fatalf("expected combined probability in [%v, %v], got %v", product, min, combined)
	}
}

func TestOneHalfFullGameConflictUnderOver(t *testing.T) {
	firstHalf := Candidate{EventID: "evt-2", BetType: BetTypeTotal, Period: PeriodFirstHalf, Side: SideUnder}
	fullGame := Candidate{EventID: "evt-2", BetType: BetTypeTotal, Period: PeriodFullGame, Side: SideOver}

	rho, conflict := Correlation(firstHalf, fullGame)
	if !conflict {
		t.Fatal("expected the 1H under / FG over pairing to be flagged as a conflict")
	}
	if rho != corr1HUnderFGOver {
		t.Fatalf("expected correlation %v, got %v", corr1HUnderFGOver, rho)
	}
}

func TestOneHalfFullGameMathematicalConflictOverUnder(t *testing.T) {
	firstHalf := Candidate{EventID: "evt-3", BetType: BetTypeTotal, Period: PeriodFirstHalf, Side: SideOver}
	fullGame := Candidate{EventID: "evt-3", BetType: BetTypeTotal, Period: PeriodFullGame, Side: SideUnder}

	rho, conflict := Correlation(firstHalf, fullGame)
	if !conflict || rho != corr1HOverFGUnder {
		t.Fatalf("expected mathematical conflict at %v, got rho=%v conflict=%v", corr1HOverFGUnder, rho, conflict)
	}
}
