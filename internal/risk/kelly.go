package risk

import (
	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/shopspring/decimal"
)

// fractionalKellyCap bounds the suggested stake at 5% of bankroll
// (quarter-Kelly-ish discipline), independent of what full Kelly computes.
const fractionalKellyCap = 0.05

// KellyFraction computes the Kelly-optimal fraction of bankroll to stake,
// given decimal odds b+1 and win probability p, clamped to [0, cap].
func KellyFraction(winProbability float64, americanOdds int) float64 {
	decimalOdds := edge.AmericanToDecimal(americanOdds)
	b := decimalOdds - 1
	if b <= 0 {
		return 0
	}

	p := winProbability
	q := 1 - p
	kelly := (b*p - q) / b

	switch {
	case kelly < 0:
		return 0
	case kelly > fractionalKellyCap:
		return fractionalKellyCap
	default:
		return kelly
	}
}

// KellySuggestedSize converts a Kelly fraction into a dollar stake against
// the given bankroll.
func KellySuggestedSize(bankroll decimal.Decimal, winProbability float64, americanOdds int) decimal.Decimal {
	fraction := KellyFraction(winProbability, americanOdds)
	return bankroll.Mul(decimal.NewFromFloat(fraction))
}
