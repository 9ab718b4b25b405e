package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bet-size alert thresholds, as fractions of bankroll / multiples of
// average bet size.
const (
	warningBankrollPct = 5.0
	dangerBankrollPct  = 10.0
	dangerSizeMultiple = 3.0
)

// CheckBetSize evaluates a proposed wager against the user's bankroll and
// betting history, returning WARNING/DANGER alerts and a Kelly-suggested
// size regardless of the alert level.
func CheckBetSize(profile UserProfile, amount decimal.Decimal, winProbability float64, americanOdds int) BetSizeResult {
	bankrollPct := 0.0
	if profile.Bankroll.IsPositive() {
		bankrollPct, _ = amount.Div(profile.Bankroll).Mul(decimal.NewFromInt(100)).Float64()
	}
	sizeMultiplier := 0.0
	if profile.AvgBetSize.IsPositive() {
		sizeMultiplier, _ = amount.Div(profile.AvgBetSize).Float64()
	}

	result := BetSizeResult{
		Level:              AlertNone,
		BankrollPct:        bankrollPct,
		SizeMultiplier:     sizeMultiplier,
		KellySuggestedSize: KellySuggestedSize(profile.Bankroll, winProbability, americanOdds),
	}

	danger := bankrollPct >= dangerBankrollPct || sizeMultiplier >= dangerSizeMultiple
	warning := bankrollPct >= warningBankrollPct

	switch {
	case danger:
		result.Level = AlertDanger
		if sizeMultiplier >= dangerSizeMultiple {
			result.Messages = append(result.Messages, fmt.Sprintf("bet is %.1fx your average bet size", sizeMultiplier))
		}
		if bankrollPct >= dangerBankrollPct {
			result.Messages = append(result.Messages, fmt.Sprintf("bet is %.1f%% of bankroll, at or above the 10%% danger line", bankrollPct))
		}
	case warning:
		result.Level = AlertWarning
		result.Messages = append(result.Messages, fmt.Sprintf("bet is %.1f%% of bankroll, at or above the 5%% warning line", bankrollPct))
	}

	return result
}
