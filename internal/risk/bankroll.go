package risk

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	bankrollWarningDrawdownPct  = 30.0
	bankrollCriticalDrawdownPct = 50.0
	lossStreakWarningThreshold  = 5
)

// AssessBankrollHealth measures drawdown from the user's starting
// bankroll and flags a sustained loss streak.
func AssessBankrollHealth(profile UserProfile) BankrollHealth {
	drawdownPct := 0.0
	if profile.StartingBankroll.IsPositive() {
		diff := profile.StartingBankroll.Sub(profile.Bankroll)
		drawdownPct, _ = diff.Div(profile.StartingBankroll).Mul(decimal.NewFromInt(100)).Float64()
	}

	health := BankrollHealth{Status: AlertNone, DrawdownPct: drawdownPct}

	switch {
	case drawdownPct > bankrollCriticalDrawdownPct:
		health.Status = AlertCritical
		health.Messages = append(health.Messages, fmt.Sprintf("bankroll down %.1f%% from start", drawdownPct))
	case drawdownPct > bankrollWarningDrawdownPct:
		health.Status = AlertWarning
		health.Messages = append(health.Messages, fmt.Sprintf("bankroll down %.1f%% from start", drawdownPct))
	}

	if profile.RecentLossStreak >= lossStreakWarningThreshold {
		if health.Status == AlertNone {
			health.Status = AlertWarning
		}
		health.Messages = append(health.Messages, fmt.Sprintf("%d consecutive losses", profile.RecentLossStreak))
	}

	return health
}
