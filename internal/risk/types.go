// Package risk implements bet-size alerting, Kelly-criterion sizing,
// parlay risk assessment, bankroll health, and tilt detection.
//
// Grounded on original_source/backend/core/agents/risk_agent.py and
// original_source/backend/core/tilt_detection.py.
package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertLevel is the severity of a bet-size or bankroll alert.
type AlertLevel string

const (
	AlertNone     AlertLevel = "NONE"
	AlertWarning  AlertLevel = "WARNING"
	AlertDanger   AlertLevel = "DANGER"
	AlertExtreme  AlertLevel = "EXTREME"
	AlertCritical AlertLevel = "CRITICAL"
)

// TiltReason identifies which tilt heuristic fired.
type TiltReason string

const (
	TiltHighFrequency TiltReason = "HIGH_FREQUENCY"
	TiltOversizedBet  TiltReason = "OVERSIZED_BET"
	TiltRapidBetting  TiltReason = "RAPID_BETTING"
	TiltLossStreak    TiltReason = "LOSS_STREAK"
)

// UserProfile holds the bankroll facts a risk check needs. DefaultProfile
// supplies the fallback used when no persisted profile exists for a user,
// so a request never fails purely for lack of profile data.
type UserProfile struct {
	UserID           string
	Bankroll         decimal.Decimal
	StartingBankroll decimal.Decimal
	AvgBetSize       decimal.Decimal
	UnitSize         decimal.Decimal
	RecentLossStreak int
}

// DefaultProfile returns the fallback profile for a user with no persisted
// history.
func DefaultProfile(userID string) UserProfile {
	return UserProfile{
		UserID:           userID,
		Bankroll:         decimal.NewFromInt(1000),
		StartingBankroll: decimal.NewFromInt(1000),
		AvgBetSize:       decimal.NewFromInt(100),
		UnitSize:         decimal.NewFromInt(100),
		RecentLossStreak: 0,
	}
}

// BetSizeResult is the outcome of CheckBetSize.
type BetSizeResult struct {
	Level              AlertLevel
	BankrollPct        float64
	SizeMultiplier     float64
	Messages           []string
	KellySuggestedSize decimal.Decimal
}

// BankrollHealth is the outcome of AssessBankrollHealth.
type BankrollHealth struct {
	Status       AlertLevel
	DrawdownPct  float64
	Messages     []string
}

// ParlayRiskResult is the outcome of AssessParlayRisk.
type ParlayRiskResult struct {
	Level    AlertLevel
	Warnings []string
}

// Bet is one tracked wager, used by tilt detection.
type Bet struct {
	UserID    string
	Amount    decimal.Decimal
	PlacedAt  time.Time
	Result    string // "WIN", "LOSS", "PUSH", or "" if not yet graded
}

// TiltAlert is one fired tilt heuristic.
type TiltAlert struct {
	UserID    string
	Reason    TiltReason
	Message   string
	FiredAt   time.Time
}
