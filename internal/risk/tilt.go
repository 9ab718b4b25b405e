package risk

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	highFrequencyWindow    = 10 * time.Minute
	highFrequencyMaxBets   = 3
	oversizedBetMultiple   = 3.0
	rapidBettingWindow     = 120 * time.Second
	lossStreakAdvisoryMin  = 3
	alertThrottleWindow    = time.Hour
)

// Detector tracks recent bets per user to evaluate the four tilt
// heuristics, throttling repeat alerts for the same user and reason to at
// most once per hour.
type Detector struct {
	now func() time.Time

	mu        sync.Mutex
	bets      map[string][]Bet
	lastAlert map[string]map[TiltReason]time.Time
}

// NewDetector creates an empty Detector. now may be nil to use time.Now.
func NewDetector(now func() time.Time) *Detector {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Detector{
		now:       now,
		bets:      make(map[string][]Bet),
		lastAlert: make(map[string]map[TiltReason]time.Time),
	}
}

// RecordBet appends bet to the user's history and evaluates every tilt
// heuristic, returning whichever alerts fire and are not currently
// throttled.
func (d *Detector) RecordBet(bet Bet, unitSize decimal.Decimal) []TiltAlert {
	d.mu.Lock()
	defer d.mu.Unlock()

	history := append(d.bets[bet.UserID], bet)
	d.bets[bet.UserID] = history

	now := d.now()
	var fired []TiltReason
	messages := map[TiltReason]string{}

	if count := countWithin(history, now, highFrequencyWindow); count > highFrequencyMaxBets {
		fired = append(fired, TiltHighFrequency)
		messages[TiltHighFrequency] = fmt.Sprintf("%d bets placed in the last 10 minutes", count)
	}

	if unitSize.IsPositive() && bet.Amount.GreaterThan(unitSize.Mul(decimal.NewFromFloat(oversizedBetMultiple))) {
		fired = append(fired, TiltOversizedBet)
		amountF, _ := bet.Amount.Float64()
		messages[TiltOversizedBet] = fmt.Sprintf("bet of %.2f is over %.0fx unit size", amountF, oversizedBetMultiple)
	}

	if len(history) >= 2 {
		prev := history[len(history)-2]
		if bet.PlacedAt.Sub(prev.PlacedAt) < rapidBettingWindow {
			fired = append(fired, TiltRapidBetting)
			messages[TiltRapidBetting] = "consecutive bets placed less than 2 minutes apart"
		}
	}

	if streak := trailingLossStreak(history); streak >= lossStreakAdvisoryMin {
		fired = append(fired, TiltLossStreak)
		messages[TiltLossStreak] = fmt.Sprintf("%d consecutive losses", streak)
	}

	var alerts []TiltAlert
	for _, reason := range fired {
		if d.throttled(bet.UserID, reason, now) {
			continue
		}
		d.markAlerted(bet.UserID, reason, now)
		alerts = append(alerts, TiltAlert{
			UserID:  bet.UserID,
			Reason:  reason,
			Message: messages[reason],
			FiredAt: now,
		})
	}

	return alerts
}

func countWithin(history []Bet, now time.Time, window time.Duration) int {
	count := 0
	for _, b := range history {
		if now.Sub(b.PlacedAt) <= window {
			count++
		}
	}
	return count
}

func trailingLossStreak(history []Bet) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Result != "LOSS" {
			break
		}
		streak++
	}
	return streak
}

func (d *Detector) throttled(userID string, reason TiltReason, now time.Time) bool {
	byReason, ok := d.lastAlert[userID]
	if !ok {
		return false
	}
	last, ok := byReason[reason]
	if !ok {
		return false
	}
	return now.Sub(last) < alertThrottleWindow
}

func (d *Detector) markAlerted(userID string, reason TiltReason, now time.Time) {
	byReason, ok := d.lastAlert[userID]
	if !ok {
		byReason = make(map[TiltReason]time.Time)
		d.lastAlert[userID] = byReason
	}
	byReason[reason] = now
}
