package edge

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Result is the outcome of grading one leg against a final score.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
	ResultPush Result = "PUSH"
)

// Role fixes which team was the favorite/underdog at publish time. Grading
// always uses the role captured in the EntrySnapshot, never one recomputed
// from the final score — a pregame favorite that loses outright is still
// graded as the favorite against its spread number.
type Role string

const (
	RoleFavorite  Role = "FAVORITE"
	RoleUnderdog Role = "UNDERDOG"
)

// GradeSpread grades a spread bet. spread is the favorite's signed number
// (negative, e.g. -5.5); favoriteScore/underdogScore are the final score
// for the team in each role. side is which side of the spread was bet.
func GradeSpread(favoriteScore, underdogScore int, spread float64, side Role) Result {
	favoriteCovered := float64(favoriteScore) + spread
	margin := favoriteCovered - float64(underdogScore)

	switch {
	case margin == 0:
		return ResultPush
	case margin > 0:
		if side == RoleFavorite {
			return ResultWin
		}
		return ResultLoss
	default:
		if side == RoleUnderdog {
			return ResultWin
		}
		return ResultLoss
	}
}

// Side used for totals and moneyline grading.
type Side string

const (
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// GradeTotal grades a total (over/under) bet.
func GradeTotal(homeScore, awayScore int, line float64, side Side) Result {
	total := float64(homeScore + awayScore)

	switch {
	case total == line:
		return ResultPush
	case total > line:
		if side == SideOver {
			return ResultWin
		}
		return ResultLoss
	default:
		if side == SideUnder {
			return ResultWin
		}
		return ResultLoss
	}
}

// GradeMoneyline grades a moneyline bet: pickedHome is true if the home
// team was picked.
func GradeMoneyline(homeScore, awayScore int, pickedHome bool) Result {
	if homeScore == awayScore {
		// Moneylines do not push in sports with no tie rule; a genuine
		// tie score at grading time indicates a data problem upstream,
		// not a valid bet outcome, but we still report it rather than
		// panic.
		return ResultPush
	}
	homeWon := homeScore > awayScore
	if homeWon == pickedHome {
		return ResultWin
	}
	return ResultLoss
}

// GradingRecord is the stored idempotency record for one graded pick, per
// the external grading contract: re-running grading with identical rules
// versions must yield the identical record, while a rules-version bump
// creates a new record without overwriting history.
type GradingRecord struct {
	IdempotencyKey         string
	PickID                 string
	Source                 string
	SettlementRulesVersion string
	ClvRulesVersion        string
	Result                 Result
	GradedAt               time.Time
	Degraded               bool
	AdminOverrideNote      string
}

// GradingKey computes the idempotency key that identifies a grading
// record: sha256(pickId|source|settlementRulesVersion|clvRulesVersion),
// truncated to the first 32 hex characters per the grading contract.
func GradingKey(pickID, source, settlementRulesVersion, clvRulesVersion string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", pickID, source, settlementRulesVersion, clvRulesVersion)
	sum := hex.EncodeToString(h.Sum(nil))
	return sum[:32]
}

// NewGradingRecord builds the stored record for one grading outcome,
// computing its idempotency key from the pick identity and rules versions
// in effect at grading time.
func NewGradingRecord(pickID, source, settlementRulesVersion, clvRulesVersion string, result Result, gradedAt time.Time, degraded bool, adminOverrideNote string) GradingRecord {
	return GradingRecord{
		IdempotencyKey:         GradingKey(pickID, source, settlementRulesVersion, clvRulesVersion),
		PickID:                 pickID,
		Source:                 source,
		SettlementRulesVersion: settlementRulesVersion,
		ClvRulesVersion:        clvRulesVersion,
		Result:                 result,
		GradedAt:               gradedAt,
		Degraded:               degraded,
		AdminOverrideNote:      adminOverrideNote,
	}
}
