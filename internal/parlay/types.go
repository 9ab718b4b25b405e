// Package parlay builds multi-leg parlays from a candidate pool: pool
// construction, per-leg weighting, pairwise correlation, combined
// probability, and a fallback ladder that relaxes risk constraints rather
// than ever returning an empty successful parlay.
//
// Grounded on original_source/backend/core/agents/parlay_agent.py.
package parlay

import "github.com/beatvegas/signal-engine/internal/edge"

// Mode selects which threshold set governs pool construction.
type Mode string

const (
	ModeStrict Mode = "STRICT"
	ModeParlay Mode = "PARLAY"
)

// Profile is a requested risk tolerance for a parlay build.
type Profile string

const (
	ProfileHighConfidence Profile = "HIGH_CONFIDENCE"
	ProfileBalanced       Profile = "BALANCED"
	ProfileHighVolatility Profile = "HIGH_VOLATILITY"
)

// BetType identifies the market family a candidate leg belongs to.
type BetType string

const (
	BetTypeSpread    BetType = "SPREAD"
	BetTypeTotal     BetType = "TOTAL"
	BetTypeMoneyline BetType = "MONEYLINE"
	BetTypeProp      BetType = "PROP"
)

// Period distinguishes first-half from full-game totals, needed for the
// 1H/FG conflict rule.
type Period string

const (
	PeriodFullGame  Period = "FULL"
	PeriodFirstHalf Period = "1H"
)

// Side is which way a total leg was taken.
type Side string

const (
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// StrictState mirrors the signal package's terminal classification without
// importing it directly, avoiding a dependency cycle with internal/signal.
type StrictState string

const (
	StrictStatePick StrictState = "PICK"
	StrictStateLean StrictState = "LEAN"
)

// Candidate is one leg eligible for parlay consideration.
type Candidate struct {
	LegID    string
	EventID  string
	GameID   string
	Sport    string
	HomeCity string

	BetType BetType
	Period  Period
	Side    Side

	StrictState    StrictState
	WinProbability float64
	EdgePoints     float64
	Confidence     float64 // 0-100
	VolatilityBand edge.VolatilityLevel
	DistributionStable bool
	CanParlay      bool
	VarianceZScore float64

	IsProp          bool
	PlayerStatusOK  bool
	RiskBandHigh    bool

	// Populated by BuildCandidatePool/ComputeWeight.
	ParlayWeight   float64
	ParlayEligible bool
}

// MinParlayWeight is the eligibility cutoff for a weighted candidate.
const MinParlayWeight = 0.5

// PoolOptions controls market filters applied during pool construction.
type PoolOptions struct {
	IncludeProps     bool
	IncludeGameLines bool
	DFSMode          bool
	AllowSameGame    bool
	AllowCrossSport  bool
}
