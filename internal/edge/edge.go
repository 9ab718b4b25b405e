// Package edge implements the sport-agnostic edge evaluation pipeline:
// probability compression, edge classification, volatility/distribution
// assessment, and eligibility gating. Every sport runs the same pipeline;
// only thresholds and confirmation requirements differ (sportconfig).
//
// Grounded on original_source/backend/core/nfl_calibration.py, the fullest
// reference pipeline in the retrieved source tree.
package edge

import (
	"fmt"
	"math"

	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

// MarketType identifies which market is being evaluated.
type MarketType string

const (
	MarketSpread    MarketType = "SPREAD"
	MarketTotal     MarketType = "TOTAL"
	MarketMoneyline MarketType = "MONEYLINE"
	MarketPuckline  MarketType = "PUCKLINE"
)

// EdgeState is the terminal classification of one market evaluation.
type EdgeState string

const (
	StateEdge   EdgeState = "EDGE"
	StateLean   EdgeState = "LEAN"
	StateNoPlay EdgeState = "NO_PLAY"
)

// VolatilityLevel buckets the simulation's standard deviation.
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "LOW"
	VolatilityMedium  VolatilityLevel = "MEDIUM"
	VolatilityHigh    VolatilityLevel = "HIGH"
	VolatilityExtreme VolatilityLevel = "EXTREME"
)

// DistributionFlag summarizes simulation convergence quality.
type DistributionFlag string

const (
	DistributionStable          DistributionFlag = "STABLE"
	DistributionUnstable        DistributionFlag = "UNSTABLE"
	DistributionUnstableExtreme DistributionFlag = "UNSTABLE_EXTREME"
)

// Reason codes surfaced when a market is blocked from play. These are the
// machine-readable codes described in the error-handling design; they are
// not Go errors, they are valid domain outcomes.
const (
	ReasonMissingMarketData    = "MISSING_MARKET_DATA"
	ReasonPitcherNotConfirmed  = "PITCHER_NOT_CONFIRMED"
	ReasonQBNotConfirmed       = "QB_NOT_CONFIRMED"
	ReasonGoalieNotConfirmed   = "GOALIE_NOT_CONFIRMED"
	ReasonWeatherUncertain     = "WEATHER_UNCERTAIN"
	ReasonUnstableExtreme      = "DISTRIBUTION_UNSTABLE_EXTREME"
	ReasonEdgeBelowThreshold   = "EDGE_BELOW_THRESHOLD"
	ReasonSpreadTooLargePrefix = "SPREAD_TOO_LARGE_"
)

// MarketInputs carries everything the pipeline needs for one market on one
// game. Fields not relevant to MarketType may be left zero.
type MarketInputs struct {
	Market MarketType
	Sport  sportconfig.Sport

	RawProbability float64 // model's raw win/cover/over probability for the side being evaluated
	AmericanOdds   int     // market odds for that side

	Spread          float64 // signed, underdog's perspective; only for MarketSpread
	MarketDogSpread float64 // market's posted number of points for the underdog (always positive)

	StdDev          float64
	ConvergenceRate float64

	PitcherConfirmed *bool
	QBConfirmed      *bool
	GoalieConfirmed  *bool
	WeatherCertain   *bool
}

// Evaluation is the result of running the pipeline on one market.
type Evaluation struct {
	State           EdgeState
	RawEdgePct      float64
	CompressedEdge  float64
	CompressedProb  float64
	Volatility      VolatilityLevel
	Distribution    DistributionFlag
	IsLargeSpread   bool
	NearKeyNumber   bool
	BlockedReason   string
	BlockedDetail   string
}

// Compress regresses a raw probability toward 0.5 by factor. factor=1 is a
// no-op; factor=0 collapses everything to 0.5.
func Compress(rawProb, factor float64) float64 {
	return 0.5 + (rawProb-0.5)*factor
}

// ImpliedProbability converts American odds into an implied probability.
func ImpliedProbability(americanOdds int) float64 {
	if americanOdds < 0 {
		o := float64(-americanOdds)
		return o / (o + 100)
	}
	return 100 / (float64(americanOdds) + 100)
}

// AmericanToDecimal converts American odds to decimal odds.
func AmericanToDecimal(americanOdds int) float64 {
	if americanOdds < 0 {
		return 1 + 100/float64(-americanOdds)
	}
	return 1 + float64(americanOdds)/100
}

// ClassifyVolatility buckets a standard deviation into a level, using the
// fixed bands from the reference implementation (sport-invariant).
func ClassifyVolatility(stdDev float64) VolatilityLevel {
	switch {
	case stdDev < 0.02:
		return VolatilityLow
	case stdDev < 0.035:
		return VolatilityMedium
	case stdDev < 0.055:
		return VolatilityHigh
	default:
		return VolatilityExtreme
	}
}

// AssessDistribution combines volatility and convergence into a
// distribution flag. STABLE requires LOW/MEDIUM volatility and
// convergence > 0.95; EXTREME volatility always forces UNSTABLE_EXTREME.
func AssessDistribution(volatility VolatilityLevel, convergenceRate float64) DistributionFlag {
	if volatility == VolatilityExtreme {
		return DistributionUnstableExtreme
	}
	if (volatility == VolatilityLow || volatility == VolatilityMedium) && convergenceRate > 0.95 {
		return DistributionStable
	}
	return DistributionUnstable
}

// IsNearKeyNumber reports whether spread is within 0.5 of any NFL key
// number (3, 7, 10).
func IsNearKeyNumber(spread float64, keyNumbers []float64) bool {
	abs := math.Abs(spread)
	for _, k := range keyNumbers {
		if math.Abs(abs-k) <= 0.5 {
			return true
		}
	}
	return false
}

// Evaluate runs the full pipeline for one market and returns its
// evaluation. Evaluate never returns an error; missing data or failed
// gates are represented as a NO_PLAY state with a reason code, per the
// error-handling design (NO_PLAY is a valid outcome, not a failure).
func Evaluate(in MarketInputs) Evaluation {
	cfg, ok := sportconfig.Get(in.Sport)
	if !ok {
		return Evaluation{State: StateNoPlay, BlockedReason: ReasonMissingMarketData, BlockedDetail: "unknown sport"}
	}

	if detail, missing := missingRequiredFields(in); missing {
		return Evaluation{State: StateNoPlay, BlockedReason: ReasonMissingMarketData, BlockedDetail: detail}
	}

	compressedProb := Compress(in.RawProbability, cfg.CompressionFactor)
	implied := ImpliedProbability(in.AmericanOdds)

	rawEdge := (in.RawProbability - implied) * 100
	compressedEdge := (compressedProb - implied) * 100

	volatility := ClassifyVolatility(in.StdDev)
	distribution := AssessDistribution(volatility, in.ConvergenceRate)

	thresholds := thresholdsFor(cfg, in.Market)

	isLargeSpread := in.Market == MarketSpread && math.Abs(in.Spread) > cfg.LargeSpreadCutoff
	nearKey := in.Market == MarketSpread && in.Sport == sportconfig.NFL && IsNearKeyNumber(in.Spread, cfg.KeyNumbers)

	state := classify(compressedEdge, thresholds, isLargeSpread, cfg.LargeSpreadEdgeReq)

	eval := Evaluation{
		State:          state,
		RawEdgePct:     rawEdge,
		CompressedEdge: compressedEdge,
		CompressedProb: compressedProb,
		Volatility:     volatility,
		Distribution:   distribution,
		IsLargeSpread:  isLargeSpread,
		NearKeyNumber:  nearKey,
	}

	if reason, detail, blocked := checkEligibility(in, cfg, eval); blocked {
		eval.State = StateNoPlay
		eval.BlockedReason = reason
		eval.BlockedDetail = detail
	}

	return eval
}

func thresholdsFor(cfg sportconfig.Config, market MarketType) sportconfig.MarketThresholds {
	switch market {
	case MarketTotal:
		return cfg.Total
	case MarketSpread, MarketPuckline:
		return cfg.Spread
	default:
		return sportconfig.MarketThresholds{
			EdgeThreshold: cfg.Moneyline.EdgeThreshold,
			LeanMin:       cfg.Moneyline.LeanMin,
		}
	}
}

func classify(compressedEdge float64, t sportconfig.MarketThresholds, isLargeSpread bool, largeSpreadEdgeReq float64) EdgeState {
	required := t.EdgeThreshold
	if isLargeSpread && largeSpreadEdgeReq > required {
		required = largeSpreadEdgeReq
	}

	switch {
	case compressedEdge >= required:
		return StateEdge
	case compressedEdge >= t.LeanMin:
		return StateLean
	default:
		return StateNoPlay
	}
}

// checkEligibility runs the gates in the load-bearing order from the
// reference implementation: confirmations, then instability, then the
// edge-minimum check (already folded into classify's NO_PLAY), then
// spread-size guardrails. The first failing gate wins.
func checkEligibility(in MarketInputs, cfg sportconfig.Config, eval Evaluation) (reason, detail string, blocked bool) {
	if cfg.RequiresPitcherConfirmation && !boolOrFalse(in.PitcherConfirmed) {
		return ReasonPitcherNotConfirmed, "starting pitcher unconfirmed", true
	}
	if cfg.RequiresQBConfirmation && !boolOrFalse(in.QBConfirmed) {
		return ReasonQBNotConfirmed, "starting QB unconfirmed", true
	}
	if cfg.RequiresGoalieConfirmation && !boolOrFalse(in.GoalieConfirmed) {
		return ReasonGoalieNotConfirmed, "starting goalie unconfirmed", true
	}
	if cfg.WeatherSensitive && in.WeatherCertain != nil && !*in.WeatherCertain {
		return ReasonWeatherUncertain, "weather forecast uncertain within window", true
	}

	if eval.Distribution == DistributionUnstableExtreme {
		return ReasonUnstableExtreme, "simulation distribution failed to converge", true
	}

	if eval.State == StateNoPlay {
		return ReasonEdgeBelowThreshold, "compressed edge below lean threshold", true
	}

	if in.Market == MarketSpread {
		max := cfg.MaxDogSpread
		if in.Spread < 0 {
			max = cfg.MaxFavoriteSpread
		}
		if max > 0 && math.Abs(in.Spread) > max {
			return ReasonSpreadTooLargePrefix + formatSpread(in.Spread), "spread outside allowed range", true
		}
	}

	return "", "", false
}

// missingRequiredFields implements step 1 of the pipeline: required fields
// per market type must be present before anything downstream runs.
func missingRequiredFields(in MarketInputs) (detail string, missing bool) {
	if in.RawProbability <= 0 || in.RawProbability >= 1 {
		return "raw probability missing or out of range", true
	}
	if in.AmericanOdds == 0 {
		return "market odds missing", true
	}
	return "", false
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}

func formatSpread(v float64) string {
	return fmt.Sprintf("%.1f", math.Abs(v))
}
