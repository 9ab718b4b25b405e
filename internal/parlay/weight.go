package parlay

import "github.com/beatvegas/signal-engine/internal/edge"

// Weighting penalties applied on top of the base probability/edge/
// confidence blend, documented here rather than buried in the formula.
const (
	volatilityHighPenalty    = 0.15
	volatilityExtremePenalty = 0.30
	unstableDistributionPenalty = 0.20

	weightProbabilityShare = 0.4
	weightEdgeShare        = 0.3
	weightConfidenceShare  = 0.3

	// edgeNormalizationCeiling maps an edge of this many points to a full
	// 1.0 contribution before the weight shares are applied.
	edgeNormalizationCeiling = 10.0
)

// ComputeWeight blends win probability, edge, and confidence into a
// [0,1] parlayWeight, then subtracts penalties for HIGH/EXTREME volatility
// and an unstable distribution.
func ComputeWeight(c Candidate) float64 {
	probComponent := clamp01((c.WinProbability - 0.5) * 2)
	edgeComponent := clamp01(c.EdgePoints / edgeNormalizationCeiling)
	confComponent := clamp01(c.Confidence / 100)

	weight := probComponent*weightProbabilityShare +
		edgeComponent*weightEdgeShare +
		confComponent*weightConfidenceShare

	switch c.VolatilityBand {
	case edge.VolatilityHigh:
		weight -= volatilityHighPenalty
	case edge.VolatilityExtreme:
		weight -= volatilityExtremePenalty
	}
	if !c.DistributionStable {
		weight -= unstableDistributionPenalty
	}

	return clamp01(weight)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
