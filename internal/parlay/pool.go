package parlay

// Looser thresholds applied to the "parlay pool" in PARLAY mode, distinct
// from the strict Truth Mode gates the signal lifecycle already applied.
const (
	parlayPoolMinProbability = 0.53
	parlayPoolMinEdge        = 1.5
	parlayPoolMinConfidence  = 50.0
	parlayPoolMaxVarianceZ   = 2.5
)

// BuildCandidatePool filters raw candidates down to the ones eligible for
// this parlay mode and market configuration, then computes each survivor's
// parlay weight. Data Integrity and Model Validity gates are assumed to
// have already run upstream (on the edge evaluation that produced each
// candidate); this stage only applies parlay-specific filters.
func BuildCandidatePool(mode Mode, candidates []Candidate, opts PoolOptions) []Candidate {
	pool := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		if !passesModeGate(mode, c) {
			continue
		}
		if !passesMarketFilter(c, opts) {
			continue
		}
		c.ParlayWeight = ComputeWeight(c)
		c.ParlayEligible = c.ParlayWeight >= MinParlayWeight
		pool = append(pool, c)
	}

	return pool
}

func passesModeGate(mode Mode, c Candidate) bool {
	switch mode {
	case ModeStrict:
		return c.StrictState == StrictStatePick && c.CanParlay
	case ModeParlay:
		return c.WinProbability >= parlayPoolMinProbability &&
			c.EdgePoints >= parlayPoolMinEdge &&
			c.Confidence >= parlayPoolMinConfidence &&
			c.VarianceZScore <= parlayPoolMaxVarianceZ
	default:
		return false
	}
}

func passesMarketFilter(c Candidate, opts PoolOptions) bool {
	if opts.DFSMode {
		return c.IsProp && propIntegrityOK(c)
	}
	if c.IsProp {
		return opts.IncludeProps && propIntegrityOK(c)
	}
	return opts.IncludeGameLines
}

func propIntegrityOK(c Candidate) bool {
	return c.PlayerStatusOK && !c.RiskBandHigh
}
