package parlay

import (
	"fmt"
	"sort"

	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/google/uuid"
)

// Fallback step codes, in the order the ladder can emit them.
const (
	StepInitialAttempt      = "INITIAL_ATTEMPT"
	StepFallbackToBalanced  = "FALLBACK_TO_BALANCED"
	StepEnableHigherRiskLegs = "ENABLE_HIGHER_RISK_LEGS"
	StepFallbackToHighVol   = "FALLBACK_TO_HIGH_VOL"
	StepDecrementLegCount   = "DECREMENT_LEG_COUNT"

	FailureExhaustedNoValidLegs = "FALLBACK_EXHAUSTED_NO_VALID_LEGS"

	minLegCount = 3
)

type profileConstraints struct {
	minWinProbability float64
	maxHighVolLegs    int
	maxUnstableLegs   int
	maxPropLegs       int
}

var constraintsByProfile = map[Profile]profileConstraints{
	ProfileHighConfidence: {minWinProbability: 0.60, maxHighVolLegs: 0, maxUnstableLegs: 0, maxPropLegs: 1},
	ProfileBalanced:       {minWinProbability: 0.55, maxHighVolLegs: 1, maxUnstableLegs: 1, maxPropLegs: 2},
	ProfileHighVolatility: {minWinProbability: 0.50, maxHighVolLegs: 3, maxUnstableLegs: 2, maxPropLegs: 3},
}

// AuditEntry records one attempted rung of the fallback ladder, successful
// or not, so the whole attempt sequence can be replayed from the store —
// not just the terminal result.
type AuditEntry struct {
	AttemptID   string
	Step        string
	Profile     Profile
	LegCount    int
	IncludeLean bool
	Success     bool
}

// Result is the outcome of GenerateParlay.
type Result struct {
	Success bool

	UsedProfile  Profile
	UsedLegCount int
	Legs         []Candidate

	PortfolioScore     float64
	ExpectedHitRate    float64
	ExpectedValueProxy float64

	FallbackSteps []string
	Audit         []AuditEntry
	FailureCode   string
}

// GenerateParlay runs the fallback ladder against pool: try the requested
// profile and leg count, then progressively relax (downgrade from
// HIGH_CONFIDENCE to BALANCED, admit LEAN legs, downgrade to
// HIGH_VOLATILITY, decrement leg count down to a floor of 3), trying the
// full ladder again at each leg count. It only reports failure when the
// floor is reached with nothing viable.
func GenerateParlay(pool []Candidate, requestedProfile Profile, requestedLegCount int, opts PoolOptions) Result {
	runID := uuid.NewString()
	attempt := 0
	var steps []string
	var audit []AuditEntry

	record := func(code string, profile Profile, legCount int, includeLean, success bool) {
		attempt++
		audit = append(audit, AuditEntry{
			AttemptID:   fmt.Sprintf("%s-%d", runID, attempt),
			Step:        code,
			Profile:     profile,
			LegCount:    legCount,
			IncludeLean: includeLean,
			Success:     success,
		})
		if code != StepInitialAttempt {
			steps = append(steps, code)
		}
	}

	for legCount := requestedLegCount; legCount >= minLegCount; legCount-- {
		profile := requestedProfile
		includeLean := false

		legs, ok := tryBuild(pool, profile, legCount, includeLean, opts)
		record(StepInitialAttempt, profile, legCount, includeLean, ok)
		if ok {
			return finish(legs, profile, legCount, steps, audit)
		}

		if requestedProfile == ProfileHighConfidence {
			profile = ProfileBalanced
			legs, ok = tryBuild(pool, profile, legCount, includeLean, opts)
			record(StepFallbackToBalanced, profile, legCount, includeLean, ok)
			if ok {
				return finish(legs, profile, legCount, steps, audit)
			}
		}

		includeLean = true
		legs, ok = tryBuild(pool, profile, legCount, includeLean, opts)
		record(StepEnableHigherRiskLegs, profile, legCount, includeLean, ok)
		if ok {
			return finish(legs, profile, legCount, steps, audit)
		}

		profile = ProfileHighVolatility
		legs, ok = tryBuild(pool, profile, legCount, includeLean, opts)
		record(StepFallbackToHighVol, profile, legCount, includeLean, ok)
		if ok {
			return finish(legs, profile, legCount, steps, audit)
		}

		if legCount > minLegCount {
			record(StepDecrementLegCount, profile, legCount-1, includeLean, false)
		}
	}

	return Result{Success: false, FallbackSteps: steps, Audit: audit, FailureCode: FailureExhaustedNoValidLegs}
}

func finish(legs []Candidate, profile Profile, legCount int, steps []string, audit []AuditEntry) Result {
	probs := make([]float64, len(legs))
	var weightSum, edgeSum float64
	for i, l := range legs {
		probs[i] = l.WinProbability
		weightSum += l.ParlayWeight
		edgeSum += l.EdgePoints
	}

	hitRate := CombinedProbability(probs, AverageCorrelation(legs))
	avgEdge := 0.0
	if len(legs) > 0 {
		avgEdge = edgeSum / float64(len(legs))
	}

	return Result{
		Success:             true,
		UsedProfile:         profile,
		UsedLegCount:        legCount,
		Legs:                legs,
		PortfolioScore:      weightSum,
		ExpectedHitRate:     hitRate,
		ExpectedValueProxy:  avgEdge * hitRate,
		FallbackSteps:       steps,
		Audit:               audit,
	}
}

func tryBuild(pool []Candidate, profile Profile, legCount int, includeLean bool, opts PoolOptions) ([]Candidate, bool) {
	c := constraintsByProfile[profile]

	eligible := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		if !cand.ParlayEligible {
			continue
		}
		if !includeLean && cand.StrictState == StrictStateLean {
			continue
		}
		if cand.WinProbability < c.minWinProbability {
			continue
		}
		eligible = append(eligible, cand)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ParlayWeight > eligible[j].ParlayWeight
	})

	selected := diversify(eligible, legCount, opts, c)
	if len(selected) < legCount {
		return nil, false
	}
	return selected, true
}

func diversify(candidates []Candidate, legCount int, opts PoolOptions, c profileConstraints) []Candidate {
	selected := make([]Candidate, 0, legCount)
	seenEvents := make(map[string]bool)
	seenSports := make(map[string]bool)
	highVol, unstable, props := 0, 0, 0

	for _, cand := range candidates {
		if len(selected) == legCount {
			break
		}
		if !opts.AllowSameGame && seenEvents[cand.EventID] {
			continue
		}
		if !opts.AllowCrossSport && len(seenSports) > 0 && !seenSports[cand.Sport] {
			continue
		}

		isHighVol := cand.VolatilityBand == edge.VolatilityHigh || cand.VolatilityBand == edge.VolatilityExtreme
		if isHighVol {
			if highVol >= c.maxHighVolLegs {
				continue
			}
		}
		if !cand.DistributionStable {
			if unstable >= c.maxUnstableLegs {
				continue
			}
		}
		if cand.IsProp {
			if props >= c.maxPropLegs {
				continue
			}
		}

		selected = append(selected, cand)
		seenEvents[cand.EventID] = true
		seenSports[cand.Sport] = true
		if isHighVol {
			highVol++
		}
		if !cand.DistributionStable {
			unstable++
		}
		if cand.IsProp {
			props++
		}
	}

	return selected
}
