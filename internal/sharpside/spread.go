// Package sharpside implements the "sharp side" selection algorithm for
// spread, total, and moneyline markets: given the evaluator's output and
// current market prices, decide which side of the market the model
// actually favors and how to act on it.
//
// Grounded on original_source/backend/core/sharp_side_selection.py, the
// canonical "LOCKED DEFINITION" reference for the spread rule, including
// the favorite_sharp guard (see DESIGN.md Open Question #1: the guard is
// kept).
package sharpside

import (
	"fmt"
	"math"

	"github.com/beatvegas/signal-engine/internal/edge"
)

// Action is what to do with the sharp side once selected.
type Action string

const (
	ActionLayPoints     Action = "LAY_POINTS"
	ActionTakePoints    Action = "TAKE_POINTS"
	ActionTakePointsLive Action = "TAKE_POINTS_LIVE"
	ActionOver          Action = "OVER"
	ActionUnder         Action = "UNDER"
	ActionMoneyline     Action = "ML"
	ActionNone          Action = "NONE"
)

const noSharpPlay = "NO_SHARP_PLAY"

// Volatility penalties subtracted from edge magnitude for live-only
// recommendations (TAKE_POINTS_LIVE) and, at EXTREME only, for pregame dog
// recommendations (TAKE_POINTS). Favorite-sharp (LAY_POINTS) never pays a
// penalty.
var livePenalty = map[edge.VolatilityLevel]float64{
	edge.VolatilityLow:     0.5,
	edge.VolatilityMedium:  1.0,
	edge.VolatilityHigh:    2.0,
	edge.VolatilityExtreme: 3.0,
}

const pregameExtremePenalty = 1.0

// Selection is the record returned for a spread market.
type Selection struct {
	SharpSide        string // team name, or NO_SHARP_PLAY; see SharpSideDisplay for "Knicks -5.5"
	Action           Action
	MarketSpread     float64 // market's favorite-perspective spread (negative)
	ModelSpread      float64 // signed, underdog's perspective
	MarketFavorite   string
	MarketUnderdog   string
	EdgeMagnitude    float64
	VolatilityPenalty float64
	EdgeAfterPenalty float64
	MarketDisplay    string
	ModelDisplay     string
	SharpSideDisplay string
	Reasoning        string
}

// SelectSpread implements the locked spread sharp-side definition.
//
//   - marketSpreadHome is the home team's posted spread (negative if home
//     favored).
//   - modelSpread is signed from the underdog's perspective: positive
//     means the model thinks the underdog covers by that many points.
//   - homeIsFavorite tells us which display label is the favorite.
func SelectSpread(homeTeam, awayTeam string, marketSpreadHome, modelSpread float64, homeIsFavorite bool, volatility edge.VolatilityLevel) Selection {
	favoriteTeam, underdogTeam := homeTeam, awayTeam
	marketFavoriteSpread := marketSpreadHome
	if !homeIsFavorite {
		favoriteTeam, underdogTeam = awayTeam, homeTeam
		marketFavoriteSpread = -marketSpreadHome
	}
	marketUnderdogSpread := -marketFavoriteSpread // always positive

	modelSpreadNormalized := math.Abs(modelSpread)

	favoriteSharp := false
	if marketFavoriteSpread <= -3.0 {
		modelFavoriteSpread := -modelSpread // favorite's perspective
		favoriteSharp = modelFavoriteSpread < marketFavoriteSpread-3.0
	}

	sel := Selection{
		MarketSpread:   marketFavoriteSpread,
		ModelSpread:    modelSpread,
		MarketFavorite: favoriteTeam,
		MarketUnderdog: underdogTeam,
	}

	switch {
	case favoriteSharp:
		edgeMagnitude := math.Abs(marketFavoriteSpread - (-modelSpread))
		sel.Action = ActionLayPoints
		sel.SharpSide = favoriteTeam
		sel.EdgeMagnitude = edgeMagnitude
		sel.VolatilityPenalty = 0
		sel.EdgeAfterPenalty = edgeMagnitude
		sel.Reasoning = "market severely underprices the favorite"

	case modelSpreadNormalized < marketUnderdogSpread:
		edgeMagnitude := marketUnderdogSpread - modelSpreadNormalized
		penalty := 0.0
		if volatility == edge.VolatilityExtreme {
			penalty = pregameExtremePenalty
		}
		sel.Action = ActionTakePoints
		sel.SharpSide = underdogTeam
		sel.EdgeMagnitude = edgeMagnitude
		sel.VolatilityPenalty = penalty
		sel.EdgeAfterPenalty = edgeMagnitude - penalty
		sel.Reasoning = "market is generous to the underdog"

	case modelSpreadNormalized > marketUnderdogSpread:
		edgeMagnitude := modelSpreadNormalized - marketUnderdogSpread
		penalty := livePenalty[volatility]
		sel.Action = ActionTakePointsLive
		sel.SharpSide = underdogTeam
		sel.EdgeMagnitude = edgeMagnitude
		sel.VolatilityPenalty = penalty
		sel.EdgeAfterPenalty = edgeMagnitude - penalty
		sel.Reasoning = "market is shorting the underdog; entry deferred to live market"

	default:
		sel.Action = ActionNone
		sel.SharpSide = noSharpPlay
		sel.Reasoning = "model and market agree exactly"
	}

	if sel.Action != ActionNone && sel.EdgeAfterPenalty <= 0 {
		sel.Action = ActionNone
		sel.SharpSide = noSharpPlay
		sel.Reasoning = "edge fully consumed by volatility penalty"
	}

	sel.MarketDisplay = formatSpreadDisplay(underdogTeam, marketUnderdogSpread)
	sel.ModelDisplay = formatSpreadDisplay(underdogTeam, modelSpread)
	if sel.Action == ActionLayPoints {
		sel.SharpSideDisplay = formatSpreadDisplay(favoriteTeam, marketFavoriteSpread)
	} else if sel.SharpSide != noSharpPlay && sel.SharpSide != "" {
		sel.SharpSideDisplay = formatSpreadDisplay(underdogTeam, marketUnderdogSpread)
	} else {
		sel.SharpSideDisplay = noSharpPlay
	}

	return sel
}

func formatSpreadDisplay(team string, spread float64) string {
	if spread >= 0 {
		return fmt.Sprintf("%s +%.1f", team, spread)
	}
	return fmt.Sprintf("%s %.1f", team, spread)
}

// ValidateAlignment enforces the alignment invariant: EDGE/LEAN states must
// carry a real sharp side; NO_PLAY must not. Violations are integrity
// errors, not domain outcomes, and the caller must refuse to publish.
func ValidateAlignment(state edge.EdgeState, sel Selection) error {
	hasSharpSide := sel.Action != ActionNone && sel.SharpSide != noSharpPlay && sel.SharpSide != ""

	switch state {
	case edge.StateEdge, edge.StateLean:
		if !hasSharpSide {
			return fmt.Errorf("sharp side alignment: %s classified but no sharp side selected: %w", state, ErrIntegrityViolation)
		}
	case edge.StateNoPlay:
		if hasSharpSide {
			return fmt.Errorf("sharp side alignment: NO_PLAY classified but sharp side %q selected: %w", sel.SharpSide, ErrIntegrityViolation)
		}
	}
	return nil
}
