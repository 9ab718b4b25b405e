package edge

// EvaluateTotal runs the edge pipeline for both sides of a total market and
// returns whichever side the model actually favors, mirroring
// original_source/backend/core/nfl_calibration.py's calculate_total_edge:
// the over side is scored from in.RawProbability/in.AmericanOdds as usual,
// the under side from its complement (1-RawProbability) against underOdds,
// and the side with the higher compressed edge wins the direct comparison
// (the over side must be strictly larger; a tie goes to the under side).
// Volatility, distribution, and eligibility gates run once per side inside
// Evaluate, so the returned Evaluation already reflects whichever side was
// selected.
func EvaluateTotal(in MarketInputs, underOdds int) (Evaluation, Side) {
	over := in
	over.Market = MarketTotal
	overEval := Evaluate(over)

	under := in
	under.Market = MarketTotal
	under.RawProbability = 1 - in.RawProbability
	under.AmericanOdds = underOdds
	underEval := Evaluate(under)

	if overEval.CompressedEdge > underEval.CompressedEdge {
		return overEval, SideOver
	}
	return underEval, SideUnder
}
