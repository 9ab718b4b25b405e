package sharpside

import "fmt"

// TotalSelection is the sharp-side record for a total (over/under) market.
type TotalSelection struct {
	Action           Action
	SharpSideDisplay string
}

// SelectTotal picks OVER or UNDER by whichever side has the higher
// compressed probability. overProb/underProb must already be compressed
// (edge.Compress) — this is a plain comparator, same as the reference
// select_sharp_side_total, which receives compressed probabilities from
// the edge-calculation step rather than compressing them itself. No
// volatility penalty beyond the standard distribution flag applies to
// totals.
func SelectTotal(line, overProb, underProb float64) TotalSelection {
	if overProb >= underProb {
		return TotalSelection{Action: ActionOver, SharpSideDisplay: fmt.Sprintf("Over %.1f", line)}
	}
	return TotalSelection{Action: ActionUnder, SharpSideDisplay: fmt.Sprintf("Under %.1f", line)}
}
