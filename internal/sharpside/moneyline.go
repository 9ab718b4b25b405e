package sharpside

// MoneylineSelection is the sharp-side record for a moneyline market.
type MoneylineSelection struct {
	Action           Action
	SharpSideDisplay string
}

// SelectMoneyline picks the team with the higher compressed win
// probability. homeWinProb/awayWinProb must already be compressed
// (edge.Compress); like SelectTotal, this is a plain comparator mirroring
// the reference select_sharp_side_moneyline.
func SelectMoneyline(homeTeam, awayTeam string, homeWinProb, awayWinProb float64) MoneylineSelection {
	if homeWinProb >= awayWinProb {
		return MoneylineSelection{Action: ActionMoneyline, SharpSideDisplay: homeTeam}
	}
	return MoneylineSelection{Action: ActionMoneyline, SharpSideDisplay: awayTeam}
}
