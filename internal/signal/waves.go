package signal

import (
	"time"

	"github.com/beatvegas/signal-engine/internal/edge"
)

// WaveTiming is when each of the three scheduled sweeps should run for a
// given game, anchored to kickoff/tipoff.
type WaveTiming struct {
	Wave1At time.Time
	Wave2At time.Time
	Wave3At time.Time
}

// CalculateWaveTiming derives the three wave timestamps from game time:
// wave 1 six hours out, wave 2 two hours out, wave 3 one hour out.
func CalculateWaveTiming(gameTime time.Time) WaveTiming {
	return WaveTiming{
		Wave1At: gameTime.Add(-6 * time.Hour),
		Wave2At: gameTime.Add(-120 * time.Minute),
		Wave3At: gameTime.Add(-60 * time.Minute),
	}
}

// stabilityTolerancePct is the maximum drift in compressed edge percentage
// points between wave 1 and wave 2 that still counts as stable.
const stabilityTolerancePct = 1.5

// publishEdgeFloorPct is the minimum compressed edge required to publish at
// wave 3, independent of the sport's own eligibility minimum.
const publishEdgeFloorPct = 3.0

// RecordWaveEvaluation folds a wave's edge evaluation into sig, advancing
// the lifecycle state. wave must be 1, 2, or 3 in order; callers are
// expected to invoke this once per wave per signal.
func (m *Manager) RecordWaveEvaluation(sig *Signal, wave Wave, eval edge.Evaluation, sharpSide string) {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	rec := WaveRecord{
		Wave:              wave,
		CompressedEdgePct: eval.CompressedEdge,
		State:             eval.State,
		Distribution:      eval.Distribution,
		SharpSide:         sharpSide,
		RecordedAt:        m.now(),
	}
	sig.WaveHistory = append(sig.WaveHistory, rec)
	sig.LastEvaluation = &eval
	sig.LastSharpSide = sharpSide

	switch wave {
	case Wave1:
		sig.State = StateValidating
	case Wave2:
		sig.State = wave2Outcome(sig, rec)
	case Wave3:
		sig.State = wave3Outcome(sig, rec)
	}
}

// wave2Outcome applies the stability check: the edge must not have drifted
// by more than stabilityTolerancePct, the edge state must be unchanged,
// and the sharp side must be unchanged.
func wave2Outcome(sig *Signal, wave2 WaveRecord) State {
	wave1, ok := findWave(sig.WaveHistory, Wave1)
	if !ok {
		return StateUnstable
	}

	drift := wave2.CompressedEdgePct - wave1.CompressedEdgePct
	if drift < 0 {
		drift = -drift
	}

	stable := drift <= stabilityTolerancePct &&
		wave2.State == wave1.State &&
		wave2.SharpSide == wave1.SharpSide

	if wave2.Distribution == edge.DistributionUnstableExtreme {
		stable = false
	}

	if stable {
		return StateValidated
	}
	return StateUnstable
}

// wave3Outcome applies the publish gate: the edge state must be EDGE or
// LEAN, the compressed edge must clear the publish floor, the distribution
// must not be UNSTABLE_EXTREME, a sharp side must be set, and wave 2 must
// have left the signal VALIDATED.
func wave3Outcome(sig *Signal, wave3 WaveRecord) State {
	if sig.State != StateValidated {
		return StateNoPlay
	}
	if wave3.State != edge.StateEdge && wave3.State != edge.StateLean {
		return StateNoPlay
	}
	if wave3.CompressedEdgePct < publishEdgeFloorPct {
		return StateNoPlay
	}
	if wave3.Distribution == edge.DistributionUnstableExtreme {
		return StateNoPlay
	}
	if wave3.SharpSide == "" {
		return StateNoPlay
	}

	if wave3.State == edge.StateEdge {
		return StatePick
	}
	return StateLean
}

func findWave(history []WaveRecord, wave Wave) (WaveRecord, bool) {
	for _, r := range history {
		if r.Wave == wave {
			return r, true
		}
	}
	return WaveRecord{}, false
}

// ComputeDelta summarizes the difference between two signals tracking the
// same game and market across waves, for the UI's "what changed" view.
func ComputeDelta(from, to *Signal) Delta {
	d := Delta{
		FromID:       from.SignalID,
		ToID:         to.SignalID,
		StateChanged: from.State != to.State,
		FromState:    from.State,
		ToState:      to.State,
	}

	if len(from.Snapshots) > 0 && len(to.Snapshots) > 0 {
		fromLast := from.Snapshots[len(from.Snapshots)-1]
		toLast := to.Snapshots[len(to.Snapshots)-1]
		d.SpreadLineMoved = toLast.Spread.Line - fromLast.Spread.Line
		d.TotalLineMoved = toLast.Total.Line - fromLast.Total.Line
	}

	if from.LastSharpSide != to.LastSharpSide {
		d.GateChanges = append(d.GateChanges, "sharp_side_changed")
	}
	if fromBlocked, toBlocked := blockedReason(from), blockedReason(to); fromBlocked != toBlocked {
		d.GateChanges = append(d.GateChanges, "eligibility_gate_changed")
	}

	return d
}

func blockedReason(sig *Signal) string {
	if sig.LastEvaluation == nil {
		return ""
	}
	return sig.LastEvaluation.BlockedReason
}

// ComputeRobustness classifies a signal as ROBUST when its wave history
// shows a consistent sharp side and edge state across every recorded wave,
// FRAGILE when it flipped at least once. A signal with fewer than two
// waves recorded has no verdict yet.
func ComputeRobustness(sig *Signal) (Robustness, bool) {
	if len(sig.WaveHistory) < 2 {
		return "", false
	}

	first := sig.WaveHistory[0]
	for _, rec := range sig.WaveHistory[1:] {
		if rec.State != first.State || rec.SharpSide != first.SharpSide {
			return Fragile, true
		}
	}
	return Robust, true
}
