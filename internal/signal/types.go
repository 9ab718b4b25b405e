// Package signal owns the signal lifecycle state machine: discovery,
// validation, publish, lock, and grade, with append-only market snapshots
// and simulation runs and a frozen entry snapshot once published.
//
// Grounded on original_source/backend/core/signal_lifecycle.py.
package signal

import (
	"time"

	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/beatvegas/signal-engine/internal/sportconfig"
)

// State is one point in the signal lifecycle.
type State string

const (
	StateDiscovered State = "DISCOVERED"
	StateValidating State = "VALIDATING"
	StateValidated  State = "VALIDATED"
	StateUnstable   State = "UNSTABLE"
	StatePublished  State = "PUBLISHED"
	StateWithdrawn  State = "WITHDRAWN"
	StateLocked     State = "LOCKED"
	StateGraded     State = "GRADED"
	StateNoPlay     State = "NO_PLAY"
	StateLean       State = "LEAN"
	StatePick       State = "PICK"
)

// Wave identifies which scheduled sweep produced a snapshot or run.
type Wave int

const (
	Wave1 Wave = 1
	Wave2 Wave = 2
	Wave3 Wave = 3
)

// Intent is the mode a signal was created under.
type Intent string

const (
	IntentTruthMode  Intent = "TRUTH_MODE"
	IntentParlayMode Intent = "PARLAY_MODE"
	IntentB2B        Intent = "B2B"
)

// MarketKey identifies which market a signal tracks.
type MarketKey string

const (
	MarketKeySpread    MarketKey = "SPREAD"
	MarketKeyTotal     MarketKey = "TOTAL"
	MarketKeyMoneyline MarketKey = "MONEYLINE"
	MarketKeyPuckline  MarketKey = "PUCKLINE"
	MarketKeyProp      MarketKey = "PROP"
)

// SpreadLine is one side of a two-way spread market.
type SpreadLine struct {
	Line       float64
	HomePrice  int
	AwayPrice  int
}

// TotalLine is one side of a two-way total market.
type TotalLine struct {
	Line       float64
	OverPrice  int
	UnderPrice int
}

// MoneylineLine is a two-way moneyline market.
type MoneylineLine struct {
	HomePrice int
	AwayPrice int
}

// MarketSnapshot is an immutable record of market prices at an instant.
// Once constructed it must never be mutated; only appended to a Signal.
type MarketSnapshot struct {
	SnapshotID string
	GameID     string
	CapturedAt time.Time
	Wave       Wave
	Book       string
	Spread     SpreadLine
	Total      TotalLine
	Moneyline  MoneylineLine
	Hash       string

	// Deltas vs the previous snapshot on the same signal, computed at
	// append time (zero for the first snapshot).
	SpreadDelta float64
	TotalDelta  float64
}

// SimulationRun is one Monte Carlo pass's output. Append-only.
type SimulationRun struct {
	RunID              string
	GameID             string
	Wave               Wave
	ModelVersion       string
	Seed               int64
	NumSims            int
	WinProbabilities   map[string]float64
	SpreadDistribution map[string]float64
	TotalDistribution  map[string]float64
	ConvergenceRate    float64
	WinProbStdDev      float64
	TotalStdDev        float64
}

// EntrySnapshot is the captured edge price at publish. Immutable once set.
type EntrySnapshot struct {
	SharpSide          string
	MarketType         MarketKey
	EntryLine          *float64
	EntryTotal         *float64
	EntryOdds          int
	MaxAcceptableLine  *float64
	MaxAcceptableTotal *float64
	MaxAcceptableOdds  *int
	CapturedAt         time.Time
	CapturedWave       Wave
}

// Signal is the central aggregate of the lifecycle.
type Signal struct {
	SignalID    string
	GameID      string
	Sport       sportconfig.Sport
	HomeTeam    string
	AwayTeam    string
	GameTime    time.Time
	Intent      Intent
	MarketKey   MarketKey
	State       State
	CreatedAt   time.Time
	PublishedAt *time.Time
	LockedAt    *time.Time
	GradedAt    *time.Time

	Snapshots []MarketSnapshot
	Runs      []SimulationRun
	Entry     *EntrySnapshot

	FreezeUntil  *time.Time
	FreezeReason string

	Result *edge.Result

	LastEvaluation *edge.Evaluation
	LastSharpSide  string

	WaveHistory []WaveRecord
}

// WaveRecord captures what one scheduled wave observed about a signal, so
// the next wave can compare against it for stability.
type WaveRecord struct {
	Wave              Wave
	CompressedEdgePct float64
	State             edge.EdgeState
	Distribution      edge.DistributionFlag
	SharpSide         string
	RecordedAt        time.Time
}

// Delta summarizes the difference between two signals for the same game
// and market, returned by ComputeDelta.
type Delta struct {
	FromID          string
	ToID            string
	StateChanged    bool
	FromState       State
	ToState         State
	SpreadLineMoved float64
	TotalLineMoved  float64
	GateChanges     []string
}

// Robustness is the output of ComputeRobustness.
type Robustness string

const (
	Robust  Robustness = "ROBUST"
	Fragile Robustness = "FRAGILE"
)
