package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/beatvegas/signal-engine/internal/edge"
	"github.com/google/uuid"
)

// ErrIntegrityViolation marks hard lifecycle errors: mutating a locked
// signal, double-publishing with a different entry, or any other attempt
// to violate append-only/immutability guarantees.
var ErrIntegrityViolation = fmt.Errorf("signal lifecycle integrity violation")

const snapshotDedupWindow = time.Hour

// defaultFreezeMinutes is the auto-lock freeze window applied when a
// signal transitions into PICK/LEAN.
const defaultFreezeMinutes = 60

type hashedSnapshot struct {
	snapshot  MarketSnapshot
	expiresAt time.Time
}

// Manager owns signals and their append-only sub-entities, enforcing the
// lifecycle's immutability invariants. Per-signal mutation is serialized
// by a striped lock keyed on signalID, so unrelated games never block each
// other.
type Manager struct {
	now func() time.Time

	mu          sync.Mutex
	signals     map[string]*Signal
	signalLocks map[string]*sync.Mutex
	byHash      map[string]hashedSnapshot
}

// NewManager creates an empty Manager. now may be nil to use time.Now.
func NewManager(now func() time.Time) *Manager {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Manager{
		now:         now,
		signals:     make(map[string]*Signal),
		signalLocks: make(map[string]*sync.Mutex),
		byHash:      make(map[string]hashedSnapshot),
	}
}

func (m *Manager) lockFor(signalID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.signalLocks[signalID]
	if !ok {
		l = &sync.Mutex{}
		m.signalLocks[signalID] = l
	}
	return l
}

// NewSignalID mints a fresh signal identifier. Wave-1 discovery calls this
// once per game candidate before CreateSignal.
func NewSignalID() string {
	return uuid.NewString()
}

// CreateSignal creates a new signal in DISCOVERED state (Wave 1 entry).
func (m *Manager) CreateSignal(signalID, gameID string, intent Intent, marketKey MarketKey) *Signal {
	sig := &Signal{
		SignalID:  signalID,
		GameID:    gameID,
		Intent:    intent,
		MarketKey: marketKey,
		State:     StateDiscovered,
		CreatedAt: m.now(),
	}

	m.mu.Lock()
	m.signals[signalID] = sig
	m.mu.Unlock()

	return sig
}

// Get returns the signal by ID, if present.
func (m *Manager) Get(signalID string) (*Signal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.signals[signalID]
	return s, ok
}

// HashSnapshot computes the content-address used for 1h dedup. It hashes
// every field that defines "the same market capture": game, wave, and the
// three market lines.
func HashSnapshot(gameID string, wave Wave, spread SpreadLine, total TotalLine, ml MoneylineLine) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%.2f|%d|%d|%.2f|%d|%d|%d|%d", gameID, wave,
		spread.Line, spread.HomePrice, spread.AwayPrice,
		total.Line, total.OverPrice, total.UnderPrice,
		ml.HomePrice, ml.AwayPrice)
	return hex.EncodeToString(h.Sum(nil))
}

// CreateMarketSnapshot deduplicates within a 1h window by content hash: if
// an identical capture was already recorded for this hash within the last
// hour, the existing snapshot is returned unchanged; otherwise a new one
// is recorded.
func (m *Manager) CreateMarketSnapshot(snapshotID, gameID string, wave Wave, book string, spread SpreadLine, total TotalLine, ml MoneylineLine) MarketSnapshot {
	hash := HashSnapshot(gameID, wave, spread, total, ml)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byHash[hash]; ok && now.Before(existing.expiresAt) {
		return existing.snapshot
	}

	snap := MarketSnapshot{
		SnapshotID: snapshotID,
		GameID:     gameID,
		CapturedAt: now,
		Wave:       wave,
		Book:       book,
		Spread:     spread,
		Total:      total,
		Moneyline:  ml,
		Hash:       hash,
	}
	m.byHash[hash] = hashedSnapshot{snapshot: snap, expiresAt: now.Add(snapshotDedupWindow)}
	return snap
}

// AddMarketSnapshot appends snap to sig, computing spread/total deltas
// against the previous snapshot (zero for the first one).
func (m *Manager) AddMarketSnapshot(sig *Signal, snap MarketSnapshot) error {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.LockedAt != nil {
		return fmt.Errorf("append snapshot to locked signal %s: %w", sig.SignalID, ErrIntegrityViolation)
	}

	if len(sig.Snapshots) > 0 {
		prev := sig.Snapshots[len(sig.Snapshots)-1]
		snap.SpreadDelta = snap.Spread.Line - prev.Spread.Line
		snap.TotalDelta = snap.Total.Line - prev.Total.Line
	}

	sig.Snapshots = append(sig.Snapshots, snap)
	return nil
}

// AddSimulationRun appends run to sig. Append-only.
func (m *Manager) AddSimulationRun(sig *Signal, run SimulationRun) error {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.LockedAt != nil {
		return fmt.Errorf("append simulation run to locked signal %s: %w", sig.SignalID, ErrIntegrityViolation)
	}

	sig.Runs = append(sig.Runs, run)
	return nil
}

// LockSignalWithEntry transitions sig to PUBLISHED, setting PublishedAt and
// freezing Entry. Idempotent if sig is already PUBLISHED with an
// identical entry; a second call with a different entry is an integrity
// violation, since entry must never change once captured.
func (m *Manager) LockSignalWithEntry(sig *Signal, entry EntrySnapshot) error {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.PublishedAt != nil {
		if sig.Entry != nil && sameEntry(*sig.Entry, entry) {
			return nil
		}
		return fmt.Errorf("re-publish signal %s with a different entry: %w", sig.SignalID, ErrIntegrityViolation)
	}

	now := m.now()
	sig.Entry = &entry
	sig.PublishedAt = &now
	sig.State = StatePublished
	return nil
}

func sameEntry(a, b EntrySnapshot) bool {
	return a.SharpSide == b.SharpSide && a.MarketType == b.MarketType && a.EntryOdds == b.EntryOdds
}

// LockSignalAtGameStart transitions sig to LOCKED. After this, no further
// state transitions are allowed except GradeSignal.
func (m *Manager) LockSignalAtGameStart(sig *Signal) error {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.LockedAt != nil {
		return nil
	}

	now := m.now()
	sig.LockedAt = &now
	sig.State = StateLocked
	return nil
}

// FreezeSignal sets an advisory freeze window that re-simulation logic
// should consult before doing redundant work.
func (m *Manager) FreezeSignal(sig *Signal, minutes int, reason string) {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	until := m.now().Add(time.Duration(minutes) * time.Minute)
	sig.FreezeUntil = &until
	sig.FreezeReason = reason
}

// IsFrozen reports whether sig is currently within its freeze window.
func (m *Manager) IsFrozen(sig *Signal) bool {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	return sig.FreezeUntil != nil && m.now().Before(*sig.FreezeUntil)
}

// ReleaseFreezeOnMaterialMove clears the freeze window early if the market
// has moved by at least the configured threshold since the frozen
// snapshot, per the auto-lock design.
func (m *Manager) ReleaseFreezeOnMaterialMove(sig *Signal, spreadThreshold, totalThreshold float64) {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.FreezeUntil == nil || len(sig.Snapshots) == 0 {
		return
	}

	last := sig.Snapshots[len(sig.Snapshots)-1]
	if abs(last.SpreadDelta) >= spreadThreshold || abs(last.TotalDelta) >= totalThreshold {
		sig.FreezeUntil = nil
		sig.FreezeReason = "released: material market move"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// GradeSignal transitions sig to GRADED with the supplied result. Grading
// is only valid once the signal has been locked at game start.
func (m *Manager) GradeSignal(sig *Signal, result edge.Result) error {
	lock := m.lockFor(sig.SignalID)
	lock.Lock()
	defer lock.Unlock()

	if sig.LockedAt == nil {
		return fmt.Errorf("grade signal %s before lock: %w", sig.SignalID, ErrIntegrityViolation)
	}

	now := m.now()
	sig.GradedAt = &now
	sig.State = StateGraded
	r := result
	sig.Result = &r
	return nil
}

// AutoLockIfQualified applies the default freeze window when a signal
// enters PICK or LEAN, per the auto-lock design note.
func (m *Manager) AutoLockIfQualified(sig *Signal) {
	if sig.State == StatePick || sig.State == StateLean {
		m.FreezeSignal(sig, defaultFreezeMinutes, "auto-lock on qualification")
	}
}
