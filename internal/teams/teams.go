// Package teams provides exact, accent-insensitive team-name matching for
// reconciling odds-provider and score-provider event records.
//
// Adapted from pkg/polymarket/sports/teams.go's name-normalization and
// team-registry code. The teacher's FindTeamByName/findBestMatch did fuzzy,
// substring-based matching to resolve ambiguous market questions; that has
// no place here, since the score adapter contract explicitly forbids fuzzy
// matching at runtime and requires an exact name mismatch to raise a
// PROVIDER_MAPPING_DRIFT alert instead of silently guessing. What survives
// is the normalization step (lowercase, strip diacritics, collapse
// whitespace) and the registry shape; the partial-match fallback is gone.
package teams

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Team is one known team identity, keyed by league.
type Team struct {
	ID      string
	Name    string
	League  string
	Aliases []string
}

// Registry resolves provider-reported team names to a canonical Team by
// exact, normalized lookup.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Team
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Team)}
}

// Register adds team under its canonical name and every alias.
func (r *Registry) Register(team Team) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := team
	r.byName[NormalizeName(t.Name)] = &t
	for _, alias := range t.Aliases {
		r.byName[NormalizeName(alias)] = &t
	}
}

// Resolve looks up name by exact normalized match. No fuzzy or partial
// matching is performed; an unresolved name is reported as-is to the
// caller, which is expected to treat it as a mapping-drift candidate.
func (r *Registry) Resolve(name string) (*Team, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[NormalizeName(name)]
	return t, ok
}

// NormalizeName lowercases, strips diacritics, and collapses whitespace so
// that "Boston Celtics" and "boston   celtics" compare equal while still
// requiring the words themselves to match exactly.
func NormalizeName(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, name)
	if err == nil {
		name = normalized
	}

	return strings.Join(strings.Fields(name), " ")
}

// MappingDrift describes a detected team-name mismatch between the
// odds-provider event record and the score-provider result for what is
// assumed to be the same game.
type MappingDrift struct {
	EventHome string
	EventAway string
	ScoreHome string
	ScoreAway string
}

// DetectMappingDrift compares an event's team names against a score
// provider's team names for what is assumed to be the same game. A drift is
// reported unless both sides match by exact normalized name, in either
// orientation (providers do not always agree on home/away).
func DetectMappingDrift(eventHome, eventAway, scoreHome, scoreAway string) (MappingDrift, bool) {
	straight := NormalizeName(eventHome) == NormalizeName(scoreHome) &&
		NormalizeName(eventAway) == NormalizeName(scoreAway)
	swapped := NormalizeName(eventHome) == NormalizeName(scoreAway) &&
		NormalizeName(eventAway) == NormalizeName(scoreHome)

	if straight || swapped {
		return MappingDrift{}, false
	}

	return MappingDrift{
		EventHome: eventHome,
		EventAway: eventAway,
		ScoreHome: scoreHome,
		ScoreAway: scoreAway,
	}, true
}
