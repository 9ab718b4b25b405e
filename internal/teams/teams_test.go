package teams

import "testing"

func TestRegistryResolveExactNormalizedMatch(t *testing.T) {
	r := NewRegistry()
	r.Register(Team{ID: "bos", Name: "Boston Celtics", League: "nba", Aliases: []string{"Celtics"}})

	if _, ok := r.Resolve("boston   celtics"); !ok {
		t.Fatal("expected whitespace-insensitive exact match to resolve")
	}
	if _, ok := r.Resolve("Celtics"); !ok {
		t.Fatal("expected alias to resolve")
	}
	if _, ok := r.Resolve("Boston Celtic"); ok {
		t.Fatal("expected a near-miss name to NOT resolve, fuzzy matching is forbidden")
	}
}

func TestDetectMappingDriftMatchesEitherOrientation(t *testing.T) {
	if _, drift := DetectMappingDrift("Lakers", "Celtics", "Lakers", "Celtics"); drift {
		t.Fatal("expected no drift when names match straight")
	}
	if _, drift := DetectMappingDrift("Lakers", "Celtics", "Celtics", "Lakers"); drift {
		t.Fatal("expected no drift when home/away is swapped but names match")
	}
}

func TestDetectMappingDriftFlagsMismatch(t *testing.T) {
	d, drift := DetectMappingDrift("Lakers", "Celtics", "Lakers", "Warriors")
	if !drift {
		t.Fatal("expected a mismatch to be flagged as drift")
	}
	if d.ScoreAway != "Warriors" {
		t.Fatalf("expected the drift record to carry the mismatched name, got %v", d)
	}
}

func TestNormalizeNameStripsDiacritics(t *testing.T) {
	if NormalizeName("Déportivo") != NormalizeName("Deportivo") {
		t.Fatal("expected diacritic-insensitive normalization")
	}
}
