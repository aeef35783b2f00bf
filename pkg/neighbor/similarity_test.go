package neighbor

import "testing"

func TestHashSimilarityIsSymmetric(t *testing.T) {
	h := NewHashSimilarity()
	forward, err := h.Score(7, 13)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := h.Score(13, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if forward != backward {
		t.Fatalf("expected symmetric score, got %v vs %v", forward, backward)
	}
}

func TestHashSimilarityIsDeterministic(t *testing.T) {
	h := NewHashSimilarity()
	a, _ := h.Score(1, 2)
	b, _ := h.Score(1, 2)
	if a != b {
		t.Fatalf("expected deterministic score, got %v vs %v", a, b)
	}
}

func TestHashSimilarityScoreProviderMatchesScore(t *testing.T) {
	h := NewHashSimilarity()
	direct, _ := h.Score(4, 9)
	bound := h.ScoreProvider(4)
	viaProvider, err := bound(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if direct != viaProvider {
		t.Fatalf("expected ScoreProvider to match Score, got %v vs %v", viaProvider, direct)
	}
}
