package neighbor

import (
	"errors"
	"testing"
)

func TestScoreCacheMemoizes(t *testing.T) {
	calls := 0
	provider := func(b int32) (float32, error) {
		calls++
		return float32(b), nil
	}
	cache := NewScoreCache()

	v, err := cache.Get(1, 2, provider)
	if err != nil || v != 2 {
		t.Fatalf("unexpected first Get: v=%v err=%v", v, err)
	}
	v, err = cache.Get(1, 2, provider)
	if err != nil || v != 2 {
		t.Fatalf("unexpected second Get: v=%v err=%v", v, err)
	}
	if calls != 1 {
		t.Fatalf("expected provider called once, got %d", calls)
	}
}

func TestScoreCacheIsAsymmetricByAnchor(t *testing.T) {
	cache := NewScoreCache()
	aProvider := func(b int32) (float32, error) { return 1.0, nil }
	bProvider := func(b int32) (float32, error) { return 2.0, nil }

	v1, _ := cache.Get(1, 2, aProvider)
	v2, _ := cache.Get(2, 1, bProvider)
	if v1 == v2 {
		t.Fatalf("expected (1,2) and (2,1) to be distinct cache entries, both got %v", v1)
	}
}

func TestScoreCachePropagatesProviderError(t *testing.T) {
	boom := errors.New("boom")
	cache := NewScoreCache()
	_, err := cache.Get(1, 2, func(b int32) (float32, error) { return 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected provider error to propagate, got %v", err)
	}
}
