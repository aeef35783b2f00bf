package neighbor

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Similarity computes symmetric scores between node ids. Implementations
// typically read backing vectors from storage, so Score can fail; errors
// are wrapped with "similarity lookup failed" where the core calls the
// provider, and each enclosing operation adds its own context with %w,
// so the original error stays reachable through errors.Is.
type Similarity interface {
	// Score returns the similarity between a and b. Implementations must
	// be symmetric: Score(a, b) == Score(b, a).
	Score(a, b int32) (float32, error)

	// ScoreProvider returns a function bound to anchor a, intended for
	// single-threaded reuse across one pruning pass via ScoreCache.Get.
	ScoreProvider(a int32) func(b int32) (float32, error)
}

// HashSimilarity is a deterministic, storage-free Similarity used by
// tests and the bench harness in place of a real vector index. It
// derives a symmetric score in [0, 1) from the xxhash digest of the
// unordered pair of node ids, so the same two ids always produce the
// same score regardless of argument order.
type HashSimilarity struct{}

// NewHashSimilarity returns a ready-to-use synthetic similarity source.
func NewHashSimilarity() *HashSimilarity { return &HashSimilarity{} }

// Score implements Similarity.
func (h *HashSimilarity) Score(a, b int32) (float32, error) {
	return hashScore(a, b), nil
}

// ScoreProvider implements Similarity.
func (h *HashSimilarity) ScoreProvider(a int32) func(int32) (float32, error) {
	return func(b int32) (float32, error) {
		return hashScore(a, b), nil
	}
}

func hashScore(a, b int32) float32 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(lo))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(hi))
	digest := xxhash.Sum64(buf[:])
	return float32(digest%1_000_000) / 1_000_000
}
