package neighbor

import (
	"fmt"
	"sync/atomic"

	"github.com/latticeforge/neighborset/pkg/logging"
	"github.com/latticeforge/neighborset/pkg/metrics"
)

// NeighborReader is the read-only view over a descending-or-ascending
// score array that insertDiverse and MergeCandidates consume. Both
// NeighborArray and ConcurrentNeighborArray satisfy it, as does any
// candidate list an HNSW builder assembles during a search.
type NeighborReader interface {
	Size() int
	Node(i int) int32
	Score(i int) float32
	Descending() bool
}

// Option configures optional, invariant-preserving extras on a
// ConcurrentNeighborSet. Neither option changes any pruning outcome;
// they only add observability hooks around the CAS retry loop.
type Option func(*ConcurrentNeighborSet)

// WithLogger attaches a logger that records CAS retries and per-sweep
// diversity acceptance counts at debug level.
func WithLogger(l *logging.Logger) Option {
	return func(s *ConcurrentNeighborSet) { s.logger = l }
}

// WithMetrics attaches a collector that counts CAS retries, diversity
// rejections and backlink fan-out.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *ConcurrentNeighborSet) { s.metrics = m }
}

// ConcurrentNeighborSet is the lock-free adjacency list for a single
// node at a single graph layer. Readers always see a fully-formed
// ConcurrentNeighborArray snapshot; writers race via compare-and-swap
// on an atomic pointer, retrying on contention rather than blocking.
type ConcurrentNeighborSet struct {
	nodeID         int32
	maxConnections int
	alpha          float64
	similarity     Similarity

	neighbors atomic.Pointer[ConcurrentNeighborArray]

	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewConcurrentNeighborSet creates an empty set for nodeID. alpha is
// clamped up to 1.0, the strictest (most selective) diversity setting;
// values above 1.0 relax the RNG rule to admit more neighbors.
func NewConcurrentNeighborSet(nodeID int32, maxConnections int, similarity Similarity, alpha float64, opts ...Option) *ConcurrentNeighborSet {
	if alpha < 1.0 {
		alpha = 1.0
	}
	s := &ConcurrentNeighborSet{
		nodeID:         nodeID,
		maxConnections: maxConnections,
		alpha:          alpha,
		similarity:     similarity,
	}
	s.neighbors.Store(NewConcurrentNeighborArray(maxConnections, true))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NodeID returns the id of the node this set is attached to.
func (s *ConcurrentNeighborSet) NodeID() int32 { return s.nodeID }

// MaxConnections returns the configured connection budget M.
func (s *ConcurrentNeighborSet) MaxConnections() int { return s.maxConnections }

// Alpha returns the configured diversity relaxation factor.
func (s *ConcurrentNeighborSet) Alpha() float64 { return s.alpha }

// GetCurrent returns the currently published snapshot. The returned
// array must be treated as read-only; it may be concurrently shared
// with other readers and a future writer's Copy().
func (s *ConcurrentNeighborSet) GetCurrent() *ConcurrentNeighborArray { return s.neighbors.Load() }

// Size returns the number of neighbors in the current snapshot.
func (s *ConcurrentNeighborSet) Size() int { return s.neighbors.Load().Size() }

// Contains reports whether nodeID is present in the current snapshot.
// It is a linear scan; it exists for tests and small diagnostics, not
// hot-path lookups.
func (s *ConcurrentNeighborSet) Contains(nodeID int32) bool {
	arr := s.neighbors.Load()
	for i := 0; i < arr.Size(); i++ {
		if arr.Node(i) == nodeID {
			return true
		}
	}
	return false
}

// NodeIterator returns the node ids of the current snapshot, best
// (highest score) first.
func (s *ConcurrentNeighborSet) NodeIterator() []int32 {
	arr := s.neighbors.Load()
	ids := make([]int32, arr.Size())
	for i := range ids {
		ids[i] = arr.Node(i)
	}
	return ids
}

// Copy returns a new set sharing the current snapshot. The new set
// only diverges from s once either one is next mutated, since mutation
// always starts from a fresh Copy() of the snapshot it observed.
func (s *ConcurrentNeighborSet) Copy() *ConcurrentNeighborSet {
	cp := &ConcurrentNeighborSet{
		nodeID:         s.nodeID,
		maxConnections: s.maxConnections,
		alpha:          s.alpha,
		similarity:     s.similarity,
		logger:         s.logger,
		metrics:        s.metrics,
	}
	cp.neighbors.Store(s.neighbors.Load())
	return cp
}

// update runs mutate against a private copy of the current snapshot and
// publishes it via CAS, retrying on contention until it wins the race.
func (s *ConcurrentNeighborSet) update(mutate func(next *ConcurrentNeighborArray) error) error {
	for {
		current := s.neighbors.Load()
		next := current.Copy()
		if err := mutate(next); err != nil {
			return err
		}
		if s.neighbors.CompareAndSwap(current, next) {
			return nil
		}
		if s.metrics != nil {
			s.metrics.Counter("neighborset.cas_retries", 1)
		}
		if s.logger != nil {
			s.logger.Debug("neighborset: CAS retry on node %d", s.nodeID)
		}
	}
}

// Insert adds neighborID at score, then prunes back to MaxConnections
// under the strict (alpha=1.0) diversity rule if the insert pushed the
// set over budget. It fails with ErrSelfLoop if neighborID == NodeID().
func (s *ConcurrentNeighborSet) Insert(neighborID int32, score float32) error {
	return s.InsertWithAlpha(neighborID, score, 1.0)
}

// InsertWithAlpha behaves like Insert but prunes under the given alpha
// instead of the strict default.
func (s *ConcurrentNeighborSet) InsertWithAlpha(neighborID int32, score float32, alpha float64) error {
	if neighborID == s.nodeID {
		return ErrSelfLoop
	}
	err := s.update(func(next *ConcurrentNeighborArray) error {
		next.InsertSorted(neighborID, score)
		return enforceMaxConnLimit(next, s.maxConnections, s.similarity, alpha, nil)
	})
	if err != nil {
		return fmt.Errorf("neighbor: insert into node %d: %w", s.nodeID, err)
	}
	return nil
}

// InsertDiverse selects a diverse subset of candidates under the set's
// alpha-relaxed RNG rule, splices the survivors into the current
// snapshot, and performs one final strict (alpha=1.0) prune back to
// MaxConnections, all inside a single CAS update.
func (s *ConcurrentNeighborSet) InsertDiverse(candidates NeighborReader) error {
	err := s.update(func(next *ConcurrentNeighborArray) error {
		cache := NewScoreCache()
		selected, err := s.selectDiverse(candidates, cache)
		if err != nil {
			return err
		}
		for _, sel := range selected {
			next.InsertSorted(sel.node, sel.score)
		}
		return enforceMaxConnLimit(next, s.maxConnections, s.similarity, 1.0, cache)
	})
	if err != nil {
		return fmt.Errorf("neighbor: insertDiverse into node %d: %w", s.nodeID, err)
	}
	return nil
}

// Backlink inserts s's node into every current neighbor's own set at
// the same score, giving the graph reciprocal edges. neighborhoodOf
// resolves a node id to its set; a nil result is skipped. Each child
// insert is independently atomic — no cross-neighbor atomicity is
// provided or required.
func (s *ConcurrentNeighborSet) Backlink(neighborhoodOf func(nodeID int32) *ConcurrentNeighborSet) error {
	arr := s.neighbors.Load()
	for i := 0; i < arr.Size(); i++ {
		nbr := arr.Node(i)
		score := arr.Score(i)
		target := neighborhoodOf(nbr)
		if target == nil {
			continue
		}
		if err := target.Insert(s.nodeID, score); err != nil {
			return fmt.Errorf("neighbor: backlink from %d to %d: %w", s.nodeID, nbr, err)
		}
		if s.metrics != nil {
			s.metrics.Counter("neighborset.backlink_fanout", 1)
		}
	}
	return nil
}

type selection struct {
	node  int32
	score float32
}

// selectDiverse runs the alpha ladder from 1.0 up to s.alpha in steps
// of 0.2, using an integer step counter so the ladder's stopping point
// never drifts from repeated float addition. Within each sweep it walks
// candidates worst-to-best, admitting any not-yet-selected candidate
// that is diverse with respect to the candidates already selected.
func (s *ConcurrentNeighborSet) selectDiverse(candidates NeighborReader, cache *ScoreCache) ([]selection, error) {
	n := candidates.Size()
	selected := make([]bool, n)
	var result []selection

	for step := 0; ; step++ {
		a := 1.0 + 0.2*float64(step)
		if a > s.alpha {
			a = s.alpha
		}
		accepted := 0
		for i := n - 1; i >= 0; i-- {
			if selected[i] {
				continue
			}
			diverse, err := s.isDiverse(candidates, i, selected, a, cache)
			if err != nil {
				return nil, err
			}
			if !diverse {
				continue
			}
			selected[i] = true
			accepted++
			result = append(result, selection{candidates.Node(i), candidates.Score(i)})
			if len(result) >= s.maxConnections {
				if s.logger != nil {
					s.logger.Debug("neighborset: node %d diversity sweep alpha=%.1f accepted=%d", s.nodeID, a, accepted)
				}
				return result, nil
			}
		}
		if s.logger != nil {
			s.logger.Debug("neighborset: node %d diversity sweep alpha=%.1f accepted=%d", s.nodeID, a, accepted)
		}
		if a >= s.alpha {
			break
		}
	}
	return result, nil
}

// isDiverse reports whether candidate i is diverse with respect to the
// already-selected candidates in selected, under the given alpha: it is
// diverse iff similarity(c, e) <= score(c)*alpha for every selected e.
func (s *ConcurrentNeighborSet) isDiverse(candidates NeighborReader, i int, selected []bool, alpha float64, cache *ScoreCache) (bool, error) {
	c := candidates.Node(i)
	threshold := candidates.Score(i) * float32(alpha)
	provider := s.similarity.ScoreProvider(c)

	for j := 0; j < candidates.Size(); j++ {
		if j == i || !selected[j] {
			continue
		}
		e := candidates.Node(j)
		if e == c {
			// A candidate list should never repeat a node id, but if one
			// does we skip the self-comparison rather than reject the
			// candidate outright. See DESIGN.md for the open question.
			continue
		}
		sim, err := cache.Get(c, e, provider)
		if err != nil {
			return false, fmt.Errorf("neighbor: similarity lookup failed: %w", err)
		}
		if sim > threshold {
			if s.metrics != nil {
				s.metrics.Counter("neighborset.diversity_rejected", 1)
			}
			return false, nil
		}
	}
	return true, nil
}

// enforceMaxConnLimit repeatedly removes the least diverse entry from
// arr until its size is within maxConnections.
func enforceMaxConnLimit(arr *ConcurrentNeighborArray, maxConnections int, similarity Similarity, alpha float64, cache *ScoreCache) error {
	if cache == nil {
		cache = NewScoreCache()
	}
	for arr.Size() > maxConnections {
		if err := removeLeastDiverse(arr, similarity, alpha, cache); err != nil {
			return err
		}
	}
	return nil
}

// removeLeastDiverse walks arr worst-to-best looking for an entry e1
// dominated by a better entry e2 (similarity(e1, e2) > score(e1)*alpha)
// and removes e1. If no entry is dominated, it falls back to removing
// the single worst (last) entry so the array still shrinks.
func removeLeastDiverse(arr *ConcurrentNeighborArray, similarity Similarity, alpha float64, cache *ScoreCache) error {
	for i := arr.Size() - 1; i >= 1; i-- {
		e1 := arr.Node(i)
		threshold := arr.Score(i) * float32(alpha)
		provider := similarity.ScoreProvider(e1)

		for j := i - 1; j >= 0; j-- {
			e2 := arr.Node(j)
			sim, err := cache.Get(e1, e2, provider)
			if err != nil {
				return fmt.Errorf("neighbor: similarity lookup failed: %w", err)
			}
			if sim > threshold {
				arr.RemoveIndex(i)
				return nil
			}
		}
	}
	if arr.Size() > 0 {
		arr.RemoveIndex(arr.Size() - 1)
	}
	return nil
}

// MergeCandidates merges two descending-score candidate lists into one
// descending-score NeighborArray. When scores tie, the entry from a1 is
// emitted first; if the entry immediately following in a2 carries the
// same node id, it is skipped as a duplicate rather than emitted twice.
// The same skip applies once one side is exhausted and the other is
// drained: its leading entry is dropped if it repeats the last id
// emitted from the finished side.
func MergeCandidates(a1, a2 NeighborReader) *NeighborArray {
	result := NewNeighborArray(a1.Size()+a2.Size(), true)
	i, j := 0, 0
	n1, n2 := a1.Size(), a2.Size()

	var lastNode int32
	haveLast := false
	emit := func(node int32, score float32) {
		result.AddInOrder(node, score)
		lastNode = node
		haveLast = true
	}

	for i < n1 && j < n2 {
		s1, s2 := a1.Score(i), a2.Score(j)
		switch {
		case s1 > s2:
			emit(a1.Node(i), s1)
			i++
		case s2 > s1:
			emit(a2.Node(j), s2)
			j++
		default:
			node1 := a1.Node(i)
			emit(node1, s1)
			i++
			if j < n2 && a2.Node(j) == node1 {
				j++
			}
		}
	}

	if i < n1 {
		if haveLast && a1.Node(i) == lastNode {
			i++
		}
		for ; i < n1; i++ {
			emit(a1.Node(i), a1.Score(i))
		}
	}
	if j < n2 {
		if haveLast && a2.Node(j) == lastNode {
			j++
		}
		for ; j < n2; j++ {
			emit(a2.Node(j), a2.Score(j))
		}
	}

	return result
}
