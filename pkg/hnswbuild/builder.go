// Package hnswbuild demonstrates the higher-level HNSW builder that the
// neighbor package is designed to be called by: layer assignment, entry
// point tracking and beam search, with per-(node, level) adjacency held
// in a neighbor.ConcurrentNeighborSet instead of a plain friends slice.
package hnswbuild

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/latticeforge/neighborset/pkg/logging"
	"github.com/latticeforge/neighborset/pkg/metrics"
	"github.com/latticeforge/neighborset/pkg/neighbor"
)

// Config controls graph shape and search effort.
type Config struct {
	M              int     // max connections per node per level
	EfConstruction int     // candidate list size while building
	EfSearch       int     // candidate list size while searching
	MaxLevel       int     // hard ceiling on a node's level
	ML             float64 // level multiplier (1/ln(M))
	Alpha          float64 // diversity relaxation passed to each neighbor set
}

// DefaultConfig mirrors the defaults a production HNSW index would
// pick for M=16.
func DefaultConfig() Config {
	return Config{
		M:              16,
		EfConstruction: 200,
		EfSearch:       50,
		MaxLevel:       16,
		ML:             1.0 / math.Log(16),
		Alpha:          1.0,
	}
}

// Option configures optional observability hooks on a Builder and the
// neighbor sets it creates.
type Option func(*Builder)

// WithLogger attaches a logger propagated to every neighbor set.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMetrics attaches a metrics collector propagated to every neighbor
// set, plus the builder's own hnswbuild.nodes_added counter.
func WithMetrics(m *metrics.Collector) Option {
	return func(b *Builder) { b.metrics = m }
}

type node struct {
	id     int32
	level  int
	layers []*neighbor.ConcurrentNeighborSet // layers[l] is this node's adjacency at level l
}

// Builder incrementally constructs a multi-layer HNSW graph. Per-node
// adjacency lives in neighbor.ConcurrentNeighborSet, so edge insertion
// and pruning are lock-free; Builder's own mutex only guards the node
// registry and entry-point bookkeeping, which change far less often.
type Builder struct {
	mu         sync.RWMutex
	config     Config
	similarity neighbor.Similarity
	nodes      map[int32]*node
	entryID    int32
	hasEntry   bool
	maxLevel   int

	logger  *logging.Logger
	metrics *metrics.Collector

	opts []Option
}

// New creates an empty builder scoring edges with similarity.
func New(config Config, similarity neighbor.Similarity, opts ...Option) *Builder {
	b := &Builder{
		config:     config,
		similarity: similarity,
		nodes:      make(map[int32]*node),
		maxLevel:   -1,
		opts:       opts,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) neighborSetOpts() []neighbor.Option {
	var opts []neighbor.Option
	if b.logger != nil {
		opts = append(opts, neighbor.WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, neighbor.WithMetrics(b.metrics))
	}
	return opts
}

// Count returns the number of nodes in the graph.
func (b *Builder) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.nodes)
}

// Add inserts a new node into the graph: picks a random level, greedily
// descends from the current entry point to that level, then at each
// level from its level down to 0 gathers EfConstruction candidates,
// hands them to insertDiverse, and backlinks the accepted neighbors.
func (b *Builder) Add(id int32) error {
	b.mu.Lock()
	if _, exists := b.nodes[id]; exists {
		b.mu.Unlock()
		return fmt.Errorf("hnswbuild: node %d already exists", id)
	}

	level := b.randomLevel()
	n := &node{id: id, level: level, layers: make([]*neighbor.ConcurrentNeighborSet, level+1)}
	setOpts := b.neighborSetOpts()
	for l := range n.layers {
		n.layers[l] = neighbor.NewConcurrentNeighborSet(id, b.config.M, b.similarity, b.config.Alpha, setOpts...)
	}

	if len(b.nodes) == 0 {
		b.nodes[id] = n
		b.entryID = id
		b.hasEntry = true
		b.maxLevel = level
		b.mu.Unlock()
		if b.metrics != nil {
			b.metrics.Counter("hnswbuild.nodes_added", 1)
		}
		return nil
	}

	entryID := b.entryID
	maxLevel := b.maxLevel
	b.nodes[id] = n
	if level > maxLevel {
		b.entryID = id
		b.maxLevel = level
	}
	b.mu.Unlock()

	curr := entryID
	for l := maxLevel; l > level; l-- {
		curr = b.searchLayerClosest(id, curr, l)
	}

	top := level
	if maxLevel < top {
		top = maxLevel
	}
	for l := top; l >= 0; l-- {
		candidateIDs := b.searchLayer(id, curr, b.config.EfConstruction, l)
		candidates := b.scoreCandidates(id, candidateIDs)

		if err := n.layers[l].InsertDiverse(candidates); err != nil {
			return fmt.Errorf("hnswbuild: insertDiverse node %d level %d: %w", id, l, err)
		}
		if err := n.layers[l].Backlink(b.neighborhoodAt(l)); err != nil {
			return fmt.Errorf("hnswbuild: backlink node %d level %d: %w", id, l, err)
		}
		if ids := n.layers[l].NodeIterator(); len(ids) > 0 {
			curr = ids[0]
		}
	}

	if b.metrics != nil {
		b.metrics.Counter("hnswbuild.nodes_added", 1)
	}
	if b.logger != nil {
		b.logger.Debug("hnswbuild: added node %d at level %d", id, level)
	}
	return nil
}

// neighborhoodAt resolves a node id to its adjacency set at level l,
// used by Backlink to fan the reverse edge out.
func (b *Builder) neighborhoodAt(l int) func(int32) *neighbor.ConcurrentNeighborSet {
	return func(nodeID int32) *neighbor.ConcurrentNeighborSet {
		b.mu.RLock()
		other := b.nodes[nodeID]
		b.mu.RUnlock()
		if other == nil || l >= len(other.layers) {
			return nil
		}
		return other.layers[l]
	}
}

// scoreCandidates scores each candidate id against base and returns
// them as a descending-score NeighborArray, the read shape insertDiverse
// expects.
func (b *Builder) scoreCandidates(base int32, ids []int32) *neighbor.NeighborArray {
	arr := neighbor.NewNeighborArray(len(ids), true)
	for _, id := range ids {
		if id == base {
			continue
		}
		score, err := b.similarity.Score(base, id)
		if err != nil {
			continue
		}
		arr.InsertSorted(id, score)
	}
	return arr
}

// randomLevel draws a node's top layer from a geometric distribution
// with parameter ML, capped at MaxLevel.
func (b *Builder) randomLevel() int {
	level := 0
	for rand.Float64() < b.config.ML && level < b.config.MaxLevel {
		level++
	}
	return level
}

// searchLayerClosest greedily walks from entryID toward query within a
// single level, returning the closest node found once no neighbor
// improves on the current best.
func (b *Builder) searchLayerClosest(query int32, entryID int32, level int) int32 {
	curr := entryID
	currScore, err := b.similarity.Score(query, curr)
	if err != nil {
		return curr
	}

	changed := true
	for changed {
		changed = false
		b.mu.RLock()
		n := b.nodes[curr]
		b.mu.RUnlock()
		if n == nil || level >= len(n.layers) {
			break
		}
		for _, friend := range n.layers[level].NodeIterator() {
			score, err := b.similarity.Score(query, friend)
			if err != nil {
				continue
			}
			if score > currScore {
				curr = friend
				currScore = score
				changed = true
			}
		}
	}
	return curr
}

// searchLayer returns up to ef candidate node ids closest to query at
// level, starting the beam from entryID.
func (b *Builder) searchLayer(query int32, entryID int32, ef int, level int) []int32 {
	visited := map[int32]bool{entryID: true}
	candidates := &priorityQueue{}
	result := &priorityQueue{}

	score, err := b.similarity.Score(query, entryID)
	if err != nil {
		return nil
	}
	candidates.Push(pqItem{id: entryID, priority: score})
	result.Push(pqItem{id: entryID, priority: score})

	// result is a max-heap, so Peek returns its best entry; the weakest
	// is found by a scan. result never becomes empty inside the loop.
	worstResult := func() pqItem {
		worst := result.items[0]
		for _, it := range result.items[1:] {
			if it.priority < worst.priority {
				worst = it
			}
		}
		return worst
	}

	for candidates.Len() > 0 {
		curr := candidates.Pop()
		worst := worstResult()
		if curr.priority < worst.priority && result.Len() >= ef {
			break
		}

		b.mu.RLock()
		n := b.nodes[curr.id]
		b.mu.RUnlock()
		if n == nil || level >= len(n.layers) {
			continue
		}

		for _, friend := range n.layers[level].NodeIterator() {
			if visited[friend] {
				continue
			}
			visited[friend] = true

			friendScore, err := b.similarity.Score(query, friend)
			if err != nil {
				continue
			}
			worst = worstResult()
			if result.Len() < ef || friendScore > worst.priority {
				candidates.Push(pqItem{id: friend, priority: friendScore})
				result.Push(pqItem{id: friend, priority: friendScore})
				if result.Len() > ef {
					result.PopWorst()
				}
			}
		}
	}

	ids := make([]int32, 0, result.Len())
	for result.Len() > 0 {
		ids = append(ids, result.Pop().id)
	}
	return ids
}

// SearchResult is one scored hit returned by Search.
type SearchResult struct {
	ID    int32
	Score float32
}

// Search returns the k nodes most similar to query: it descends greedily
// from the entry point down to level 0, gathers an ef-sized beam there,
// and returns the top k by score.
func (b *Builder) Search(query int32, k int) []SearchResult {
	b.mu.RLock()
	if !b.hasEntry {
		b.mu.RUnlock()
		return nil
	}
	entryID := b.entryID
	maxLevel := b.maxLevel
	b.mu.RUnlock()

	curr := entryID
	for l := maxLevel; l > 0; l-- {
		curr = b.searchLayerClosest(query, curr, l)
	}

	ef := b.config.EfSearch
	if k > ef {
		ef = k
	}
	candidateIDs := b.searchLayer(query, curr, ef, 0)

	type scored struct {
		id    int32
		score float32
	}
	scoredCandidates := make([]scored, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		s, err := b.similarity.Score(query, id)
		if err != nil {
			continue
		}
		scoredCandidates = append(scoredCandidates, scored{id: id, score: s})
	}
	sort.Slice(scoredCandidates, func(i, j int) bool {
		return scoredCandidates[i].score > scoredCandidates[j].score
	})

	if k > len(scoredCandidates) {
		k = len(scoredCandidates)
	}
	results := make([]SearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = SearchResult{ID: scoredCandidates[i].id, Score: scoredCandidates[i].score}
	}
	return results
}
