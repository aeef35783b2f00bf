// Package neighbor implements the per-node adjacency structure of a
// concurrently-built HNSW graph: ordered score arrays, a single-pass
// similarity cache, and the lock-free neighbor set that ties them
// together under an alpha-relaxed diversity (RNG) pruning rule.
package neighbor

import (
	"fmt"
	"math"
	"sort"
)

const defaultInitialCapacity = 8

// NeighborArray holds parallel node-id/score slices kept in a single
// sort order (ascending or descending by score) for their entire
// lifetime. It is not safe for concurrent use; callers needing
// concurrency-safe, duplicate-rejecting semantics use
// ConcurrentNeighborArray instead.
type NeighborArray struct {
	nodes      []int32
	scores     []float32
	size       int
	descending bool
}

// NewNeighborArray creates an array with the given initial capacity
// (rounded up to a small default when non-positive) and sort order.
func NewNeighborArray(capacity int, descending bool) *NeighborArray {
	if capacity < 1 {
		capacity = defaultInitialCapacity
	}
	return &NeighborArray{
		nodes:      make([]int32, capacity),
		scores:     make([]float32, capacity),
		descending: descending,
	}
}

// Size returns the number of entries currently held.
func (a *NeighborArray) Size() int { return a.size }

// Node returns the node id at index i.
func (a *NeighborArray) Node(i int) int32 { return a.nodes[i] }

// Score returns the score at index i.
func (a *NeighborArray) Score(i int) float32 { return a.scores[i] }

// Descending reports the array's configured sort order.
func (a *NeighborArray) Descending() bool { return a.descending }

// Capacity returns the current backing capacity, independent of Size.
func (a *NeighborArray) Capacity() int { return len(a.nodes) }

// AddInOrder appends node/score to the tail of the array. It returns
// ErrOrderViolation if the append would break the array's sort order;
// callers that cannot guarantee order should use InsertSorted instead.
func (a *NeighborArray) AddInOrder(node int32, score float32) error {
	if a.size > 0 {
		last := a.scores[a.size-1]
		if a.descending && score > last {
			return fmt.Errorf("%w: descending array received %v after %v", ErrOrderViolation, score, last)
		}
		if !a.descending && score < last {
			return fmt.Errorf("%w: ascending array received %v after %v", ErrOrderViolation, score, last)
		}
	}
	a.ensureCapacity()
	a.nodes[a.size] = node
	a.scores[a.size] = score
	a.size++
	return nil
}

// InsertSorted inserts node/score at the position that preserves sort
// order and returns that index. Among equal scores, newer entries are
// placed to the right under descending order and to the left under
// ascending order, so repeated inserts at the same score are stable in
// a consistent direction.
func (a *NeighborArray) InsertSorted(node int32, score float32) int {
	idx := a.insertionIndex(score)
	a.insertAt(idx, node, score)
	return idx
}

// insertionIndex returns the index at which score should be inserted to
// preserve the array's sort order, per the tie-breaking rule documented
// on InsertSorted.
func (a *NeighborArray) insertionIndex(score float32) int {
	if a.descending {
		return sort.Search(a.size, func(i int) bool { return a.scores[i] < score })
	}
	return sort.Search(a.size, func(i int) bool { return a.scores[i] >= score })
}

func (a *NeighborArray) insertAt(idx int, node int32, score float32) {
	a.ensureCapacity()
	copy(a.nodes[idx+1:a.size+1], a.nodes[idx:a.size])
	copy(a.scores[idx+1:a.size+1], a.scores[idx:a.size])
	a.nodes[idx] = node
	a.scores[idx] = score
	a.size++
}

// RemoveIndex removes the entry at index i, shifting the tail left.
func (a *NeighborArray) RemoveIndex(i int) {
	copy(a.nodes[i:a.size-1], a.nodes[i+1:a.size])
	copy(a.scores[i:a.size-1], a.scores[i+1:a.size])
	a.size--
}

// ensureCapacity grows the backing slices to max(capacity+1,
// ceil(capacity*1.5)) whenever the array is full, matching the growth
// policy used throughout the candidate-list machinery so repeated
// inserts during a single search amortize to O(1).
func (a *NeighborArray) ensureCapacity() {
	if a.size < len(a.nodes) {
		return
	}
	oldCap := len(a.nodes)
	newCap := oldCap + 1
	if scaled := int(math.Ceil(float64(oldCap) * 1.5)); scaled > newCap {
		newCap = scaled
	}
	nodes := make([]int32, newCap)
	scores := make([]float32, newCap)
	copy(nodes, a.nodes)
	copy(scores, a.scores)
	a.nodes = nodes
	a.scores = scores
}

// ConcurrentNeighborArray is the immutable-once-published snapshot type
// held inside a ConcurrentNeighborSet. It behaves like NeighborArray
// except InsertSorted silently rejects an insert that would create a
// duplicate (nodeId, score) pair.
type ConcurrentNeighborArray struct {
	NeighborArray
}

// NewConcurrentNeighborArray creates an empty array with the given sort
// order; ConcurrentNeighborSet always passes descending, since HNSW
// adjacency is held best-score-first.
func NewConcurrentNeighborArray(capacity int, descending bool) *ConcurrentNeighborArray {
	return &ConcurrentNeighborArray{NeighborArray: *NewNeighborArray(capacity, descending)}
}

// InsertSorted inserts node/score at its sorted position unless an
// entry with the same (node, score) pair already sits adjacent to the
// insertion point, in which case it is a no-op and the returned index
// is -1.
func (a *ConcurrentNeighborArray) InsertSorted(node int32, score float32) int {
	idx := a.insertionIndex(score)
	if a.hasDuplicateNear(idx, node, score) {
		return -1
	}
	a.insertAt(idx, node, score)
	return idx
}

// hasDuplicateNear scans outward from idx, in both directions, while
// scores equal the candidate score, looking for a matching node id.
// Because the array is sorted by score, any existing (node, score)
// match must sit in this equal-score run.
func (a *ConcurrentNeighborArray) hasDuplicateNear(idx int, node int32, score float32) bool {
	for i := idx; i < a.size && a.scores[i] == score; i++ {
		if a.nodes[i] == node {
			return true
		}
	}
	for i := idx - 1; i >= 0 && a.scores[i] == score; i-- {
		if a.nodes[i] == node {
			return true
		}
	}
	return false
}

// Copy returns a deep, independent copy preserving size, order and
// backing capacity. It is the basis of the set's copy-on-write update
// loop: every mutation works on a Copy() of the published snapshot.
func (a *ConcurrentNeighborArray) Copy() *ConcurrentNeighborArray {
	cp := &ConcurrentNeighborArray{
		NeighborArray: NeighborArray{
			nodes:      make([]int32, len(a.nodes)),
			scores:     make([]float32, len(a.scores)),
			size:       a.size,
			descending: a.descending,
		},
	}
	copy(cp.nodes, a.nodes)
	copy(cp.scores, a.scores)
	return cp
}
