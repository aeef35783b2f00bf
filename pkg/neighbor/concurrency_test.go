package neighbor

import (
	"sync"
	"testing"
)

// TestConcurrencyC1DistinctInsertsConverge is C1: N goroutines each
// insert a distinct (nodeId, score) pair concurrently; the final size
// is min(totalInserted, M), and I2/I3 hold over the survivors.
func TestConcurrencyC1DistinctInsertsConverge(t *testing.T) {
	const total = 200
	const maxConnections = 16

	s := NewConcurrentNeighborSet(0, maxConnections, newTableSimilarity(), 1.0)

	var wg sync.WaitGroup
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			defer wg.Done()
			node := int32(i + 1)
			score := float32(i) / float32(total)
			if err := s.Insert(node, score); err != nil {
				t.Errorf("insert(%d) failed: %v", node, err)
			}
		}(i)
	}
	wg.Wait()

	arr := s.GetCurrent()
	if arr.Size() != maxConnections {
		t.Fatalf("C1 violated: expected size %d, got %d", maxConnections, arr.Size())
	}
	seen := make(map[int32]bool, arr.Size())
	for i := 0; i < arr.Size(); i++ {
		if seen[arr.Node(i)] {
			t.Fatalf("C1/I3 violated: node %d appears twice", arr.Node(i))
		}
		seen[arr.Node(i)] = true
		if i > 0 && arr.Score(i-1) < arr.Score(i) {
			t.Fatalf("C1/I2 violated: scores not descending at index %d", i)
		}
	}
}

// TestConcurrencyC2SymmetricCrossInsert is C2: two goroutines
// symmetrically insert A into B's set and B into A's set; both sets
// must end up containing the other exactly once.
func TestConcurrencyC2SymmetricCrossInsert(t *testing.T) {
	const trials = 50
	for trial := 0; trial < trials; trial++ {
		setA := NewConcurrentNeighborSet(1, 8, newTableSimilarity(), 1.0)
		setB := NewConcurrentNeighborSet(2, 8, newTableSimilarity(), 1.0)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := setB.Insert(1, 0.42); err != nil {
				t.Errorf("setB.Insert(1) failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := setA.Insert(2, 0.42); err != nil {
				t.Errorf("setA.Insert(2) failed: %v", err)
			}
		}()
		wg.Wait()

		if setA.Size() != 1 || !setA.Contains(2) {
			t.Fatalf("C2 violated: setA expected exactly [2], got size=%d contains(2)=%v", setA.Size(), setA.Contains(2))
		}
		if setB.Size() != 1 || !setB.Contains(1) {
			t.Fatalf("C2 violated: setB expected exactly [1], got size=%d contains(1)=%v", setB.Size(), setB.Contains(1))
		}
	}
}

// TestConcurrencyInsertDiverseUnderContention exercises InsertDiverse
// and Insert racing on the same set to give the CAS retry loop real
// contention beyond the simpler C1/C2 cases.
func TestConcurrencyInsertDiverseUnderContention(t *testing.T) {
	const maxConnections = 4
	sim := newTableSimilarity() // all zero: every candidate is mutually diverse
	s := NewConcurrentNeighborSet(0, maxConnections, sim, 1.2)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			base := int32(g*10) + 1
			candidates := &fixedCandidates{
				nodes:  []int32{base, base + 1, base + 2},
				scores: []float32{0.9, 0.8, 0.7},
			}
			if err := s.InsertDiverse(candidates); err != nil {
				t.Errorf("insertDiverse failed: %v", err)
			}
		}(g)
	}
	wg.Wait()

	if s.Size() > maxConnections {
		t.Fatalf("I1 violated under InsertDiverse contention: size %d > %d", s.Size(), maxConnections)
	}
	arr := s.GetCurrent()
	for i := 1; i < arr.Size(); i++ {
		if arr.Score(i-1) < arr.Score(i) {
			t.Fatalf("I2 violated under contention at index %d", i)
		}
	}
}
