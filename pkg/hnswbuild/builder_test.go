package hnswbuild

import "testing"

// clusteredVectors returns n vectors in dim-dimensional space arranged
// into clusters so that nearest-neighbor search has an unambiguous
// right answer to check against.
func clusteredVectors(n, dim, clusters int) [][]float32 {
	vectors := make([][]float32, n)
	for i := 0; i < n; i++ {
		cluster := i % clusters
		v := make([]float32, dim)
		v[cluster%dim] = 1.0
		if dim > 1 {
			v[(cluster+1)%dim] = 0.05 * float32(i/clusters)
		}
		vectors[i] = v
	}
	return vectors
}

func TestBuilderAddAndSearchFindsOwnCluster(t *testing.T) {
	const dim = 8
	const clusters = 4
	const n = 40

	sim := NewVectorSimilarity(dim)
	vectors := clusteredVectors(n, dim, clusters)

	cfg := DefaultConfig()
	cfg.M = 8
	cfg.EfConstruction = 32
	cfg.EfSearch = 16
	b := New(cfg, sim)

	for i, v := range vectors {
		if err := sim.AddVector(int32(i), v); err != nil {
			t.Fatalf("AddVector(%d) failed: %v", i, err)
		}
		if err := b.Add(int32(i)); err != nil {
			t.Fatalf("Add(%d) failed: %v", i, err)
		}
	}

	if b.Count() != n {
		t.Fatalf("expected %d nodes, got %d", n, b.Count())
	}

	results := b.Search(0, 5)
	if len(results) == 0 {
		t.Fatalf("expected at least one search result")
	}
	sameCluster := 0
	for _, r := range results {
		if int(r.ID)%clusters == 0 {
			sameCluster++
		}
	}
	if sameCluster == 0 {
		t.Fatalf("expected search for node 0 to surface at least one same-cluster neighbor, got %+v", results)
	}
}

func TestBuilderAddRejectsDuplicateID(t *testing.T) {
	sim := NewVectorSimilarity(4)
	_ = sim.AddVector(1, []float32{1, 0, 0, 0})
	b := New(DefaultConfig(), sim)

	if err := b.Add(1); err != nil {
		t.Fatalf("unexpected error on first add: %v", err)
	}
	if err := b.Add(1); err == nil {
		t.Fatalf("expected error on duplicate add")
	}
}

func TestBuilderSearchEmptyGraphReturnsNil(t *testing.T) {
	sim := NewVectorSimilarity(4)
	b := New(DefaultConfig(), sim)
	if results := b.Search(0, 5); results != nil {
		t.Fatalf("expected nil results on empty graph, got %+v", results)
	}
}
