package neighbor

// tableSimilarity is a Similarity backed by an explicit pairwise score
// table, used to reproduce the literal scenarios from the similarity
// tables they were specified with. Distinct pairs not present in the
// table score zero, which models the "similarity(a,b)=0 for all distinct
// pairs" scenarios directly; a node scores 1 against itself.
type tableSimilarity struct {
	pairs map[[2]int32]float32
}

func newTableSimilarity() *tableSimilarity {
	return &tableSimilarity{pairs: make(map[[2]int32]float32)}
}

// set records a symmetric score for the unordered pair (a, b).
func (t *tableSimilarity) set(a, b int32, score float32) *tableSimilarity {
	t.pairs[[2]int32{a, b}] = score
	t.pairs[[2]int32{b, a}] = score
	return t
}

func (t *tableSimilarity) Score(a, b int32) (float32, error) {
	if a == b {
		return 1, nil
	}
	return t.pairs[[2]int32{a, b}], nil
}

func (t *tableSimilarity) ScoreProvider(a int32) func(int32) (float32, error) {
	return func(b int32) (float32, error) {
		return t.Score(a, b)
	}
}

// failingSimilarity always returns err, used to exercise the
// SimilarityIOFailure invariant: the failure must propagate unchanged
// and the caller's snapshot must be left untouched.
type failingSimilarity struct {
	err error
}

func (f *failingSimilarity) Score(a, b int32) (float32, error) { return 0, f.err }
func (f *failingSimilarity) ScoreProvider(a int32) func(int32) (float32, error) {
	return func(b int32) (float32, error) { return f.Score(a, b) }
}

// fixedCandidates adapts plain parallel slices to NeighborReader for
// tests that need a candidate list independent of any NeighborArray
// construction quirks.
type fixedCandidates struct {
	nodes  []int32
	scores []float32
}

func (c *fixedCandidates) Size() int          { return len(c.nodes) }
func (c *fixedCandidates) Node(i int) int32   { return c.nodes[i] }
func (c *fixedCandidates) Score(i int) float32 { return c.scores[i] }
func (c *fixedCandidates) Descending() bool   { return true }
