package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/latticeforge/neighborset/pkg/neighbor"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Replay all six of the package's literal documented scenarios (S1-S6)",
	RunE:  runScenario,
}

type tablePair struct {
	a, b  int32
	score float32
}

type tableSim struct {
	pairs map[[2]int32]float32
}

func newTableSim(pairs ...tablePair) *tableSim {
	t := &tableSim{pairs: make(map[[2]int32]float32)}
	for _, p := range pairs {
		t.pairs[[2]int32{p.a, p.b}] = p.score
		t.pairs[[2]int32{p.b, p.a}] = p.score
	}
	return t
}

func (t *tableSim) Score(a, b int32) (float32, error) { return t.pairs[[2]int32{a, b}], nil }
func (t *tableSim) ScoreProvider(a int32) func(int32) (float32, error) {
	return func(b int32) (float32, error) { return t.Score(a, b) }
}

// fixedCandidates adapts a parallel nodes/scores slice pair to
// neighbor.NeighborReader for the S5 replay's candidate list.
type fixedCandidates struct {
	nodes  []int32
	scores []float32
}

func (c *fixedCandidates) Size() int           { return len(c.nodes) }
func (c *fixedCandidates) Node(i int) int32    { return c.nodes[i] }
func (c *fixedCandidates) Score(i int) float32 { return c.scores[i] }
func (c *fixedCandidates) Descending() bool    { return true }

func runScenario(c *cobra.Command, args []string) error {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	fail := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	report := func(name string, pass bool, detail string) {
		style := ok
		mark := "PASS"
		if !pass {
			style = fail
			mark = "FAIL"
		}
		fmt.Println(style.Render(fmt.Sprintf("[%s] %s — %s", mark, name, detail)))
	}

	fmt.Println(title.Render("neighborbench scenario replay"))

	// S1: basic insert and order.
	s1 := neighbor.NewConcurrentNeighborSet(0, 4, newTableSim(), 1.0)
	s1.Insert(10, 0.9)
	s1.Insert(20, 0.8)
	s1.Insert(30, 0.95)
	arr := s1.GetCurrent()
	pass := arr.Size() == 3 && arr.Node(0) == 30 && arr.Node(1) == 10 && arr.Node(2) == 20
	report("S1 basic insert and order", pass, fmt.Sprintf("nodes=%v", snapshotNodes(arr)))

	// S2: duplicate rejection.
	s2 := neighbor.NewConcurrentNeighborSet(0, 4, newTableSim(), 1.0)
	s2.Insert(10, 0.9)
	s2.Insert(10, 0.9)
	report("S2 duplicate rejection", s2.Size() == 1, fmt.Sprintf("size=%d", s2.Size()))

	// S3: cap enforcement drops farthest when all diverse.
	s3 := neighbor.NewConcurrentNeighborSet(0, 2, newTableSim(), 1.0)
	s3.Insert(10, 0.9)
	s3.Insert(20, 0.8)
	s3.Insert(30, 0.7)
	arr3 := s3.GetCurrent()
	report("S3 cap enforcement", arr3.Size() == 2 && arr3.Node(0) == 10 && arr3.Node(1) == 20,
		fmt.Sprintf("nodes=%v", snapshotNodes(arr3)))

	// S4: least-diverse removal.
	sim4 := newTableSim(
		tablePair{30, 10, 0.9},
		tablePair{30, 20, 0.1},
		tablePair{10, 20, 0.1},
	)
	s4 := neighbor.NewConcurrentNeighborSet(0, 2, sim4, 1.0)
	s4.Insert(10, 0.9)
	s4.Insert(20, 0.8)
	s4.Insert(30, 0.75)
	arr4 := s4.GetCurrent()
	report("S4 least-diverse removal", arr4.Size() == 2 && arr4.Node(0) == 10 && arr4.Node(1) == 20,
		fmt.Sprintf("nodes=%v", snapshotNodes(arr4)))

	// S5: alpha ladder relaxation.
	sim5 := newTableSim(
		tablePair{1, 2, 0.95},
		tablePair{1, 3, 0.70},
		tablePair{1, 4, 0.60},
		tablePair{2, 3, 0.60},
		tablePair{2, 4, 0.50},
		tablePair{3, 4, 0.50},
	)
	s5 := neighbor.NewConcurrentNeighborSet(0, 3, sim5, 1.4)
	s5Candidates := &fixedCandidates{
		nodes:  []int32{1, 2, 3, 4},
		scores: []float32{0.9, 0.88, 0.80, 0.70},
	}
	if err := s5.InsertDiverse(s5Candidates); err != nil {
		report("S5 alpha ladder", false, fmt.Sprintf("unexpected error: %v", err))
	} else {
		arr5 := s5.GetCurrent()
		report("S5 alpha ladder", arr5.Size() == 3 && arr5.Node(0) == 2 && arr5.Node(1) == 3 && arr5.Node(2) == 4,
			fmt.Sprintf("nodes=%v", snapshotNodes(arr5)))
	}

	// S6: backlink.
	sim6 := newTableSim()
	set1 := neighbor.NewConcurrentNeighborSet(1, 4, sim6, 1.0)
	set2 := neighbor.NewConcurrentNeighborSet(2, 4, sim6, 1.0)
	set1.Insert(2, 0.7)
	set1.Backlink(func(id int32) *neighbor.ConcurrentNeighborSet {
		if id == 2 {
			return set2
		}
		return nil
	})
	report("S6 backlink", set2.Contains(1), fmt.Sprintf("set2=%v", snapshotNodes(set2.GetCurrent())))

	return nil
}

func snapshotNodes(arr *neighbor.ConcurrentNeighborArray) []int32 {
	ids := make([]int32, arr.Size())
	for i := range ids {
		ids[i] = arr.Node(i)
	}
	return ids
}
