package cmd

import (
	"fmt"
	"math/rand"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/latticeforge/neighborset/pkg/hnswbuild"
)

var (
	buildNodes int
	buildDim   int
	buildM     int
	buildEf    int
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a synthetic HNSW graph and report its shape",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().IntVar(&buildNodes, "nodes", 500, "number of nodes to insert")
	buildCmd.Flags().IntVar(&buildDim, "dim", 16, "feature vector dimension")
	buildCmd.Flags().IntVar(&buildM, "m", 16, "max connections per node per level")
	buildCmd.Flags().IntVar(&buildEf, "ef-construction", 200, "candidate list size during construction")
}

func runBuild(c *cobra.Command, args []string) error {
	sim := hnswbuild.NewVectorSimilarity(buildDim)
	cfg := hnswbuild.DefaultConfig()
	cfg.M = buildM
	cfg.EfConstruction = buildEf

	opts := []hnswbuild.Option{hnswbuild.WithMetrics(collector)}
	if logger != nil {
		opts = append(opts, hnswbuild.WithLogger(logger))
	}
	builder := hnswbuild.New(cfg, sim, opts...)

	for i := 0; i < buildNodes; i++ {
		v := randomVector(buildDim)
		if err := sim.AddVector(int32(i), v); err != nil {
			return fmt.Errorf("neighborbench: add vector %d: %w", i, err)
		}
		if err := builder.Add(int32(i)); err != nil {
			return fmt.Errorf("neighborbench: add node %d: %w", i, err)
		}
	}

	results := builder.Search(0, 5)

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	row := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Println(title.Render("neighborbench build summary"))
	fmt.Println(row.Render(fmt.Sprintf("nodes:            %d", builder.Count())))
	fmt.Println(row.Render(fmt.Sprintf("dimension:        %d", buildDim)))
	fmt.Println(row.Render(fmt.Sprintf("M:                %d", buildM)))
	fmt.Println(row.Render(fmt.Sprintf("ef_construction:  %d", buildEf)))
	fmt.Println(row.Render(fmt.Sprintf("cas_retries:      %d", collector.GetCounter("neighborset.cas_retries"))))
	fmt.Println(row.Render(fmt.Sprintf("backlink_fanout:  %d", collector.GetCounter("neighborset.backlink_fanout"))))
	fmt.Println(row.Render(fmt.Sprintf("top-5 for node 0: %v", results)))
	return nil
}

func randomVector(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()*2 - 1
	}
	return v
}
