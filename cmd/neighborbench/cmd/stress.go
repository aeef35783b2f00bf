package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/latticeforge/neighborset/pkg/neighbor"
)

var (
	stressWorkers   int
	stressInserts   int
	stressMaxConn   int
	stressRatePerWk float64
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Hammer a single ConcurrentNeighborSet from many goroutines",
	Long: `stress spawns a pool of workers that each insert distinct
(nodeId, score) pairs into one shared ConcurrentNeighborSet, throttled
by a token bucket, and reports the final size and CAS retry count. This
exercises the same C1 concurrency property the neighbor package's own
stress tests check, but against a caller-chosen worker/insert count.`,
	RunE: runStress,
}

func init() {
	stressCmd.Flags().IntVar(&stressWorkers, "workers", 32, "number of concurrent inserting goroutines")
	stressCmd.Flags().IntVar(&stressInserts, "inserts", 2000, "total inserts across all workers")
	stressCmd.Flags().IntVar(&stressMaxConn, "max-connections", 32, "neighbor set connection budget M")
	stressCmd.Flags().Float64Var(&stressRatePerWk, "rate", 5000, "max inserts/sec per worker")
}

func runStress(c *cobra.Command, args []string) error {
	sim := neighbor.NewHashSimilarity()
	opts := []neighbor.Option{neighbor.WithMetrics(collector)}
	if logger != nil {
		opts = append(opts, neighbor.WithLogger(logger))
	}
	set := neighbor.NewConcurrentNeighborSet(0, stressMaxConn, sim, 1.0, opts...)

	limiter := rate.NewLimiter(rate.Limit(stressRatePerWk*float64(stressWorkers)), stressWorkers)
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	perWorker := stressInserts / stressWorkers
	var errOnce sync.Once
	var firstErr error

	for w := 0; w < stressWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := limiter.Wait(ctx); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				node := int32(w*perWorker + i + 1)
				score := float32(node) / float32(stressInserts)
				if err := set.Insert(node, score); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)
	if firstErr != nil {
		return fmt.Errorf("neighborbench: stress worker failed: %w", firstErr)
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	row := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Println(title.Render("neighborbench stress summary"))
	fmt.Println(row.Render(fmt.Sprintf("workers:       %d", stressWorkers)))
	fmt.Println(row.Render(fmt.Sprintf("total inserts: %d", perWorker*stressWorkers)))
	fmt.Println(row.Render(fmt.Sprintf("elapsed:       %s", elapsed)))
	fmt.Println(row.Render(fmt.Sprintf("final size:    %d (max_connections=%d)", set.Size(), stressMaxConn)))
	fmt.Println(row.Render(fmt.Sprintf("cas_retries:   %d", collector.GetCounter("neighborset.cas_retries"))))
	return nil
}
