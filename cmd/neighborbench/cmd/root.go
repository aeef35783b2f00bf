package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/latticeforge/neighborset/pkg/logging"
	"github.com/latticeforge/neighborset/pkg/metrics"
	"github.com/latticeforge/neighborset/pkg/version"
)

var (
	verbose   bool
	logger    *logging.Logger
	collector *metrics.Collector
)

var rootCmd = &cobra.Command{
	Use:     "neighborbench",
	Short:   "Build and stress the concurrent neighbor set",
	Version: version.Version,
	Long: `neighborbench drives the neighbor and hnswbuild packages from the
outside: it builds synthetic HNSW graphs, stresses ConcurrentNeighborSet
under concurrent insert contention, and replays the
package's literal documented scenarios (S1-S6) so their behavior can be
inspected without writing a Go test.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{
			Level:  level,
			Format: "text",
			Output: "stderr",
		})
		if err != nil {
			return fmt.Errorf("neighborbench: init logger: %w", err)
		}
		logger = l
		collector = metrics.NewCollector()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "optional config file (yaml/json/toml)")
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.SetEnvPrefix("NEIGHBORBENCH")
	viper.AutomaticEnv()

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(stressCmd)
	rootCmd.AddCommand(scenarioCmd)
}

// Execute runs the root command.
func Execute() error {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("neighborbench: read config: %w", err)
		}
	}
	return rootCmd.Execute()
}
