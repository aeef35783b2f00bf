// Command neighborbench exercises the neighbor and hnswbuild packages
// from the outside: it builds synthetic graphs, stresses the
// concurrent neighbor set under contention, and replays the package's
// literal documented scenarios end to end.
package main

import (
	"os"

	"github.com/latticeforge/neighborset/cmd/neighborbench/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
