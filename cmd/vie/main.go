// Command vie renders and inspects modular audio graph patches.
//
// Usage:
//
//	vie render patch.yaml -o out.wav [--blocks N] [--until-finished]
//	vie inspect patch.yaml
//	vie info
package main

import (
	"os"

	"github.com/cwbudde/algo-modgraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
