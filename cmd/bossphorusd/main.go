// Command bossphorusd runs the cache proxy: an HTTP server that
// decomposes BossDB-compatible cutout requests into fixed-size cuboids,
// serving them from a local (or S3) cache and filling misses from a
// remote upstream.
package main

import (
	"fmt"
	"os"

	"github.com/aplbrain/bossphorus/cmd/bossphorusd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
