package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aplbrain/bossphorus/internal/config"
	"github.com/aplbrain/bossphorus/internal/metadata"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cached block counts and the configured eviction budget",
	Long: `Print the number of cuboids currently tracked in the metadata
store alongside the configured MAX_CUBOIDS budget, without starting the
HTTP server.

Examples:
  bossphorusd cache stats`,
	RunE: runCacheStats,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	store, err := metadata.New(metadata.Config{URL: cfg.Metadata.DBURL})
	if err != nil {
		return fmt.Errorf("open metadata store: %w", err)
	}

	count, err := store.CountBlocks(context.Background())
	if err != nil {
		return fmt.Errorf("count cached blocks: %w", err)
	}

	cmd.Printf("Cached blocks: %d / %d (%s)\n", count, cfg.Eviction.MaxBlocks, cfg.Cache.RootPath)
	return nil
}
