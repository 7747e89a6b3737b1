// Package commands implements the bossphorusd CLI, grounded on the
// teacher's cmd/dittofs/commands cobra root-command pattern.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// cfgFile is the global --config flag's destination.
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "bossphorusd",
	Short: "bossphorusd - a cache proxy for BossDB-compatible cutout services",
	Long: `bossphorusd caches 3D image cutouts from a remote BossDB-compatible
service on local disk (or S3), decomposing every request into fixed-size
cuboids so repeated reads of overlapping regions are served from cache.

Use "bossphorusd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML, optional — env vars take precedence)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(cacheCmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Printf("bossphorusd %s (commit: %s, built: %s)\n", Version, Commit, Date)
		return nil
	},
}
