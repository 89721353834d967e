// Package cli implements the spectrail command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spectrail/spectrail/internal/config"
)

// Version information (set via ldflags during build).
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var configPath string

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "spectrail",
	Short: "Undo-history toolkit for spectrum analysis sessions",
	Long: `spectrail maintains per-session undo/redo histories for spectrum
analysis work and keeps a persisted journal of step activity.

The journal subcommands inspect and export that persisted activity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spectrail %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.spectrail/config.toml)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (config.Config, string, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, "", fmt.Errorf("resolving config path: %w", err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	return cfg, path, nil
}
