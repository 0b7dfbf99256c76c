// Package cli implements the keywatch command-line interface.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// version is overridden by Execute with the build version.
	version = "dev"

	configPath  string
	rootVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "keywatch",
	Short: "Poll product searches and publish newly seen items as RSS",
	Long: `keywatch polls a product-search API for a set of keywords, remembers
every item it has ever seen in a local database, and emits an RSS feed
containing only the items newly observed since the previous run.

Invocation cadence is yours: run it from cron or a systemd timer.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default ~/.keywatch/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false,
		"enable verbose logging to stderr")
}

// Execute runs the CLI with the given build version.
func Execute(buildVersion string) error {
	if buildVersion != "" {
		version = buildVersion
	}
	return rootCmd.Execute()
}
