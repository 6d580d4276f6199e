package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "arbfeed",
	Short: "Arbitrage opportunity feed reconciler",
	Long: `arbfeed subscribes to a pushed stream of cross-bookmaker arbitrage
opportunities, reconciles the at-least-once feed into a bounded live
collection keyed by derived identity, and serves a filtered, sorted view
over HTTP.

Records that stop being refreshed are first flagged as expiring and then
evicted; sightings can optionally be recorded to PostgreSQL for offline
analysis.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
