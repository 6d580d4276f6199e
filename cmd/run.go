package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/arbitragex/arbfeed/internal/app"
	"github.com/arbitragex/arbfeed/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the feed reconciler",
	Long: `Starts the arbitrage feed reconciler, which will:
1. Connect to the upstream WebSocket feed and authenticate
2. Normalize incoming opportunity events into a single record shape
3. Reconcile them into the bounded live collection
4. Serve the filtered, sorted view on /api/opportunities`,
	RunE: runFeed,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
