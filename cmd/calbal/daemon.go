// ABOUTME: CLI command running the background BMR synthesis daemon.
// ABOUTME: Schedules daily burned_bmr events from the current profile.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/calbal/internal/daemon"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background BMR synthesis daemon",
	Long: `Run the background daemon that writes a burned_bmr event for each
user's completed day, using the current metabolic profile.

The job runs on a cron schedule (default "5 0 * * *", shortly after
UTC midnight) and once immediately on startup. Days missed during an
outage are backfilled from the last synthesized day. Synthesis is
idempotent: a day that already has a burned_bmr event is skipped, so
restarts never duplicate.

Users without a metabolic profile are skipped; their balances fall
back to bmr_source=unavailable.

The schedule can be changed via "bmr_schedule" in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		d := daemon.New(repo, log, cfg.GetBMRSchedule())

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return d.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
