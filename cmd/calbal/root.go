// ABOUTME: Root Cobra command for calbal CLI.
// ABOUTME: Handles config loading and storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/config"
	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/storage"
)

var (
	cfg     *config.Config
	repo    storage.Repository
	eng     *engine.Engine
	cliUser string
)

var rootCmd = &cobra.Command{
	Use:   "calbal",
	Short: "Personal calorie balance tracker",
	Long: `Calbal tracks calorie events and computes daily energy balance.

WHAT IT TRACKS:

  Events    consumed, burned_exercise, burned_bmr, weight_measurement
  Derived   daily balance, timelines, goal progress, behavioral patterns

QUICK START:

  $ calbal log consumed 450             # Log a meal
  $ calbal log burned_exercise 320      # Log a workout burn
  $ calbal weight 82.5                  # Log a weight measurement
  $ calbal balance                      # Today's computed balance
  $ calbal timeline 2026-01-01 2026-02-01 --granularity week

GOALS AND PROFILES:

  $ calbal profile calc --weight 75 --height 175 --age 30 --gender male
  $ calbal goal set weight_loss 2000 --rate -0.5 --target-weight 70
  $ calbal goal status

SYNC:

  Mirror the event ledger across devices using Charm Cloud.
  Data is E2E encrypted with your SSH key.

  $ calbal sync link      # Link device to your Charm account
  $ calbal sync now       # Push and pull ledger changes
  $ calbal sync status    # Check sync status

MCP INTEGRATION:

  Run 'calbal mcp' to start the Model Context Protocol server for use with
  MCP-compatible AI assistants:

  {
    "mcpServers": {
      "calbal": { "command": "calbal", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Events are stored in SQLite at ~/.local/share/calbal/calbal.db.
  Everything else (balances, progress, patterns) is computed on read.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		eng = engine.New(repo)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

// currentUser resolves the user ID for the invocation.
func currentUser() string {
	if cliUser != "" {
		return cliUser
	}
	return cfg.GetDefaultUser()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cliUser, "user", "u", "", "user ID (default from config)")
}
