// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs the stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants to interact with your calorie ledger through a
standardized protocol. The server communicates via stdin/stdout.

CONFIGURATION EXAMPLE:

  {
    "mcpServers": {
      "calbal": {
        "command": "calbal",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_event           Log a calorie event
  get_daily_balance   Get the computed balance for a day
  get_timeline        Get bucketed totals over a range
  set_goal            Activate a calorie goal
  get_goal_progress   Get progress against the active goal
  detect_patterns     Detect behavioral patterns
  calculate_profile   Calculate and store a metabolic profile

AVAILABLE RESOURCES:

  calbal://today      Today's computed balance
  calbal://recent     Events from the last 7 days
  calbal://summary    Balance, goal progress, and latest weight`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, currentUser())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
