// ABOUTME: CLI command showing the computed daily calorie balance.
// ABOUTME: Renders net calories, BMR source, and completeness.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/balance"
)

var balanceCmd = &cobra.Command{
	Use:     "balance [date]",
	Aliases: []string{"b"},
	Short:   "Show the daily calorie balance",
	Long: `Show the computed calorie balance for a day (default: today, UTC).

The balance is recomputed from the event ledger on every invocation, so
late-arriving events are always reflected.

OUTPUT:

  net = consumed - burned_exercise - burned_bmr

  The BMR line notes whether the burn came from logged events (measured),
  a metabolic profile estimate, or is unavailable.

EXAMPLES:

  calbal balance               # Today
  calbal balance 2026-01-14    # A specific day`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now().UTC()
		if len(args) == 1 {
			t, err := time.Parse("2006-01-02", args[0])
			if err != nil {
				return fmt.Errorf("invalid date: %s (use YYYY-MM-DD)", args[0])
			}
			day = t
		}

		bal, err := eng.GetDailyBalance(currentUser(), day)
		if err != nil {
			return fmt.Errorf("failed to compute balance: %w", err)
		}

		printBalance(bal)
		return nil
	},
}

func printBalance(bal *balance.DailyBalance) {
	faint := color.New(color.Faint)

	fmt.Printf("Balance for %s\n\n", bal.Date.Format("2006-01-02"))
	fmt.Printf("  Consumed   %8.0f kcal\n", bal.CaloriesConsumed)
	fmt.Printf("  Exercise   %8.0f kcal\n", bal.CaloriesBurnedExercise)
	fmt.Printf("  BMR        %8.0f kcal %s\n", bal.CaloriesBurnedBMR, faint.Sprintf("(%s)", bal.BMRSource))

	net := fmt.Sprintf("%+.0f kcal", bal.NetCalories)
	if bal.NetCalories > 0 {
		fmt.Printf("  Net        %s\n", color.YellowString("%8s", net))
	} else {
		fmt.Printf("  Net        %s\n", color.GreenString("%8s", net))
	}

	fmt.Println()
	faint.Printf("  %d events, completeness %.0f%%\n", bal.EventsCount, bal.Completeness*100)
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
