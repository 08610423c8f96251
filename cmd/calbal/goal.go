// ABOUTME: CLI commands for goal management and progress.
// ABOUTME: Supports set (with CAS retry messaging) and status.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/storage"
)

var (
	goalRate         float64
	goalStartWeight  float64
	goalTargetWeight float64
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage calorie goals",
	Long: `Manage calorie goals. At most one goal is active per user; setting a
new goal deactivates the current one.

COMMANDS:

  set      Activate a new goal
  status   Show progress against the active goal`,
}

var goalSetCmd = &cobra.Command{
	Use:   "set <type> <daily-target>",
	Short: "Activate a new goal",
	Long: `Activate a new goal, replacing any current one.

Goal types and their weekly rate requirements:

  weight_loss    negative --rate (kg/week)
  weight_gain    positive --rate
  maintenance    no rate

Weight goals require --target-weight; the end date is projected from
the weight delta and rate. Start weight defaults to the latest logged
measurement.

EXAMPLES:

  calbal goal set weight_loss 2000 --rate -0.5 --target-weight 70
  calbal goal set weight_gain 3000 --rate 0.25 --target-weight 80
  calbal goal set maintenance 2400`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		goalType := args[0]
		if !models.IsValidGoalType(goalType) {
			return fmt.Errorf("unknown goal type: %s (use weight_loss, weight_gain, or maintenance)", goalType)
		}

		target, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid daily target: %s", args[1])
		}

		g := models.NewCalorieGoal(currentUser(), models.GoalType(goalType), target).
			WithWeeklyChange(goalRate).
			WithWeights(goalStartWeight, goalTargetWeight)

		if err := eng.SetGoal(g); err != nil {
			if errors.Is(err, storage.ErrGoalConflict) {
				return fmt.Errorf("another goal change raced this one; re-run to retry: %w", err)
			}
			return fmt.Errorf("failed to set goal: %w", err)
		}

		color.Green("✓ Activated %s goal", goalType)
		fmt.Printf("  %s %.0f kcal/day\n",
			color.New(color.Faint).Sprint(g.ID.String()[:8]), target)
		if g.EndDate != nil {
			fmt.Printf("  Projected end: %s\n", g.EndDate.Format("2006-01-02"))
		}

		return nil
	},
}

var goalStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show progress against the active goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := eng.GetGoalProgress(currentUser())
		if err != nil {
			if errors.Is(err, engine.ErrNotConfigured) {
				fmt.Println("No active goal. Set one with 'calbal goal set'.")
				return nil
			}
			return fmt.Errorf("failed to get goal progress: %w", err)
		}

		faint := color.New(color.Faint)

		fmt.Printf("%s goal %s\n\n", p.GoalType, faint.Sprintf("(%s)", p.GoalID[:8]))
		fmt.Printf("  Daily target     %8.0f kcal\n", p.DailyCalorieTarget)

		dev := fmt.Sprintf("%+.0f kcal", p.TargetDeviation)
		if p.TargetDeviation > 0 {
			fmt.Printf("  Today            %s over\n", color.YellowString("%8s", dev))
		} else {
			fmt.Printf("  Today            %s\n", color.GreenString("%8s", dev))
		}

		fmt.Printf("  Period progress  %7.1f%% %s\n", p.ProgressPercentage,
			faint.Sprintf("(%.0f / %.0f kcal over %d days)", p.PeriodConsumed, p.PeriodTarget, p.PeriodDays))

		if p.CurrentWeightKg != nil {
			fmt.Printf("  Current weight   %8.1f kg\n", *p.CurrentWeightKg)
		}
		if p.EndDate != nil {
			fmt.Printf("  Projected end    %s", p.EndDate.Format("2006-01-02"))
			if p.WeeksRemaining != nil {
				faint.Printf("  (%d weeks remaining)", *p.WeeksRemaining)
			}
			fmt.Println()
		}

		return nil
	},
}

func init() {
	goalSetCmd.Flags().Float64Var(&goalRate, "rate", 0, "weekly weight change in kg (negative for loss)")
	goalSetCmd.Flags().Float64Var(&goalStartWeight, "start-weight", 0, "starting weight in kg (default: latest measurement)")
	goalSetCmd.Flags().Float64Var(&goalTargetWeight, "target-weight", 0, "target weight in kg (required for weight goals)")

	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalStatusCmd)
	rootCmd.AddCommand(goalCmd)
}
