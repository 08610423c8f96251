// ABOUTME: CLI command for behavioral pattern detection.
// ABOUTME: Renders meal timing, weekday/weekend split, and exercise frequency.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var patternsDays int

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Detect behavioral patterns",
	Long: `Detect behavioral patterns over a trailing window of days.

Every detected signal carries a confidence score reflecting sample
size. Windows shorter than a week produce low-confidence results.

SIGNALS:

  meal timing         modal consumption hour per meal window
  weekday/weekend     mean net calorie ratio across the week split
  exercise frequency  share of days with any exercise burn

EXAMPLES:

  calbal patterns              # Last 7 days
  calbal patterns --days 30    # Last 30 days`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := eng.DetectPatterns(currentUser(), patternsDays)
		if err != nil {
			return fmt.Errorf("failed to detect patterns: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("Patterns %s to %s (%d days)\n\n",
			report.WindowStart.Format("2006-01-02"),
			report.WindowEnd.AddDate(0, 0, -1).Format("2006-01-02"),
			report.WindowDays)

		fmt.Println("Meal timing:")
		if len(report.MealTimings) == 0 {
			faint.Println("  no consumption events in window")
		}
		for _, mt := range report.MealTimings {
			fmt.Printf("  %-10s around %02d:00  %s\n", mt.Window, mt.ModalHour,
				faint.Sprintf("(%d days, confidence %.2f)", mt.DaysObserved, mt.Confidence))
		}

		ws := report.WeekSplit
		fmt.Println("\nWeekday vs weekend:")
		if ws.Confidence == 0 {
			faint.Println("  not enough data across the week split")
		} else {
			fmt.Printf("  weekend/weekday net ratio %.2f  %s\n", ws.Ratio,
				faint.Sprintf("(%.0f vs %.0f kcal, %d weekends, confidence %.2f)",
					ws.WeekendMeanNet, ws.WeekdayMeanNet, ws.WeekendsSeen, ws.Confidence))
		}

		ex := report.Exercise
		fmt.Println("\nExercise:")
		fmt.Printf("  active on %d of %d days (%.0f%%)  %s\n",
			ex.ActiveDays, ex.WindowDays, ex.Frequency*100,
			faint.Sprintf("(confidence %.2f)", ex.Confidence))

		return nil
	},
}

func init() {
	patternsCmd.Flags().IntVar(&patternsDays, "days", 7, "trailing window in days")
	rootCmd.AddCommand(patternsCmd)
}
