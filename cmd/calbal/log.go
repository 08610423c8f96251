// ABOUTME: CLI commands for logging calorie events.
// ABOUTME: Handles the generic log command and the weight shortcut.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/models"
)

var (
	logAt     string
	logSource string
)

var logCmd = &cobra.Command{
	Use:     "log <type> <amount>",
	Aliases: []string{"l"},
	Short:   "Log a calorie event",
	Long: `Log a calorie event. Events are immutable: corrections are new events,
never edits.

Examples:
  calbal log consumed 450
  calbal log burned_exercise 320 --at "2026-01-14 07:00"
  calbal log consumed 600 --source nutrition_scan
  calbal log weight_measurement 82.5 --source smart_scale`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eventType := args[0]
		if !models.IsValidEventType(eventType) {
			return fmt.Errorf("unknown event type: %s\nValid types: consumed, burned_exercise, burned_bmr, weight_measurement", eventType)
		}

		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %s", args[1])
		}

		ev := models.NewCalorieEvent(currentUser(), models.EventType(eventType), amount)

		if logAt != "" {
			t, err := parseTime(logAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", logAt)
			}
			ev.WithTimestamp(t)
		}

		if logSource != "" {
			if !models.IsValidEventSource(logSource) {
				return fmt.Errorf("unknown source: %s\nValid sources: manual, fitness_tracker, smart_scale, nutrition_scan, healthkit, google_fit", logSource)
			}
			ev.WithSource(models.EventSource(logSource))
		}

		if err := eng.LogEvent(ev); err != nil {
			return fmt.Errorf("failed to log event: %w", err)
		}

		color.Green("✓ Logged %s", eventType)
		fmt.Printf("  %s %.2f %s\n",
			color.New(color.Faint).Sprint(ev.ID.String()[:8]),
			ev.Amount, models.EventUnits[ev.EventType])

		return nil
	},
}

var weightCmd = &cobra.Command{
	Use:     "weight <kg>",
	Aliases: []string{"w"},
	Short:   "Log a weight measurement",
	Long: `Log a weight measurement in kilograms.

Shortcut for 'calbal log weight_measurement <kg>'.

Examples:
  calbal weight 82.5
  calbal weight 82.5 --at 2026-01-14 --source smart_scale`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kg, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid weight: %s", args[0])
		}

		ev := models.NewCalorieEvent(currentUser(), models.EventWeightMeasurement, kg)
		if logAt != "" {
			t, err := parseTime(logAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", logAt)
			}
			ev.WithTimestamp(t)
		}
		if logSource != "" {
			if !models.IsValidEventSource(logSource) {
				return fmt.Errorf("unknown source: %s", logSource)
			}
			ev.WithSource(models.EventSource(logSource))
		}

		if err := eng.LogEvent(ev); err != nil {
			return fmt.Errorf("failed to log weight: %w", err)
		}

		color.Green("✓ Logged weight")
		fmt.Printf("  %s %.1f kg\n",
			color.New(color.Faint).Sprint(ev.ID.String()[:8]), kg)

		return nil
	},
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	for _, c := range []*cobra.Command{logCmd, weightCmd} {
		c.Flags().StringVar(&logAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")
		c.Flags().StringVar(&logSource, "source", "", "data source (default: manual)")
	}
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(weightCmd)
}
