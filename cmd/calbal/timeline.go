// ABOUTME: CLI command rendering bucketed event totals over a range.
// ABOUTME: Supports hour, day, week, and month granularities.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/calbal/internal/timeline"
)

var timelineGranularity string

var timelineCmd = &cobra.Command{
	Use:     "timeline <start> <end>",
	Aliases: []string{"tl"},
	Short:   "Show bucketed event totals over a range",
	Long: `Show event totals bucketed over [start, end).

Buckets are contiguous: intervals with no events appear as zero rows,
so a 30-day range always shows 30 daily rows. The end of the range is
exclusive. Week buckets start on Monday; all anchors are UTC.

EXAMPLES:

  calbal timeline 2026-01-01 2026-02-01                      # Daily
  calbal timeline 2026-01-01 2026-04-01 --granularity week
  calbal timeline "2026-01-14 06:00" "2026-01-14 22:00" -g hour`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := parseTime(args[0])
		if err != nil {
			return fmt.Errorf("invalid start: %s", args[0])
		}
		end, err := parseTime(args[1])
		if err != nil {
			return fmt.Errorf("invalid end: %s", args[1])
		}

		if !timeline.IsValidGranularity(timelineGranularity) {
			return fmt.Errorf("unknown granularity: %s (use hour, day, week, or month)", timelineGranularity)
		}
		g := timeline.Granularity(timelineGranularity)

		buckets, err := eng.GetTimeline(currentUser(), start, end, g)
		if err != nil {
			return fmt.Errorf("failed to build timeline: %w", err)
		}

		layout := "2006-01-02"
		if g == timeline.Hour {
			layout = "2006-01-02 15:04"
		}

		faint := color.New(color.Faint)
		fmt.Printf("%-17s %9s %9s %9s %7s\n", "BUCKET", "CONSUMED", "EXERCISE", "BMR", "EVENTS")
		for _, b := range buckets {
			line := fmt.Sprintf("%-17s %9.0f %9.0f %9.0f %7d",
				b.Start.Format(layout), b.Consumed, b.BurnedExercise, b.BurnedBMR, b.EventsCount)
			if b.EventsCount == 0 {
				faint.Println(line)
			} else {
				fmt.Println(line)
			}
		}

		return nil
	},
}

func init() {
	timelineCmd.Flags().StringVarP(&timelineGranularity, "granularity", "g", "day", "bucket width (hour, day, week, month)")
	rootCmd.AddCommand(timelineCmd)
}
