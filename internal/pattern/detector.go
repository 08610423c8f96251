// ABOUTME: Behavioral pattern detector over multi-day event windows.
// ABOUTME: Meal timing, weekday/weekend variance, exercise frequency with confidence.
package pattern

import (
	"fmt"
	"math"
	"time"

	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/timeline"
)

// MealWindow bounds one meal slot by hour-of-day, [FromHour, ToHour).
type MealWindow struct {
	Name     string
	FromHour int
	ToHour   int
}

// Config holds tunable detector settings.
type Config struct {
	MealWindows []MealWindow
}

// DefaultConfig returns the standard breakfast/lunch/dinner windows.
func DefaultConfig() Config {
	return Config{
		MealWindows: []MealWindow{
			{Name: "breakfast", FromHour: 5, ToHour: 11},
			{Name: "lunch", FromHour: 11, ToHour: 16},
			{Name: "dinner", FromHour: 16, ToHour: 22},
		},
	}
}

// MealTiming reports consumption clustering for one meal window.
type MealTiming struct {
	Window       string
	ModalHour    int
	HourVariance float64
	DaysObserved int
	Confidence   float64
}

// WeekdayWeekend compares mean net calories across weekday vs weekend
// days. Ratio is weekend/weekday; confidence reflects sample size.
type WeekdayWeekend struct {
	WeekdayMeanNet float64
	WeekendMeanNet float64
	Ratio          float64
	WeekendsSeen   int
	Confidence     float64
}

// ExerciseFrequency is the share of window days with any exercise burn.
type ExerciseFrequency struct {
	ActiveDays int
	WindowDays int
	Frequency  float64
	Confidence float64
}

// Report bundles all detected patterns. Every signal carries an
// explicit confidence score; the detector has no ground truth, so
// nothing here is a prediction.
type Report struct {
	UserID      string
	WindowStart time.Time
	WindowEnd   time.Time
	WindowDays  int
	MealTimings []MealTiming
	WeekSplit   WeekdayWeekend
	Exercise    ExerciseFrequency
}

// MinWindowDays is the smallest window the detector accepts. Shorter
// windows produce statistics too noisy to label as patterns.
const MinWindowDays = 2

// RecommendedWindowDays is the window below which confidence is shaded down.
const RecommendedWindowDays = 7

// Detect scans raw events and day buckets covering [start, end).
// Events feed the meal-timing clusters; buckets feed the day-level
// signals. Both views must come from the same underlying event set.
func Detect(userID string, events []*models.CalorieEvent, days []*timeline.Bucket, cfg Config) (*Report, error) {
	if len(days) < MinWindowDays {
		return nil, fmt.Errorf("pattern window needs at least %d days, got %d", MinWindowDays, len(days))
	}
	if len(cfg.MealWindows) == 0 {
		cfg = DefaultConfig()
	}

	r := &Report{
		UserID:      userID,
		WindowStart: days[0].Start,
		WindowEnd:   days[len(days)-1].End,
		WindowDays:  len(days),
	}

	r.MealTimings = mealTimings(events, cfg.MealWindows, len(days))
	r.WeekSplit = weekSplit(days)
	r.Exercise = exerciseFrequency(days)

	return r, nil
}

// mealTimings clusters consumption events by hour-of-day within each
// configured window and reports the modal hour with variance.
func mealTimings(events []*models.CalorieEvent, windows []MealWindow, windowDays int) []MealTiming {
	out := make([]MealTiming, 0, len(windows))

	for _, w := range windows {
		hourCounts := make(map[int]int)
		daysSeen := make(map[string]bool)
		var hours []int

		for _, e := range events {
			if e.EventType != models.EventConsumed {
				continue
			}
			h := e.Timestamp.UTC().Hour()
			if h < w.FromHour || h >= w.ToHour {
				continue
			}
			hourCounts[h]++
			hours = append(hours, h)
			daysSeen[e.Timestamp.UTC().Format("2006-01-02")] = true
		}

		mt := MealTiming{Window: w.Name, DaysObserved: len(daysSeen)}
		if len(hours) > 0 {
			modal, best := 0, 0
			for h, c := range hourCounts {
				if c > best || (c == best && h < modal) {
					modal, best = h, c
				}
			}
			mt.ModalHour = modal
			mt.HourVariance = variance(hours)
			mt.Confidence = sampleConfidence(len(daysSeen), windowDays)
		}
		out = append(out, mt)
	}

	return out
}

func weekSplit(days []*timeline.Bucket) WeekdayWeekend {
	var wkdaySum, wkendSum float64
	var wkdayN, wkendN int
	weekends := make(map[string]bool)

	for _, d := range days {
		net := d.Consumed - d.BurnedExercise - d.BurnedBMR
		switch d.Start.Weekday() {
		case time.Saturday, time.Sunday:
			wkendSum += net
			wkendN++
			// Count distinct weekends via the ISO week label.
			year, week := d.Start.ISOWeek()
			weekends[fmt.Sprintf("%d-%02d", year, week)] = true
		default:
			wkdaySum += net
			wkdayN++
		}
	}

	ws := WeekdayWeekend{WeekendsSeen: len(weekends)}
	if wkdayN > 0 {
		ws.WeekdayMeanNet = wkdaySum / float64(wkdayN)
	}
	if wkendN > 0 {
		ws.WeekendMeanNet = wkendSum / float64(wkendN)
	}
	if ws.WeekdayMeanNet != 0 {
		ws.Ratio = ws.WeekendMeanNet / ws.WeekdayMeanNet
	}

	// Fewer than 2 full weekends is a low-confidence comparison.
	switch {
	case len(weekends) < 2:
		ws.Confidence = 0.3
	case len(weekends) < 4:
		ws.Confidence = 0.6
	default:
		ws.Confidence = 0.9
	}
	if wkdayN == 0 || wkendN == 0 {
		ws.Confidence = 0
	}
	return ws
}

func exerciseFrequency(days []*timeline.Bucket) ExerciseFrequency {
	ef := ExerciseFrequency{WindowDays: len(days)}
	for _, d := range days {
		if d.BurnedExercise > 0 {
			ef.ActiveDays++
		}
	}
	ef.Frequency = float64(ef.ActiveDays) / float64(len(days))
	ef.Confidence = sampleConfidence(len(days), RecommendedWindowDays)
	return ef
}

// sampleConfidence scales 0-1 with observed/expected sample size,
// capped at 0.95: descriptive stats never reach full certainty.
func sampleConfidence(observed, expected int) float64 {
	if expected <= 0 || observed <= 0 {
		return 0
	}
	c := float64(observed) / float64(expected)
	if c > 1 {
		c = 1
	}
	c *= 0.95
	return math.Round(c*1000) / 1000
}

func variance(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += float64(x)
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := float64(x) - mean
		sq += d * d
	}
	return sq / float64(len(xs))
}
