// ABOUTME: Tests for the behavioral pattern detector.
// ABOUTME: Covers meal clustering, weekend variance confidence, exercise frequency.
package pattern

import (
	"testing"
	"time"

	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/timeline"
)

// buildWindow lays out count days starting at a Monday and returns the
// events plus day buckets over the full range.
func buildWindow(t *testing.T, events []*models.CalorieEvent, count int) []*timeline.Bucket {
	t.Helper()
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // Monday
	buckets, err := timeline.Partition(events, start, start.AddDate(0, 0, count), timeline.Day)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	return buckets
}

func consumedAt(day int, hour int, amount float64) *models.CalorieEvent {
	ts := time.Date(2025, 3, 3+day, hour, 30, 0, 0, time.UTC)
	return models.NewCalorieEvent("u1", models.EventConsumed, amount).WithTimestamp(ts)
}

func exerciseAt(day int, amount float64) *models.CalorieEvent {
	ts := time.Date(2025, 3, 3+day, 18, 0, 0, 0, time.UTC)
	return models.NewCalorieEvent("u1", models.EventBurnedExercise, amount).WithTimestamp(ts)
}

func TestDetectMealTimingModalHour(t *testing.T) {
	var events []*models.CalorieEvent
	// Breakfast at 07:30 every day for a week, one outlier at 09:30.
	for d := 0; d < 7; d++ {
		events = append(events, consumedAt(d, 7, 350))
	}
	events = append(events, consumedAt(3, 9, 200))

	days := buildWindow(t, events, 7)
	r, err := Detect("u1", events, days, DefaultConfig())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	var breakfast *MealTiming
	for i := range r.MealTimings {
		if r.MealTimings[i].Window == "breakfast" {
			breakfast = &r.MealTimings[i]
		}
	}
	if breakfast == nil {
		t.Fatal("no breakfast timing reported")
	}
	if breakfast.ModalHour != 7 {
		t.Errorf("breakfast ModalHour = %d, want 7", breakfast.ModalHour)
	}
	if breakfast.DaysObserved != 7 {
		t.Errorf("DaysObserved = %d, want 7", breakfast.DaysObserved)
	}
	if breakfast.Confidence <= 0.9 {
		t.Errorf("Confidence = %.3f, want > 0.9 for a full week", breakfast.Confidence)
	}
	if breakfast.HourVariance == 0 {
		t.Error("expected nonzero variance with an outlier present")
	}
}

func TestDetectWeekendConfidenceLowUnderTwoWeekends(t *testing.T) {
	var events []*models.CalorieEvent
	for d := 0; d < 7; d++ {
		events = append(events, consumedAt(d, 12, 1800))
	}
	days := buildWindow(t, events, 7) // exactly one weekend

	r, err := Detect("u1", events, days, DefaultConfig())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if r.WeekSplit.WeekendsSeen != 1 {
		t.Errorf("WeekendsSeen = %d, want 1", r.WeekSplit.WeekendsSeen)
	}
	if r.WeekSplit.Confidence > 0.3 {
		t.Errorf("Confidence = %.2f, want <= 0.3 with a single weekend", r.WeekSplit.Confidence)
	}
}

func TestDetectWeekendRatio(t *testing.T) {
	var events []*models.CalorieEvent
	for d := 0; d < 14; d++ {
		amount := 2000.0
		wd := time.Date(2025, 3, 3+d, 0, 0, 0, 0, time.UTC).Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			amount = 3000
		}
		events = append(events, consumedAt(d, 12, amount))
	}
	days := buildWindow(t, events, 14)

	r, err := Detect("u1", events, days, DefaultConfig())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if r.WeekSplit.Ratio != 1.5 {
		t.Errorf("Ratio = %.2f, want 1.5", r.WeekSplit.Ratio)
	}
	if r.WeekSplit.WeekendsSeen != 2 {
		t.Errorf("WeekendsSeen = %d, want 2", r.WeekSplit.WeekendsSeen)
	}
}

func TestDetectExerciseFrequency(t *testing.T) {
	var events []*models.CalorieEvent
	for _, d := range []int{0, 2, 4} {
		events = append(events, exerciseAt(d, 400))
	}
	days := buildWindow(t, events, 7)

	r, err := Detect("u1", events, days, DefaultConfig())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if r.Exercise.ActiveDays != 3 {
		t.Errorf("ActiveDays = %d, want 3", r.Exercise.ActiveDays)
	}
	if want := 3.0 / 7.0; r.Exercise.Frequency != want {
		t.Errorf("Frequency = %.3f, want %.3f", r.Exercise.Frequency, want)
	}
}

func TestDetectRejectsTinyWindow(t *testing.T) {
	days := buildWindow(t, nil, 1)
	if _, err := Detect("u1", nil, days, DefaultConfig()); err == nil {
		t.Error("expected error for a 1-day window")
	}
}
