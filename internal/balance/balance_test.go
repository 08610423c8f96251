// ABOUTME: Tests for the daily balance calculator.
// ABOUTME: Covers net arithmetic, BMR fallback flagging, and idempotence.
package balance

import (
	"testing"
	"time"

	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/timeline"
)

func dayBucket(t *testing.T, events []*models.CalorieEvent) *timeline.Bucket {
	t.Helper()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	buckets, err := timeline.Partition(events, start, start.AddDate(0, 0, 1), timeline.Day)
	if err != nil {
		t.Fatalf("Partition() error = %v", err)
	}
	return buckets[0]
}

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-03-01T"+hhmm+":00Z")
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func TestFromBucketMeasuredBMR(t *testing.T) {
	events := []*models.CalorieEvent{
		models.NewCalorieEvent("u1", models.EventConsumed, 2100).WithTimestamp(at(t, "08:00")),
		models.NewCalorieEvent("u1", models.EventBurnedExercise, 400).WithTimestamp(at(t, "18:00")),
		models.NewCalorieEvent("u1", models.EventBurnedBMR, 1700).WithTimestamp(at(t, "00:05")),
	}

	db := FromBucket("u1", dayBucket(t, events), nil)

	if db.NetCalories != 2100-400-1700 {
		t.Errorf("NetCalories = %.0f, want 0", db.NetCalories)
	}
	if db.BMRSource != BMRMeasured {
		t.Errorf("BMRSource = %s, want measured", db.BMRSource)
	}
}

func TestFromBucketProfileFallback(t *testing.T) {
	events := []*models.CalorieEvent{
		models.NewCalorieEvent("u1", models.EventConsumed, 1800).WithTimestamp(at(t, "12:00")),
	}
	profile := models.NewMetabolicProfile("u1", 1650, 2550, models.ActivityModerate)

	db := FromBucket("u1", dayBucket(t, events), profile)

	if db.CaloriesBurnedBMR != 1650 {
		t.Errorf("CaloriesBurnedBMR = %.0f, want 1650 from profile", db.CaloriesBurnedBMR)
	}
	if db.BMRSource != BMRProfileEstimate {
		t.Errorf("BMRSource = %s, want profile_estimate", db.BMRSource)
	}
	if db.NetCalories != 1800-1650 {
		t.Errorf("NetCalories = %.0f, want 150", db.NetCalories)
	}
}

func TestFromBucketNoBMRAnywhere(t *testing.T) {
	events := []*models.CalorieEvent{
		models.NewCalorieEvent("u1", models.EventConsumed, 900).WithTimestamp(at(t, "09:00")),
	}

	db := FromBucket("u1", dayBucket(t, events), nil)

	if db.BMRSource != BMRUnavailable {
		t.Errorf("BMRSource = %s, want unavailable", db.BMRSource)
	}
	if db.NetCalories != 900 {
		t.Errorf("NetCalories = %.0f, want 900", db.NetCalories)
	}
}

func TestFromBucketIdempotent(t *testing.T) {
	events := []*models.CalorieEvent{
		models.NewCalorieEvent("u1", models.EventConsumed, 1500).WithTimestamp(at(t, "08:00")),
		models.NewCalorieEvent("u1", models.EventWeightMeasurement, 74.5).WithTimestamp(at(t, "07:00")),
	}
	b := dayBucket(t, events)

	first := FromBucket("u1", b, nil)
	second := FromBucket("u1", b, nil)

	if *first != *second {
		t.Errorf("recomputation diverged: %+v vs %+v", first, second)
	}
}

func TestCompleteness(t *testing.T) {
	tests := []struct {
		name   string
		events []*models.CalorieEvent
		min    float64
		max    float64
	}{
		{"empty day", nil, 0, 0},
		{"consumption only", []*models.CalorieEvent{
			models.NewCalorieEvent("u1", models.EventConsumed, 500),
		}, 0.5, 0.6},
		{"weight only", []*models.CalorieEvent{
			models.NewCalorieEvent("u1", models.EventWeightMeasurement, 75),
		}, 0.5, 0.6},
		{"both baselines", []*models.CalorieEvent{
			models.NewCalorieEvent("u1", models.EventConsumed, 500),
			models.NewCalorieEvent("u1", models.EventWeightMeasurement, 75),
		}, 1.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, e := range tt.events {
				e.WithTimestamp(at(t, "10:00"))
			}
			db := FromBucket("u1", dayBucket(t, tt.events), nil)
			if db.Completeness < tt.min || db.Completeness > tt.max {
				t.Errorf("Completeness = %.2f, want within [%.2f, %.2f]", db.Completeness, tt.min, tt.max)
			}
		})
	}
}
