// ABOUTME: Tests for the SQLite calorie ledger storage.
// ABOUTME: Covers append/list, goal CAS activation, profile supersession, export.
package storage

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/calbal/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "calbal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustAppend(t *testing.T, d *DB, e *models.CalorieEvent) {
	t.Helper()
	if err := d.AppendEvent(e); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}
}

func TestAppendAndListEvents(t *testing.T) {
	d := testDB(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventConsumed, 450).
		WithTimestamp(base).
		WithSource(models.SourceNutritionScan).
		WithMetadata("meal", "breakfast"))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventBurnedExercise, 300).
		WithTimestamp(base.Add(10*time.Hour)))
	mustAppend(t, d, models.NewCalorieEvent("u2", models.EventConsumed, 999).
		WithTimestamp(base))

	events, err := d.ListEvents("u1", base.Add(-time.Hour), base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (other users excluded)", len(events))
	}
	if events[0].Timestamp.After(events[1].Timestamp) {
		t.Error("events should be ordered oldest first")
	}
	if events[0].Metadata["meal"] != "breakfast" {
		t.Errorf("metadata round-trip failed: %v", events[0].Metadata)
	}
	if events[0].Source != models.SourceNutritionScan {
		t.Errorf("Source = %s, want nutrition_scan", events[0].Source)
	}
}

func TestListEventsTypeFilter(t *testing.T) {
	d := testDB(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventConsumed, 450).WithTimestamp(base))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventBurnedExercise, 300).WithTimestamp(base))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventWeightMeasurement, 75).WithTimestamp(base))

	events, err := d.ListEvents("u1", base.Add(-time.Hour), base.Add(time.Hour),
		models.EventConsumed, models.EventWeightMeasurement)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.EventType == models.EventBurnedExercise {
			t.Error("type filter leaked burned_exercise")
		}
	}
}

func TestAppendEventRejectsInvalid(t *testing.T) {
	d := testDB(t)
	e := models.NewCalorieEvent("u1", models.EventConsumed, 450)
	e.Source = "fax"
	if err := d.AppendEvent(e); err == nil {
		t.Error("expected validation error for bad source")
	}
}

func TestLatestWeight(t *testing.T) {
	d := testDB(t)
	base := time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC)

	if w, err := d.LatestWeight("u1"); err != nil || w != nil {
		t.Fatalf("LatestWeight() = %v, %v; want nil, nil for empty ledger", w, err)
	}

	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventWeightMeasurement, 75.4).WithTimestamp(base))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventWeightMeasurement, 74.9).WithTimestamp(base.AddDate(0, 0, 3)))

	w, err := d.LatestWeight("u1")
	if err != nil {
		t.Fatalf("LatestWeight() error = %v", err)
	}
	if w == nil || w.Amount != 74.9 {
		t.Errorf("LatestWeight() = %v, want 74.9", w)
	}
}

func TestHasEventOn(t *testing.T) {
	d := testDB(t)
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventBurnedBMR, 1700).
		WithTimestamp(day.Add(5*time.Minute)))

	has, err := d.HasEventOn("u1", models.EventBurnedBMR, day.Add(13*time.Hour))
	if err != nil {
		t.Fatalf("HasEventOn() error = %v", err)
	}
	if !has {
		t.Error("expected BMR event to be found on its day")
	}

	has, err = d.HasEventOn("u1", models.EventBurnedBMR, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("HasEventOn() error = %v", err)
	}
	if has {
		t.Error("next day should have no BMR event")
	}
}

func TestActivateGoalDeactivatesPrior(t *testing.T) {
	d := testDB(t)

	first := models.NewCalorieGoal("u1", models.GoalWeightLoss, 1800).
		WithWeights(75, 70).WithWeeklyChange(-0.5)
	if err := d.ActivateGoal(first, ""); err != nil {
		t.Fatalf("ActivateGoal(first) error = %v", err)
	}

	second := models.NewCalorieGoal("u1", models.GoalMaintenance, 2200)
	if err := d.ActivateGoal(second, first.ID.String()); err != nil {
		t.Fatalf("ActivateGoal(second) error = %v", err)
	}

	active, err := d.GetActiveGoal("u1")
	if err != nil {
		t.Fatalf("GetActiveGoal() error = %v", err)
	}
	if active == nil || active.ID != second.ID {
		t.Errorf("active goal = %v, want %s", active, second.ID)
	}

	goals, err := d.ListGoals("u1")
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	activeCount := 0
	for _, g := range goals {
		if g.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Errorf("active goals = %d, want exactly 1", activeCount)
	}
}

func TestActivateGoalStaleExpectationConflicts(t *testing.T) {
	d := testDB(t)

	first := models.NewCalorieGoal("u1", models.GoalWeightLoss, 1800).
		WithWeights(75, 70).WithWeeklyChange(-0.5)
	if err := d.ActivateGoal(first, ""); err != nil {
		t.Fatalf("ActivateGoal(first) error = %v", err)
	}

	// A writer that still believes no goal is active must lose.
	stale := models.NewCalorieGoal("u1", models.GoalMaintenance, 2000)
	err := d.ActivateGoal(stale, "")
	if !errors.Is(err, ErrGoalConflict) {
		t.Errorf("ActivateGoal(stale) error = %v, want ErrGoalConflict", err)
	}
}

func TestConcurrentActivationLeavesOneActive(t *testing.T) {
	d := testDB(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g := models.NewCalorieGoal("u1", models.GoalMaintenance, 2000+float64(i))
			errs[i] = d.ActivateGoal(g, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else if !errors.Is(err, ErrGoalConflict) {
			t.Errorf("loser got %v, want ErrGoalConflict", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}

	goals, err := d.ListGoals("u1")
	if err != nil {
		t.Fatalf("ListGoals() error = %v", err)
	}
	active := 0
	for _, g := range goals {
		if g.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("active goals = %d, want exactly 1", active)
	}
}

func TestSaveProfileSupersedes(t *testing.T) {
	d := testDB(t)

	p1 := models.NewMetabolicProfile("u1", 1650, 2550, models.ActivityModerate)
	p1.Method = "mifflin_st_jeor"
	p1.AccuracyScore = 0.9
	if err := d.SaveProfile(p1); err != nil {
		t.Fatalf("SaveProfile(p1) error = %v", err)
	}

	p2 := models.NewMetabolicProfile("u1", 1600, 2480, models.ActivityLight)
	p2.Method = "mifflin_st_jeor"
	p2.AccuracyScore = 0.9
	if err := d.SaveProfile(p2); err != nil {
		t.Fatalf("SaveProfile(p2) error = %v", err)
	}

	current, err := d.GetMetabolicProfile("u1")
	if err != nil {
		t.Fatalf("GetMetabolicProfile() error = %v", err)
	}
	if current == nil || current.ID != p2.ID {
		t.Errorf("current profile = %v, want %s", current, p2.ID)
	}

	history, err := d.ListProfiles("u1")
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2 (superseded retained)", len(history))
	}
}

func TestListAllEventsUnbounded(t *testing.T) {
	d := testDB(t)

	// Imported history and clock-skewed trackers can land timestamps far
	// outside any recent window; the full-ledger scan must see them all.
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventConsumed, 500).
		WithTimestamp(time.Date(1998, 6, 1, 12, 0, 0, 0, time.UTC)))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventConsumed, 600).
		WithTimestamp(time.Now().UTC()))
	mustAppend(t, d, models.NewCalorieEvent("u1", models.EventConsumed, 700).
		WithTimestamp(time.Now().UTC().AddDate(3, 0, 0)))

	events, err := d.ListAllEvents("u1")
	if err != nil {
		t.Fatalf("ListAllEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Amount != 500 || events[2].Amount != 700 {
		t.Errorf("events out of order: %v", events)
	}

	data, err := d.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData() error = %v", err)
	}
	if len(data.Events) != 3 {
		t.Errorf("export holds %d events, want all 3", len(data.Events))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := testDB(t)
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mustAppend(t, src, models.NewCalorieEvent("u1", models.EventConsumed, 450).WithTimestamp(base))
	mustAppend(t, src, models.NewCalorieEvent("u1", models.EventWeightMeasurement, 75).WithTimestamp(base))
	g := models.NewCalorieGoal("u1", models.GoalWeightLoss, 1800).
		WithWeights(75, 70).WithWeeklyChange(-0.5)
	if err := src.ActivateGoal(g, ""); err != nil {
		t.Fatalf("ActivateGoal() error = %v", err)
	}
	p := models.NewMetabolicProfile("u1", 1650, 2550, models.ActivityModerate)
	p.Method = "mifflin_st_jeor"
	if err := src.SaveProfile(p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	raw, err := src.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	dst := testDB(t)
	if err := dst.ImportJSON(raw); err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	events, err := dst.ListEvents("u1", base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Errorf("imported events = %d, want 2", len(events))
	}

	active, err := dst.GetActiveGoal("u1")
	if err != nil {
		t.Fatalf("GetActiveGoal() error = %v", err)
	}
	if active == nil || active.ID != g.ID {
		t.Errorf("imported active goal = %v, want %s", active, g.ID)
	}

	profile, err := dst.GetMetabolicProfile("u1")
	if err != nil {
		t.Fatalf("GetMetabolicProfile() error = %v", err)
	}
	if profile == nil || profile.ID != p.ID {
		t.Errorf("imported profile = %v, want %s", profile, p.ID)
	}
}
