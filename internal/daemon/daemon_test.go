// ABOUTME: Tests for the BMR synthesis daemon.
// ABOUTME: Exercises runOnce directly against a temp database.
package daemon

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/metabolic"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/storage"
)

func testDaemon(t *testing.T) (*Daemon, *storage.DB) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "calbal.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, zap.NewNop(), "5 0 * * *"), db
}

func TestRunOnceSynthesizesBMRForYesterday(t *testing.T) {
	d, db := testDaemon(t)

	// A user becomes known by having events.
	if err := db.AppendEvent(models.NewCalorieEvent("harper", models.EventConsumed, 500)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	eng := engine.New(db)
	if _, err := eng.CalculateMetabolicProfile("harper", metabolic.Biometrics{
		WeightKg: 75, HeightCm: 175, Age: 30,
		Gender: metabolic.GenderMale, ActivityLevel: models.ActivityModerate,
	}); err != nil {
		t.Fatalf("CalculateMetabolicProfile: %v", err)
	}

	d.runOnce()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	has, err := db.HasEventOn("harper", models.EventBurnedBMR, yesterday)
	if err != nil {
		t.Fatalf("HasEventOn: %v", err)
	}
	if !has {
		t.Error("expected a synthesized burned_bmr event for yesterday")
	}

	// Second pass must not duplicate.
	d.runOnce()

	start := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
	events, err := db.ListEvents("harper", start, start.AddDate(0, 0, 1), models.EventBurnedBMR)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected exactly 1 burned_bmr event, got %d", len(events))
	}
}

func TestRunOnceBackfillsOutageGap(t *testing.T) {
	d, db := testDaemon(t)

	if err := db.AppendEvent(models.NewCalorieEvent("harper", models.EventConsumed, 500)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	eng := engine.New(db)
	if _, err := eng.CalculateMetabolicProfile("harper", metabolic.Biometrics{
		WeightKg: 75, HeightCm: 175, Age: 30,
		Gender: metabolic.GenderMale, ActivityLevel: models.ActivityModerate,
	}); err != nil {
		t.Fatalf("CalculateMetabolicProfile: %v", err)
	}

	// Last successful pass was four days ago, then a 3-day outage.
	fourDaysAgo := time.Now().UTC().AddDate(0, 0, -4)
	if _, err := eng.SynthesizeBMREvent("harper", fourDaysAgo); err != nil {
		t.Fatalf("SynthesizeBMREvent: %v", err)
	}

	d.runOnce()

	for i := 1; i <= 4; i++ {
		day := time.Now().UTC().AddDate(0, 0, -i)
		has, err := db.HasEventOn("harper", models.EventBurnedBMR, day)
		if err != nil {
			t.Fatalf("HasEventOn: %v", err)
		}
		if !has {
			t.Errorf("expected a burned_bmr event %d days back", i)
		}
	}
}

func TestRunOnceFreshUserGetsYesterdayOnly(t *testing.T) {
	d, db := testDaemon(t)

	if err := db.AppendEvent(models.NewCalorieEvent("harper", models.EventConsumed, 500)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	eng := engine.New(db)
	if _, err := eng.CalculateMetabolicProfile("harper", metabolic.Biometrics{
		WeightKg: 75, HeightCm: 175, Age: 30,
		Gender: metabolic.GenderMale, ActivityLevel: models.ActivityModerate,
	}); err != nil {
		t.Fatalf("CalculateMetabolicProfile: %v", err)
	}

	d.runOnce()

	// No burned_bmr history means no gap to fill: exactly one event,
	// for yesterday, not a month of retroactive baseline burn.
	events, err := db.ListAllEvents("harper")
	if err != nil {
		t.Fatalf("ListAllEvents: %v", err)
	}
	bmr := 0
	for _, ev := range events {
		if ev.EventType == models.EventBurnedBMR {
			bmr++
		}
	}
	if bmr != 1 {
		t.Errorf("expected exactly 1 burned_bmr event, got %d", bmr)
	}
}

func TestRunOnceSkipsUnprofiledUsers(t *testing.T) {
	d, db := testDaemon(t)

	if err := db.AppendEvent(models.NewCalorieEvent("noprofile", models.EventConsumed, 500)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	d.runOnce()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	has, err := db.HasEventOn("noprofile", models.EventBurnedBMR, yesterday)
	if err != nil {
		t.Fatalf("HasEventOn: %v", err)
	}
	if has {
		t.Error("expected no burned_bmr event for a user without a profile")
	}
}

func TestRunRejectsBadCronSpec(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "calbal.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	d := New(db, zap.NewNop(), "not a cron spec")
	if err := d.Run(context.Background()); err == nil {
		t.Error("expected error for bad cron spec")
	}
}
