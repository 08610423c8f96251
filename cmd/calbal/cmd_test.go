// ABOUTME: Tests for CLI helper functions and command wiring.
// ABOUTME: Tests parseTime, flag registration, and end-to-end command runs.
package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/harperreed/calbal/internal/config"
	"github.com/harperreed/calbal/internal/engine"
	"github.com/harperreed/calbal/internal/models"
	"github.com/harperreed/calbal/internal/storage"
)

// setupCLI wires the command globals to a temp database.
func setupCLI(t *testing.T) *storage.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "calbal.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg = &config.Config{}
	repo = db
	eng = engine.New(db)
	cliUser = ""
	logAt = ""
	logSource = ""
	return db
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "date and time with space",
			input:   "2026-01-31 08:30",
			wantErr: false,
		},
		{
			name:    "date and time with T",
			input:   "2026-01-31T08:30",
			wantErr: false,
		},
		{
			name:    "date only",
			input:   "2026-01-31",
			wantErr: false,
		},
		{
			name:    "RFC3339",
			input:   "2026-01-31T08:30:00Z",
			wantErr: false,
		},
		{
			name:    "RFC3339 with offset",
			input:   "2026-01-31T08:30:00+05:00",
			wantErr: false,
		},
		{
			name:    "invalid format",
			input:   "31-01-2026",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseTime(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTime(%q) expected error, got nil", tt.input)
				}
				return
			}

			if err != nil {
				t.Errorf("parseTime(%q) unexpected error: %v", tt.input, err)
				return
			}
			if result.IsZero() {
				t.Errorf("parseTime(%q) returned zero time", tt.input)
			}
		})
	}
}

func TestParseTimeValues(t *testing.T) {
	result, err := parseTime("2026-06-15")
	if err != nil {
		t.Fatalf("parseTime failed: %v", err)
	}

	if result.Year() != 2026 || result.Month() != time.June || result.Day() != 15 {
		t.Errorf("parseTime returned wrong date: got %v", result)
	}
}

func TestLogCmdRun(t *testing.T) {
	db := setupCLI(t)

	if err := logCmd.RunE(logCmd, []string{"consumed", "450"}); err != nil {
		t.Fatalf("log command failed: %v", err)
	}

	now := time.Now().UTC()
	events, err := db.ListEvents("local", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Amount != 450 {
		t.Errorf("expected one 450 kcal event, got %+v", events)
	}
}

func TestLogCmdRejectsBadInput(t *testing.T) {
	setupCLI(t)

	if err := logCmd.RunE(logCmd, []string{"snacked", "450"}); err == nil {
		t.Error("expected error for unknown event type")
	}
	if err := logCmd.RunE(logCmd, []string{"consumed", "plenty"}); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestWeightCmdRun(t *testing.T) {
	db := setupCLI(t)

	if err := weightCmd.RunE(weightCmd, []string{"82.5"}); err != nil {
		t.Fatalf("weight command failed: %v", err)
	}

	w, err := db.LatestWeight("local")
	if err != nil {
		t.Fatalf("LatestWeight: %v", err)
	}
	if w == nil || w.Amount != 82.5 {
		t.Errorf("expected latest weight 82.5, got %+v", w)
	}
}

func TestGoalSetAndStatusCmds(t *testing.T) {
	setupCLI(t)

	if err := weightCmd.RunE(weightCmd, []string{"75"}); err != nil {
		t.Fatalf("weight command failed: %v", err)
	}

	goalRate = -0.5
	goalTargetWeight = 70
	goalStartWeight = 0
	t.Cleanup(func() { goalRate, goalTargetWeight = 0, 0 })

	if err := goalSetCmd.RunE(goalSetCmd, []string{"weight_loss", "2000"}); err != nil {
		t.Fatalf("goal set failed: %v", err)
	}
	if err := goalStatusCmd.RunE(goalStatusCmd, nil); err != nil {
		t.Fatalf("goal status failed: %v", err)
	}
}

func TestBalanceCmdRun(t *testing.T) {
	db := setupCLI(t)

	if err := db.AppendEvent(models.NewCalorieEvent("local", models.EventConsumed, 600)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	if err := balanceCmd.RunE(balanceCmd, nil); err != nil {
		t.Fatalf("balance command failed: %v", err)
	}
	if err := balanceCmd.RunE(balanceCmd, []string{"not-a-date"}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestRootCmdWiring(t *testing.T) {
	if rootCmd.Use != "calbal" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "calbal")
	}
	if rootCmd.Short == "" {
		t.Error("Expected rootCmd.Short to be non-empty")
	}

	userFlag := rootCmd.PersistentFlags().Lookup("user")
	if userFlag == nil {
		t.Error("Expected --user persistent flag")
	}
}

func TestLogCmdFlags(t *testing.T) {
	atFlag := logCmd.Flags().Lookup("at")
	if atFlag == nil {
		t.Error("Expected --at flag on log command")
	}

	sourceFlag := logCmd.Flags().Lookup("source")
	if sourceFlag == nil {
		t.Error("Expected --source flag on log command")
	}
}

func TestTimelineCmdFlags(t *testing.T) {
	gFlag := timelineCmd.Flags().Lookup("granularity")
	if gFlag == nil {
		t.Fatal("Expected --granularity flag on timeline command")
	}
	if gFlag.DefValue != "day" {
		t.Errorf("Expected default granularity day, got %s", gFlag.DefValue)
	}
}

func TestGoalCmdSubcommands(t *testing.T) {
	subcommands := goalCmd.Commands()
	expectedSubcmds := []string{"set", "status"}

	cmdNames := make(map[string]bool)
	for _, cmd := range subcommands {
		cmdNames[cmd.Name()] = true
	}

	for _, expected := range expectedSubcmds {
		if !cmdNames[expected] {
			t.Errorf("Expected goal subcommand %q not found", expected)
		}
	}
}

func TestSyncCmdSubcommands(t *testing.T) {
	subcommands := syncCmd.Commands()
	expectedSubcmds := []string{"link", "unlink", "status", "now", "reset", "wipe"}

	cmdNames := make(map[string]bool)
	for _, cmd := range subcommands {
		cmdNames[cmd.Name()] = true
	}

	for _, expected := range expectedSubcmds {
		if !cmdNames[expected] {
			t.Errorf("Expected sync subcommand %q not found", expected)
		}
	}
}

func TestExportCmdFlags(t *testing.T) {
	outputFlag := exportCmd.Flags().Lookup("output")
	if outputFlag == nil {
		t.Error("Expected --output flag on export command")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	db := setupCLI(t)

	if err := db.AppendEvent(models.NewCalorieEvent("local", models.EventConsumed, 450)); err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}

	out := filepath.Join(t.TempDir(), "backup.json")
	exportOutput = out
	t.Cleanup(func() { exportOutput = "" })

	if err := exportCmd.RunE(exportCmd, []string{"json"}); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	// Import into a fresh database
	setupCLI(t)
	if err := importCmd.RunE(importCmd, []string{out}); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	now := time.Now().UTC()
	events, err := repo.ListEvents("local", now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 imported event, got %d", len(events))
	}
}
