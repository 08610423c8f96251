// ABOUTME: Export and import functionality for the calorie ledger.
// ABOUTME: Supports JSON and YAML export formats.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/calbal/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for the ledger.
type ExportData struct {
	Version    string                     `json:"version" yaml:"version"`
	ExportedAt time.Time                  `json:"exported_at" yaml:"exported_at"`
	Tool       string                     `json:"tool" yaml:"tool"`
	Events     []*models.CalorieEvent     `json:"events" yaml:"events"`
	Goals      []*models.CalorieGoal      `json:"goals" yaml:"goals"`
	Profiles   []*models.MetabolicProfile `json:"profiles" yaml:"profiles"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	users, err := d.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "calbal",
	}

	for _, u := range users {
		events, err := d.ListAllEvents(u)
		if err != nil {
			return nil, fmt.Errorf("list events for %s: %w", u, err)
		}
		data.Events = append(data.Events, events...)

		goals, err := d.ListGoals(u)
		if err != nil {
			return nil, fmt.Errorf("list goals for %s: %w", u, err)
		}
		data.Goals = append(data.Goals, goals...)

		profiles, err := d.ListProfiles(u)
		if err != nil {
			return nil, fmt.Errorf("list profiles for %s: %w", u, err)
		}
		data.Profiles = append(data.Profiles, profiles...)
	}

	return data, nil
}

// ImportData imports data from an export file. Events are validated at
// the boundary like any other ingestion path.
func (d *DB) ImportData(data *ExportData) error {
	for _, e := range data.Events {
		if err := d.AppendEvent(e); err != nil {
			return fmt.Errorf("import event: %w", err)
		}
	}

	// Goals arrive newest-first from export; replay oldest-first so the
	// final active goal wins its CAS.
	for i := len(data.Goals) - 1; i >= 0; i-- {
		g := data.Goals[i]
		if !g.IsActive {
			if err := d.insertInactiveGoal(g); err != nil {
				return fmt.Errorf("import goal: %w", err)
			}
			continue
		}
		current, err := d.GetActiveGoal(g.UserID)
		if err != nil {
			return fmt.Errorf("import goal: %w", err)
		}
		expected := ""
		if current != nil {
			expected = current.ID.String()
		}
		if err := d.ActivateGoal(g, expected); err != nil {
			return fmt.Errorf("import goal: %w", err)
		}
	}

	for i := len(data.Profiles) - 1; i >= 0; i-- {
		if err := d.SaveProfile(data.Profiles[i]); err != nil {
			return fmt.Errorf("import profile: %w", err)
		}
	}

	return nil
}

// insertInactiveGoal stores historical (already deactivated) goals
// without touching the active-goal invariant.
func (d *DB) insertInactiveGoal(g *models.CalorieGoal) error {
	var endDate *string
	if g.EndDate != nil {
		s := g.EndDate.UTC().Format(time.RFC3339)
		endDate = &s
	}
	_, err := d.db.Exec(`
		INSERT INTO goals (id, user_id, goal_type, daily_calorie_target, weekly_change_kg,
			start_weight_kg, target_weight_kg, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
	`,
		g.ID.String(), g.UserID, string(g.GoalType), g.DailyCalorieTarget, g.WeeklyChangeKg,
		g.StartWeightKg, g.TargetWeightKg, g.StartDate.UTC().Format(time.RFC3339), endDate,
		g.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML, with events grouped by type.
func (d *DB) ExportYAML() ([]byte, error) {
	data, err := d.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string                 `yaml:"version"`
		ExportedAt string                 `yaml:"exported_at"`
		Tool       string                 `yaml:"tool"`
		Events     map[string][]yamlEvent `yaml:"events"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Events:     make(map[string][]yamlEvent),
	}

	for _, e := range data.Events {
		et := string(e.EventType)
		yamlData.Events[et] = append(yamlData.Events[et], yamlEvent{
			ID:        e.ID.String()[:8],
			UserID:    e.UserID,
			Amount:    e.Amount,
			Unit:      models.EventUnits[e.EventType],
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Source:    string(e.Source),
		})
	}

	return yaml.Marshal(yamlData)
}

type yamlEvent struct {
	ID        string  `yaml:"id"`
	UserID    string  `yaml:"user_id"`
	Amount    float64 `yaml:"amount"`
	Unit      string  `yaml:"unit"`
	Timestamp string  `yaml:"timestamp"`
	Source    string  `yaml:"source"`
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(&exportData)
}
