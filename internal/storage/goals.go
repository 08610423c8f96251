// ABOUTME: Goal storage with compare-and-swap activation.
// ABOUTME: A partial unique index guarantees at most one active goal per user.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/calbal/internal/models"
)

// ErrGoalConflict is returned when a concurrent activation won the
// race. Retryable: re-read the active goal and try again.
var ErrGoalConflict = errors.New("goal activation conflict")

// ActivateGoal stores the goal and makes it the user's single active
// goal in one transaction. expectedActiveID is the optimistic
// precondition: the ID of the goal the caller believes is currently
// active, or empty when the caller saw none. A mismatch means another
// writer activated a goal in between and yields ErrGoalConflict.
func (d *DB) ActivateGoal(g *models.CalorieGoal, expectedActiveID string) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("activate goal: %w", err)
	}

	// Serialize in-process activations so the CAS check and the write
	// happen atomically; the partial unique index covers other
	// processes sharing the database file.
	d.goalMu.Lock()
	defer d.goalMu.Unlock()

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("activate goal: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var currentID sql.NullString
	err = tx.QueryRow(`SELECT id FROM goals WHERE user_id = ? AND is_active = 1`, g.UserID).Scan(&currentID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("activate goal: %w", err)
	}

	switch {
	case !currentID.Valid && expectedActiveID != "":
		return fmt.Errorf("%w: expected %s active, found none", ErrGoalConflict, expectedActiveID)
	case currentID.Valid && currentID.String != expectedActiveID:
		return fmt.Errorf("%w: expected %q active, found %s", ErrGoalConflict, expectedActiveID, currentID.String)
	}

	if currentID.Valid {
		if _, err := tx.Exec(`UPDATE goals SET is_active = 0 WHERE id = ?`, currentID.String); err != nil {
			return fmt.Errorf("deactivate prior goal: %w", err)
		}
	}

	var endDate *string
	if g.EndDate != nil {
		s := g.EndDate.UTC().Format(time.RFC3339)
		endDate = &s
	}

	_, err = tx.Exec(`
		INSERT INTO goals (id, user_id, goal_type, daily_calorie_target, weekly_change_kg,
			start_weight_kg, target_weight_kg, start_date, end_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
	`,
		g.ID.String(),
		g.UserID,
		string(g.GoalType),
		g.DailyCalorieTarget,
		g.WeeklyChangeKg,
		g.StartWeightKg,
		g.TargetWeightKg,
		g.StartDate.UTC().Format(time.RFC3339),
		endDate,
		g.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		// The partial unique index is the backstop if two transactions
		// interleave despite the CAS check.
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %v", ErrGoalConflict, err)
		}
		return fmt.Errorf("activate goal: %w", err)
	}

	g.IsActive = true
	return tx.Commit()
}

// GetActiveGoal returns the user's active goal, or nil when none is
// configured.
func (d *DB) GetActiveGoal(userID string) (*models.CalorieGoal, error) {
	row := d.db.QueryRow(`
		SELECT id, user_id, goal_type, daily_calorie_target, weekly_change_kg,
			start_weight_kg, target_weight_kg, start_date, end_date, is_active, created_at
		FROM goals
		WHERE user_id = ? AND is_active = 1
	`, userID)

	g, err := scanGoal(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get active goal: %w", err)
	}
	return g, nil
}

// ListGoals returns all of a user's goals, newest first.
func (d *DB) ListGoals(userID string) ([]*models.CalorieGoal, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, goal_type, daily_calorie_target, weekly_change_kg,
			start_weight_kg, target_weight_kg, start_date, end_date, is_active, created_at
		FROM goals
		WHERE user_id = ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.CalorieGoal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func scanGoal(row rowScanner) (*models.CalorieGoal, error) {
	var g models.CalorieGoal
	var idStr, goalType, startDate, createdAt string
	var endDate sql.NullString
	var isActive int

	err := row.Scan(&idStr, &g.UserID, &goalType, &g.DailyCalorieTarget, &g.WeeklyChangeKg,
		&g.StartWeightKg, &g.TargetWeightKg, &startDate, &endDate, &isActive, &createdAt)
	if err != nil {
		return nil, err
	}

	g.ID, _ = uuid.Parse(idStr)
	g.GoalType = models.GoalType(goalType)
	g.StartDate, _ = time.Parse(time.RFC3339, startDate)
	g.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	g.IsActive = isActive == 1
	if endDate.Valid {
		t, _ := time.Parse(time.RFC3339, endDate.String)
		g.EndDate = &t
	}

	return &g, nil
}
