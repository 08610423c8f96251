// ABOUTME: Metabolic profile storage with supersession history.
// ABOUTME: Old profiles are marked superseded, never deleted.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/calbal/internal/models"
)

// SaveProfile stores a new profile snapshot and supersedes the user's
// current one in the same transaction. History is retained for trend
// analysis.
func (d *DB) SaveProfile(p *models.MetabolicProfile) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`UPDATE profiles SET superseded_at = ? WHERE user_id = ? AND superseded_at IS NULL`,
		now, p.UserID,
	); err != nil {
		return fmt.Errorf("supersede prior profile: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO profiles (id, user_id, bmr_calories, tdee_calories, activity_level,
			method, accuracy_score, calculated_at, superseded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`,
		p.ID.String(),
		p.UserID,
		p.BMRCalories,
		p.TDEECalories,
		string(p.ActivityLevel),
		p.Method,
		p.AccuracyScore,
		p.CalculatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	return tx.Commit()
}

// GetMetabolicProfile returns the user's current profile, or nil when
// none has been calculated.
func (d *DB) GetMetabolicProfile(userID string) (*models.MetabolicProfile, error) {
	row := d.db.QueryRow(`
		SELECT id, user_id, bmr_calories, tdee_calories, activity_level,
			method, accuracy_score, calculated_at, superseded_at
		FROM profiles
		WHERE user_id = ? AND superseded_at IS NULL
	`, userID)

	p, err := scanProfile(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get metabolic profile: %w", err)
	}
	return p, nil
}

// ListProfiles returns a user's profile history, newest first.
func (d *DB) ListProfiles(userID string) ([]*models.MetabolicProfile, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, bmr_calories, tdee_calories, activity_level,
			method, accuracy_score, calculated_at, superseded_at
		FROM profiles
		WHERE user_id = ?
		ORDER BY calculated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*models.MetabolicProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func scanProfile(row rowScanner) (*models.MetabolicProfile, error) {
	var p models.MetabolicProfile
	var idStr, activityLevel, calculatedAt string
	var supersededAt sql.NullString

	err := row.Scan(&idStr, &p.UserID, &p.BMRCalories, &p.TDEECalories, &activityLevel,
		&p.Method, &p.AccuracyScore, &calculatedAt, &supersededAt)
	if err != nil {
		return nil, err
	}

	p.ID, _ = uuid.Parse(idStr)
	p.ActivityLevel = models.ActivityLevel(activityLevel)
	p.CalculatedAt, _ = time.Parse(time.RFC3339, calculatedAt)
	if supersededAt.Valid {
		t, _ := time.Parse(time.RFC3339, supersededAt.String)
		p.SupersededAt = &t
	}

	return &p, nil
}
