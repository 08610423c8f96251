// ABOUTME: Append-only event ledger operations for SQLite storage.
// ABOUTME: Events are immutable; corrections are new events, never edits.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/calbal/internal/models"
)

// AppendEvent stores a new event in the ledger after boundary validation.
// There is deliberately no update or delete path for events.
func (d *DB) AppendEvent(e *models.CalorieEvent) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("append event: %w", err)
	}

	var metadata *string
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("encode event metadata: %w", err)
		}
		s := string(raw)
		metadata = &s
	}

	query := `
		INSERT INTO events (id, user_id, event_type, amount, timestamp, source, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		e.ID.String(),
		e.UserID,
		string(e.EventType),
		e.Amount,
		e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Source),
		metadata,
		e.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEvents retrieves a user's events within [start, end), oldest
// first, optionally filtered to specific event types.
func (d *DB) ListEvents(userID string, start, end time.Time, types ...models.EventType) ([]*models.CalorieEvent, error) {
	query := `
		SELECT id, user_id, event_type, amount, timestamp, source, metadata, created_at
		FROM events
		WHERE user_id = ? AND timestamp >= ? AND timestamp < ?
	`
	args := []interface{}{userID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339)}

	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += fmt.Sprintf(" AND event_type IN (%s)", strings.Join(placeholders, ", "))
	}

	query += " ORDER BY timestamp ASC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	return d.scanEvents(rows)
}

// ListAllEvents retrieves every event for a user, oldest first. Export
// and the sync mirror go through this: they must see the whole ledger,
// not a window of it.
func (d *DB) ListAllEvents(userID string) ([]*models.CalorieEvent, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, event_type, amount, timestamp, source, metadata, created_at
		FROM events
		WHERE user_id = ?
		ORDER BY timestamp ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list all events: %w", err)
	}
	defer rows.Close()

	return d.scanEvents(rows)
}

// LatestWeight returns the most recent weight measurement for a user,
// or nil when none has been recorded.
func (d *DB) LatestWeight(userID string) (*models.CalorieEvent, error) {
	query := `
		SELECT id, user_id, event_type, amount, timestamp, source, metadata, created_at
		FROM events
		WHERE user_id = ? AND event_type = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`
	row := d.db.QueryRow(query, userID, string(models.EventWeightMeasurement))
	e, err := scanEventRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("latest weight: %w", err)
	}
	return e, nil
}

// HasEventOn reports whether the user already has an event of the given
// type within the UTC day containing date. Used by the BMR synthesizer
// to stay idempotent per day.
func (d *DB) HasEventOn(userID string, eventType models.EventType, date time.Time) (bool, error) {
	date = date.UTC()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE user_id = ? AND event_type = ? AND timestamp >= ? AND timestamp < ?`,
		userID, string(eventType),
		dayStart.Format(time.RFC3339), dayEnd.Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check event on %s: %w", dayStart.Format("2006-01-02"), err)
	}
	return count > 0, nil
}

// ListUsers returns the distinct user IDs present in the ledger.
func (d *DB) ListUsers() ([]string, error) {
	rows, err := d.db.Query(`SELECT DISTINCT user_id FROM events ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEventRow(row rowScanner) (*models.CalorieEvent, error) {
	var e models.CalorieEvent
	var idStr, eventType, timestamp, source, createdAt string
	var metadata sql.NullString

	err := row.Scan(&idStr, &e.UserID, &eventType, &e.Amount, &timestamp, &source, &metadata, &createdAt)
	if err != nil {
		return nil, err
	}

	e.ID, _ = uuid.Parse(idStr)
	e.EventType = models.EventType(eventType)
	e.Source = models.EventSource(source)
	e.Timestamp, _ = time.Parse(time.RFC3339, timestamp)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
			return nil, fmt.Errorf("decode event metadata: %w", err)
		}
	}

	return &e, nil
}

func (d *DB) scanEvents(rows *sql.Rows) ([]*models.CalorieEvent, error) {
	var events []*models.CalorieEvent
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
