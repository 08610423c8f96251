// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for events, goals, and metabolic profiles.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		amount REAL NOT NULL,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		goal_type TEXT NOT NULL,
		daily_calorie_target REAL NOT NULL,
		weekly_change_kg REAL NOT NULL,
		start_weight_kg REAL NOT NULL,
		target_weight_kg REAL NOT NULL,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		bmr_calories REAL NOT NULL,
		tdee_calories REAL NOT NULL,
		activity_level TEXT NOT NULL,
		method TEXT NOT NULL,
		accuracy_score REAL NOT NULL,
		calculated_at DATETIME NOT NULL,
		superseded_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_events_user_ts ON events(user_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_user_type_ts ON events(user_id, event_type, timestamp);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_goals_one_active ON goals(user_id) WHERE is_active = 1;
	CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_profiles_current ON profiles(user_id) WHERE superseded_at IS NULL;
	`

	_, err := d.db.Exec(schema)
	return err
}
