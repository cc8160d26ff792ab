package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Athletes: heart rate profile plus Strava credentials. The
		// profile is written once at onboarding; token columns are
		// rewritten on every refresh.
		`CREATE TABLE IF NOT EXISTS athletes (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			resting_hr INTEGER NOT NULL,
			max_hr INTEGER NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Per-activity zone summaries, one row per (athlete, activity).
		// Upserts are last-write-wins so webhook replays are harmless.
		`CREATE TABLE IF NOT EXISTS activity_records (
			athlete_id INTEGER NOT NULL,
			activity_id INTEGER NOT NULL,
			z1 REAL NOT NULL DEFAULT 0,
			z2 REAL NOT NULL DEFAULT 0,
			z3 REAL NOT NULL DEFAULT 0,
			z4 REAL NOT NULL DEFAULT 0,
			z5 REAL NOT NULL DEFAULT 0,
			sport TEXT NOT NULL,
			total_time REAL NOT NULL,
			date TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, activity_id),
			FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activity_records_athlete ON activity_records(athlete_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_records_date ON activity_records(date)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
