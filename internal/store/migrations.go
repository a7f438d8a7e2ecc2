package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Reference ranges table - one calibrated [min, max] angle interval
		// per exercise/phase/joint. An empty phase marks a whole-movement
		// range.
		`CREATE TABLE IF NOT EXISTS reference_ranges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise TEXT NOT NULL,
			phase TEXT NOT NULL DEFAULT '',
			joint TEXT NOT NULL,
			min REAL NOT NULL,
			max REAL NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(exercise, phase, joint)
		)`,

		// Sessions table - one row per finished workout bout.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			reps INTEGER NOT NULL DEFAULT 0,
			hold_seconds REAL NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		// Settings table - application settings as key-value pairs.
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_reference_ranges_exercise ON reference_ranges(exercise)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_exercise ON sessions(exercise)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
