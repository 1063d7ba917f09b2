package sink

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per detection
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			previous TEXT NOT NULL DEFAULT '',
			next TEXT NOT NULL DEFAULT '',
			theta REAL NOT NULL,
			sigma_s REAL NOT NULL,
			temperature REAL,
			iterations INTEGER NOT NULL,
			seed TEXT NOT NULL CHECK(seed IN ('difference', 'fixed')),
			update_order TEXT NOT NULL CHECK(update_order IN ('in-place', 'synchronous')),
			summary TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Grids table - difference maps and masks as PNG blobs
		`CREATE TABLE IF NOT EXISTS grids (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			moving INTEGER NOT NULL DEFAULT 0,
			png BLOB NOT NULL,
			UNIQUE(run_id, name)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_grids_run_id ON grids(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
