package storage

import "fmt"

// Current schema version
const schemaVersion = 4

// migrations are applied in order on top of the base schema. A migration
// that adds a column is skipped when the column is already there.
var migrations = []struct {
	version     int
	description string
	column      [2]string // table, column added by up
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
	},
	{
		version:     2,
		description: "Add file_hash column for exact matching",
		column:      [2]string{"images", "file_hash"},
		up: `
			ALTER TABLE images ADD COLUMN file_hash TEXT DEFAULT '';
			CREATE INDEX IF NOT EXISTS idx_images_file_hash ON images(file_hash);
		`,
	},
	{
		version:     3,
		description: "Add words table for the dictionary",
		up: `
			CREATE TABLE IF NOT EXISTS words (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				word TEXT UNIQUE NOT NULL,
				source TEXT DEFAULT '',
				added_at INTEGER NOT NULL
			);
		`,
	},
	{
		version:     4,
		description: "Add run_id to scan history",
		column:      [2]string{"scan_history", "run_id"},
		up: `
			ALTER TABLE scan_history ADD COLUMN run_id TEXT;
			CREATE UNIQUE INDEX IF NOT EXISTS idx_scan_history_run_id ON scan_history(run_id);
		`,
	},
}

// init creates the database schema
func (s *Storage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// mod_time and scanned_at hold Unix time so they round-trip without
	// depending on the driver's datetime parsing.
	schema := `
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		hash INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		format TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		has_exif INTEGER DEFAULT 0,
		score REAL NOT NULL,
		group_id INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_images_hash ON images(hash);
	CREATE INDEX IF NOT EXISTS idx_images_group_id ON images(group_id);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		scanned_at INTEGER NOT NULL,
		total_images INTEGER NOT NULL,
		total_groups INTEGER NOT NULL,
		total_duplicates INTEGER NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		skip := m.up == "" || (m.column[0] != "" && s.columnExists(m.column[0], m.column[1]))
		if !skip {
			if _, err := s.db.Exec(m.up); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
			}
		}

		if err := s.setSchemaVersion(m.version); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (s *Storage) setSchemaVersion(version int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
	return err
}

// columnExists checks if a column exists in a table
func (s *Storage) columnExists(table, column string) bool {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}
