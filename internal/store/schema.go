package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SchemaVersion is the version InitSchema migrates to.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
-- Historical series per country (split-orient JSON)
CREATE TABLE IF NOT EXISTS countries (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    series TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Technology catalog (one JSON record per technology)
CREATE TABLE IF NOT EXISTS technologies (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    record TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Saved simulation paths
CREATE TABLE IF NOT EXISTS paths (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    author TEXT,
    country_code TEXT NOT NULL,
    starting_year INTEGER NOT NULL,
    ending_year INTEGER NOT NULL,
    cleantech_ids TEXT NOT NULL,          -- JSON array, sorted
    country_df TEXT NOT NULL,             -- reduced trajectory, split JSON
    country_df_full TEXT,                 -- full trajectory, split JSON
    total_sim_emissions INTEGER NOT NULL,
    max_carbon_free_electricity INTEGER NOT NULL,
    est_degree_rise REAL NOT NULL,
    carbon_zero_year INTEGER NOT NULL,
    cleantech_annual_output TEXT,         -- JSON array
    include_with_profile INTEGER DEFAULT 0,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_paths_author ON paths(author);
CREATE INDEX IF NOT EXISTS idx_paths_country ON paths(country_code);
CREATE INDEX IF NOT EXISTS idx_paths_created ON paths(created_at);

-- Schema version
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);
`

// migrations[i] upgrades a database from version i to i+1.
var migrations = []string{schemaV1}

// InitSchema brings db up to SchemaVersion. Existing databases are
// integrity-checked first.
func InitSchema(ctx context.Context, db *sql.DB) error {
	current, err := schemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	if current > 0 {
		if err := ValidateIntegrity(ctx, db); err != nil {
			return fmt.Errorf("database integrity check failed: %w", err)
		}
	}
	for v := current; v < SchemaVersion; v++ {
		if err := migrate(ctx, db, v); err != nil {
			return fmt.Errorf("failed to migrate schema to v%d: %w", v+1, err)
		}
	}
	return nil
}

// schemaVersion returns 0 for a database without the version table.
func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	var version sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(version.Int64), nil
}

// migrate applies migrations[from] and records the new version in one
// transaction.
func migrate(ctx context.Context, db *sql.DB, from int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migrations[from]); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, from+1); err != nil {
		return err
	}
	return tx.Commit()
}

// ValidateIntegrity runs PRAGMA integrity_check.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	var problems []string
	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("failed to run integrity_check: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return err
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("integrity_check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}
