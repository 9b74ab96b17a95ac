package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/allcarbonfree/carbonpath/internal/models"
	_ "modernc.org/sqlite" // SQLite driver
)

// timeFormat keeps stored timestamps lexically ordered.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dir    string
	dbPath string
}

// NewSQLiteStore opens (creating if needed) dir/carbonpath.db.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dir: dir, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.dbPath }

// PutCountry inserts or replaces a country series.
func (s *SQLiteStore) PutCountry(ctx context.Context, c models.Country) error {
	if c.Code == "" {
		return fmt.Errorf("country code is required")
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO countries (code, name, series, updated_at)
		VALUES (?, ?, ?, ?)
	`, c.Code, c.Name, string(c.Series), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save country %s: %w", c.Code, err)
	}
	return nil
}

// GetCountry returns a country by code.
func (s *SQLiteStore) GetCountry(ctx context.Context, code string) (*models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT code, name, series, updated_at FROM countries WHERE code = ?`, code)
	c, err := scanCountry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("country %s: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get country %s: %w", code, err)
	}
	return c, nil
}

// ListCountries returns every country ordered by code.
func (s *SQLiteStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT code, name, series, updated_at FROM countries ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// PutTechnology inserts or replaces a technology record.
func (s *SQLiteStore) PutTechnology(ctx context.Context, t models.TechnologyRecord) error {
	if t.ID == "" {
		return fmt.Errorf("technology ID is required")
	}
	record, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to encode technology %s: %w", t.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO technologies (id, name, record, updated_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, string(record), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save technology %s: %w", t.ID, err)
	}
	return nil
}

// GetTechnology returns a technology record by id.
func (s *SQLiteStore) GetTechnology(ctx context.Context, id string) (*models.TechnologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM technologies WHERE id = ?`, id).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("technology %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get technology %s: %w", id, err)
	}

	var t models.TechnologyRecord
	if err := json.Unmarshal([]byte(record), &t); err != nil {
		return nil, fmt.Errorf("failed to decode technology %s: %w", id, err)
	}
	return &t, nil
}

// ListTechnologies returns every technology record ordered by id.
func (s *SQLiteStore) ListTechnologies(ctx context.Context) ([]models.TechnologyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, record FROM technologies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query technologies: %w", err)
	}
	defer rows.Close()

	var out []models.TechnologyRecord
	for rows.Next() {
		var id, record string
		if err := rows.Scan(&id, &record); err != nil {
			return nil, fmt.Errorf("failed to scan technology: %w", err)
		}
		var t models.TechnologyRecord
		if err := json.Unmarshal([]byte(record), &t); err != nil {
			return nil, fmt.Errorf("failed to decode technology %s: %w", id, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTechnology removes a technology record.
func (s *SQLiteStore) DeleteTechnology(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteByID(ctx, s.db, `DELETE FROM technologies WHERE id = ?`, "technology", id)
}

// SavePath inserts or replaces a path.
func (s *SQLiteStore) SavePath(ctx context.Context, p models.PathRecord) error {
	if p.ID == "" {
		return fmt.Errorf("path ID is required")
	}
	cleantechIDs, err := json.Marshal(nonNil(p.CleantechIDs))
	if err != nil {
		return fmt.Errorf("failed to encode cleantech ids: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO paths (
			id, name, author, country_code, starting_year, ending_year,
			cleantech_ids, country_df, country_df_full,
			total_sim_emissions, max_carbon_free_electricity, est_degree_rise, carbon_zero_year,
			cleantech_annual_output, include_with_profile, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.Name, nullString(p.Author), p.CountryCode, p.StartingYear, p.EndingYear,
		string(cleantechIDs), string(p.CountryDF), nullBytes(p.CountryDFFull),
		p.TotalSimEmissions, p.MaxCarbonFreeElectricity, p.EstDegreeRise, p.CarbonZeroYear,
		nullBytes(p.CleantechAnnualOutput), boolToInt(p.IncludeWithProfile), formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save path %s: %w", p.ID, err)
	}
	return nil
}

const pathColumns = `id, name, author, country_code, starting_year, ending_year,
	cleantech_ids, country_df, country_df_full,
	total_sim_emissions, max_carbon_free_electricity, est_degree_rise, carbon_zero_year,
	cleantech_annual_output, include_with_profile, created_at`

// GetPath returns a path by id.
func (s *SQLiteStore) GetPath(ctx context.Context, id string) (*models.PathRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+pathColumns+` FROM paths WHERE id = ?`, id)
	p, err := scanPath(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("path %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get path %s: %w", id, err)
	}
	return p, nil
}

// ListPaths returns matching paths, newest first.
func (s *SQLiteStore) ListPaths(ctx context.Context, filter PathFilter) ([]models.PathRecord, error) {
	query := `SELECT ` + pathColumns + ` FROM paths WHERE 1=1`
	var args []any
	if filter.Author != "" {
		query += ` AND author = ?`
		args = append(args, filter.Author)
	}
	if filter.CountryCode != "" {
		query += ` AND country_code = ?`
		args = append(args, filter.CountryCode)
	}
	if filter.ProfileOnly {
		query += ` AND include_with_profile = 1`
	}
	query += ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query paths: %w", err)
	}
	defer rows.Close()

	var out []models.PathRecord
	for rows.Next() {
		p, err := scanPath(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeletePath removes a path.
func (s *SQLiteStore) DeletePath(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteByID(ctx, s.db, `DELETE FROM paths WHERE id = ?`, "path", id)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(r rowScanner) (*models.Country, error) {
	var c models.Country
	var series, updatedAt string
	if err := r.Scan(&c.Code, &c.Name, &series, &updatedAt); err != nil {
		return nil, err
	}
	c.Series = json.RawMessage(series)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func scanPath(r rowScanner) (*models.PathRecord, error) {
	var p models.PathRecord
	var author, full, output sql.NullString
	var cleantechIDs, countryDF, createdAt string
	var profile int
	err := r.Scan(
		&p.ID, &p.Name, &author, &p.CountryCode, &p.StartingYear, &p.EndingYear,
		&cleantechIDs, &countryDF, &full,
		&p.TotalSimEmissions, &p.MaxCarbonFreeElectricity, &p.EstDegreeRise, &p.CarbonZeroYear,
		&output, &profile, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(cleantechIDs), &p.CleantechIDs); err != nil {
		return nil, fmt.Errorf("failed to decode cleantech ids of %s: %w", p.ID, err)
	}
	p.Author = author.String
	p.CountryDF = json.RawMessage(countryDF)
	if full.Valid {
		p.CountryDFFull = json.RawMessage(full.String)
	}
	if output.Valid {
		p.CleantechAnnualOutput = json.RawMessage(output.String)
	}
	p.IncludeWithProfile = profile != 0
	p.CreatedAt = parseTime(createdAt)
	return &p, nil
}

func deleteByID(ctx context.Context, db *sql.DB, query, kind, id string) error {
	res, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullBytes(b []byte) sql.NullString {
	if len(b) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
