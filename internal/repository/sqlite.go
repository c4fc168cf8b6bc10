package repository

import (
	"context"
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// Repository provides data access methods backed by sqlite
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// SQLite works best with a single connection; it also serializes the
	// multi-statement transactions the inspection invariants rely on.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			number TEXT NOT NULL,
			name TEXT,
			current_event_key TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			uid TEXT PRIMARY KEY,
			display_name TEXT,
			email TEXT,
			last_team_id TEXT,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS checklist_templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			version TEXT NOT NULL,
			year INTEGER,
			type TEXT NOT NULL DEFAULT 'general',
			elements TEXT,
			is_active BOOLEAN DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			created_by TEXT,
			activated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS template_versions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			template_id TEXT NOT NULL,
			version TEXT NOT NULL,
			snapshot TEXT NOT NULL,
			created_at DATETIME,
			FOREIGN KEY (template_id) REFERENCES checklist_templates(id)
		)`,
		`CREATE TABLE IF NOT EXISTS inspections (
			id TEXT PRIMARY KEY,
			team_id TEXT NOT NULL,
			template_id TEXT,
			template_version TEXT,
			event_key TEXT,
			match_key TEXT,
			battery_number TEXT,
			inspector TEXT NOT NULL,
			notes TEXT,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			status TEXT NOT NULL DEFAULT 'in-progress',
			results TEXT,
			responses TEXT,
			critical_failures TEXT,
			is_latest BOOLEAN DEFAULT 1,
			previous_batteries TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS match_preparations (
			team_id TEXT NOT NULL,
			match_key TEXT NOT NULL,
			inspection_completed BOOLEAN DEFAULT 0,
			inspection_id TEXT,
			battery_number TEXT,
			last_updated DATETIME,
			PRIMARY KEY (team_id, match_key)
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_team_status ON inspections(team_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_team_match ON inspections(team_id, match_key)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_team_event ON inspections(team_id, event_key)`,
		`CREATE INDEX IF NOT EXISTS idx_inspections_team_battery ON inspections(team_id, battery_number)`,
		`CREATE INDEX IF NOT EXISTS idx_template_versions_template ON template_versions(template_id)`,
		`CREATE INDEX IF NOT EXISTS idx_templates_active ON checklist_templates(is_active)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// GetSetting returns a setting value, or ErrNotFound
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting stores a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}
