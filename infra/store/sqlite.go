package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"

	"github.com/velosched/velosched/core/model"
)

// SQLite persists the repository in a SQLite database. Practice records are
// stored as JSON documents with the date and deleted flag lifted into
// indexed columns; riders, coaches and settings follow the same shape.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates the database at path and ensures the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
CREATE TABLE IF NOT EXISTS practices (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    deleted INTEGER NOT NULL DEFAULT 0,
    record TEXT NOT NULL,
    seq INTEGER
);
CREATE INDEX IF NOT EXISTS practices_date ON practices(date);
CREATE TABLE IF NOT EXISTS riders (
    id TEXT PRIMARY KEY,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS coaches (
    id TEXT PRIMARY KEY,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS season_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    record TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// ListPractices returns every record in insertion order, tombstones included.
func (s *SQLite) ListPractices(ctx context.Context) ([]model.Practice, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM practices ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Practice
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var p model.Practice
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode practice: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePractice stores p under a fresh id.
func (s *SQLite) CreatePractice(ctx context.Context, p model.Practice) (model.Practice, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return model.Practice{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO practices (id, date, deleted, record, seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM practices))`,
		p.ID, string(p.Date), boolInt(p.Deleted), string(raw))
	if err != nil {
		return model.Practice{}, err
	}
	return p, nil
}

// UpdatePractice overwrites the stored record.
func (s *SQLite) UpdatePractice(ctx context.Context, p model.Practice) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE practices SET date = ?, deleted = ?, record = ? WHERE id = ?`,
		string(p.Date), boolInt(p.Deleted), string(raw), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res, p.ID)
}

// SoftDeletePractice marks the record as a tombstone.
func (s *SQLite) SoftDeletePractice(ctx context.Context, id string) error {
	p, err := s.getPractice(ctx, id)
	if err != nil {
		return err
	}
	p.Deleted = true
	return s.UpdatePractice(ctx, p)
}

// DeletePractice removes the record outright.
func (s *SQLite) DeletePractice(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM practices WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// SaveRider inserts or replaces a rider.
func (s *SQLite) SaveRider(ctx context.Context, r model.Rider) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO riders (id, record) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`, r.ID, string(raw))
	return err
}

// SaveCoach inserts or replaces a coach.
func (s *SQLite) SaveCoach(ctx context.Context, c model.Coach) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO coaches (id, record) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`, c.ID, string(raw))
	return err
}

// ListRiders returns the rider roster.
func (s *SQLite) ListRiders(ctx context.Context) ([]model.Rider, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM riders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Rider
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r model.Rider
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode rider: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListCoaches returns the coach roster.
func (s *SQLite) ListCoaches(ctx context.Context) ([]model.Coach, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM coaches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Coach
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var c model.Coach
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode coach: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetSeasonSettings stores the season window and rules.
func (s *SQLite) SetSeasonSettings(ctx context.Context, settings model.SeasonSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO season_settings (id, record) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET record = excluded.record`, string(raw))
	return err
}

// SeasonSettings returns the stored season window and rules. An empty store
// yields zero settings.
func (s *SQLite) SeasonSettings(ctx context.Context) (model.SeasonSettings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM season_settings WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SeasonSettings{}, nil
	}
	if err != nil {
		return model.SeasonSettings{}, err
	}
	var settings model.SeasonSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return model.SeasonSettings{}, fmt.Errorf("decode season settings: %w", err)
	}
	return settings, nil
}

func (s *SQLite) getPractice(ctx context.Context, id string) (model.Practice, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM practices WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Practice{}, fmt.Errorf("practice %s not found", id)
	}
	if err != nil {
		return model.Practice{}, err
	}
	var p model.Practice
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.Practice{}, fmt.Errorf("decode practice: %w", err)
	}
	return p, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("practice %s not found", id)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
