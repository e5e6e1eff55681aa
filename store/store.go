package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/maastricht-university/voice-analysis/analysis"
)

var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	audioPath  TEXT NOT NULL,
	gender     TEXT,
	mood       TEXT,
	f0Mean     REAL NOT NULL,
	pppScore   REAL NOT NULL,
	body       TEXT NOT NULL,
	createdAt  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_created ON reports(createdAt);
`

// Store keeps a history of analysis reports in SQLite.
type Store struct {
	db *sql.DB
}

// Summary is one row of the history listing.
type Summary struct {
	ID        string
	AudioPath string
	Gender    string
	Mood      string
	F0Mean    float64
	PPPScore  float64
	CreatedAt time.Time
}

// Open opens (and creates if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts or replaces a report.
func (s *Store) Save(ctx context.Context, r *analysis.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, audioPath, gender, mood, f0Mean, pppScore, body, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.AudioPath, nullable(string(r.GenderMood.Gender)), nullable(string(r.GenderMood.Mood)),
		r.Stats.F0Mean, r.PPPScore, string(body), unixFromTime(r.GeneratedAt))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get returns the full report stored under id.
func (s *Store) Get(ctx context.Context, id string) (*analysis.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	var r analysis.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// List returns the most recent reports, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, audioPath, gender, mood, f0Mean, pppScore, createdAt
		FROM reports
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var gender, mood sql.NullString
		var createdAt float64
		if err := rows.Scan(&sm.ID, &sm.AudioPath, &gender, &mood, &sm.F0Mean, &sm.PPPScore, &createdAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sm.Gender = gender.String
		sm.Mood = mood.String
		sm.CreatedAt = timeFromUnix(createdAt)
		out = append(out, sm)
	}
	return out, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
