// Package history keeps a local log of clipboard conversions in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DirectionToMarkdown = "to-markdown"
	DirectionToRich     = "to-rich"

	StatusOK     = "ok"
	StatusFailed = "failed"

	DefaultRetention = 30 * 24 * time.Hour

	previewLength = 80
)

const selectEntriesWhere = `SELECT
		id,
		direction,
		source,
		status,
		error_kind,
		input_bytes,
		output_bytes,
		preview,
		created_at
	FROM conversions WHERE 1=1
	`

type Entry struct {
	ID          string    `json:"id" yaml:"id"`
	Direction   string    `json:"direction" yaml:"direction"`
	Source      string    `json:"source" yaml:"source"`
	Status      string    `json:"status" yaml:"status"`
	ErrorKind   string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	InputBytes  int       `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int       `json:"output_bytes" yaml:"output_bytes"`
	Preview     string    `json:"preview,omitempty" yaml:"preview,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

type Store struct {
	db        *sql.DB
	retention time.Duration
}

// Open opens (and creates if needed) the history database at dbPath.
// Entries older than retention are pruned on every Record; zero keeps
// everything.
func Open(dbPath string, retention time.Duration) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, retention: retention}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id TEXT PRIMARY KEY,
			direction TEXT NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT NOT NULL DEFAULT '',
			input_bytes INTEGER NOT NULL DEFAULT 0,
			output_bytes INTEGER NOT NULL DEFAULT 0,
			preview TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_created_at ON conversions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_direction ON conversions(direction)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultPath returns the history database location under the user cache
// directory.
func DefaultPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "mdclip", "history.db")
}

// Record stores e, filling in ID and CreatedAt when they are empty.
func (s *Store) Record(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO conversions
		(id, direction, source, status, error_kind, input_bytes, output_bytes, preview, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		e.ID,
		e.Direction,
		e.Source,
		e.Status,
		e.ErrorKind,
		e.InputBytes,
		e.OutputBytes,
		e.Preview,
		e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	if s.retention > 0 {
		if _, err := s.PruneBefore(time.Now().Add(-s.retention)); err != nil {
			return err
		}
	}

	return nil
}

// List returns the newest entries first. An empty direction matches all;
// limit <= 0 means no limit.
func (s *Store) List(limit int, direction string) ([]Entry, error) {
	query := selectEntriesWhere
	args := []any{}

	if direction != "" {
		query += " AND direction = ?"
		args = append(args, direction)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := e.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (e *Entry) scan(rows *sql.Rows) error {
	var createdAt int64
	err := rows.Scan(&e.ID,
		&e.Direction,
		&e.Source,
		&e.Status,
		&e.ErrorKind,
		&e.InputBytes,
		&e.OutputBytes,
		&e.Preview,
		&createdAt)
	if err != nil {
		return err
	}
	e.CreatedAt = time.Unix(0, createdAt)
	return nil
}

func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM conversions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Clear deletes every entry and reports how many were removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec("DELETE FROM conversions")
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// PruneBefore deletes entries created before cutoff.
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM conversions WHERE created_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// Preview shortens s to a single line suitable for listing.
func Preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewLength-1]) + "…"
}
