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

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/folio/internal/portfolio"
)

// SQLiteStore keeps the portfolio document and the visitor log in SQLite.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at path. Parent directories
// are created if needed; ":memory:" is accepted for tests.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("store")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes
	// writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Info("SQLite store initialized", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT,
		path TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load returns the stored portfolio document, or false when the key is
// missing or the document cannot be parsed.
func (s *SQLiteStore) Load(ctx context.Context) (*portfolio.Data, bool) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, DataKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		s.log.Error("reading portfolio data", zap.Error(err))
		return nil, false
	}
	return decode(s.log, []byte(raw))
}

// Save overwrites the stored document with d.
func (s *SQLiteStore) Save(ctx context.Context, d *portfolio.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding portfolio data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, DataKey, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing portfolio data: %w", err)
	}
	return nil
}

// Delete removes the stored document; the next Open falls back to defaults.
func (s *SQLiteStore) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, DataKey); err != nil {
		return fmt.Errorf("deleting portfolio data: %w", err)
	}
	return nil
}

// putRaw stores an arbitrary value under DataKey. Tests use it to plant
// corrupt documents.
func (s *SQLiteStore) putRaw(ctx context.Context, raw string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, DataKey, raw, time.Now().UTC())
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
