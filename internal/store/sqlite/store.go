// Package sqlite provides the SQLite-backed persistence layer for the
// BookReader library.
package sqlite

import (
	"bytes"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bookreaderapp/bookreader-core/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// sqliteMagic is the 16-byte header every SQLite 3 database file starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// Store provides SQLite-backed persistence for books, chapters, and
// playback checkpoints.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open creates or opens a SQLite database at the given path. It configures
// WAL mode, sets pragmas, and applies the schema. The import tooling and
// tests use this; the application opens its bundled snapshot through
// OpenSnapshot instead.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// OpenSnapshot opens the pre-populated database snapshot at path. A missing
// or invalid snapshot indicates a broken installation and is surfaced as a
// distinct fatal error, never as a not-found value.
func OpenSnapshot(path string, logger *slog.Logger) (*Store, error) {
	if err := ValidateSnapshot(path); err != nil {
		return nil, err
	}
	return Open(path, logger)
}

// ValidateSnapshot checks that path points at a plausible SQLite database:
// the file must exist, be non-empty, and carry the SQLite magic header.
func ValidateSnapshot(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrSnapshotMissing.WithCause(err)
		}
		return store.ErrSnapshotCorrupt.WithCause(err)
	}
	if info.Size() == 0 {
		return store.ErrSnapshotCorrupt.WithCause(fmt.Errorf("empty file %s", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return store.ErrSnapshotCorrupt.WithCause(err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := f.Read(header); err != nil {
		return store.ErrSnapshotCorrupt.WithCause(err)
	}
	if !bytes.Equal(header, sqliteMagic) {
		return store.ErrSnapshotCorrupt
	}

	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
