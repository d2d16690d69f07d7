package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedBook inserts a book with chapters named 001.mp3, 002.mp3, ... and
// returns the book ID plus the chapter IDs in insertion order.
func seedBook(t *testing.T, s *Store, title, author string, chapterCount int) (int64, []int64) {
	t.Helper()
	ctx := context.Background()

	bookID, err := s.UpsertBook(ctx, &domain.Book{Title: title, Author: author})
	if err != nil {
		t.Fatalf("upsert book: %v", err)
	}

	var chapterIDs []int64
	for i := 1; i <= chapterCount; i++ {
		name := fmt.Sprintf("%03d.mp3", i)
		id, err := s.UpsertChapter(ctx, &domain.Chapter{
			BookID:   bookID,
			Title:    fmt.Sprintf("%03d", i),
			FileName: name,
			PlayTime: 100000,
		})
		if err != nil {
			t.Fatalf("upsert chapter %d: %v", i, err)
		}
		chapterIDs = append(chapterIDs, id)
	}
	return bookID, chapterIDs
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}
}

func TestValidateSnapshot(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		err := ValidateSnapshot(filepath.Join(dir, "nope.db"))
		if !errors.Is(err, store.ErrSnapshotMissing) {
			t.Errorf("expected ErrSnapshotMissing, got %v", err)
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.db")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		if err := ValidateSnapshot(path); !errors.Is(err, store.ErrSnapshotCorrupt) {
			t.Errorf("expected ErrSnapshotCorrupt, got %v", err)
		}
	})

	t.Run("wrong magic", func(t *testing.T) {
		path := filepath.Join(dir, "text.db")
		if err := os.WriteFile(path, []byte("this is not a database file at all"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := ValidateSnapshot(path); !errors.Is(err, store.ErrSnapshotCorrupt) {
			t.Errorf("expected ErrSnapshotCorrupt, got %v", err)
		}
	})

	t.Run("valid snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "real.db")
		s, err := Open(path, nil)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		s.Close()

		if err := ValidateSnapshot(path); err != nil {
			t.Errorf("expected valid snapshot, got %v", err)
		}

		reopened, err := OpenSnapshot(path, nil)
		if err != nil {
			t.Fatalf("open snapshot: %v", err)
		}
		reopened.Close()
	})
}

func TestOpenSnapshotMissing(t *testing.T) {
	_, err := OpenSnapshot(filepath.Join(t.TempDir(), "absent.db"), nil)
	if !errors.Is(err, store.ErrSnapshotMissing) {
		t.Fatalf("expected ErrSnapshotMissing, got %v", err)
	}
}
