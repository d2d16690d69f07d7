// Package store defines the persistence interfaces and errors for the
// BookReader library. The sqlite subpackage provides the implementation.
package store

import (
	"context"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
)

// BookStore provides read access to the book catalog plus the upsert used
// by the import tooling. Runtime flows never create books.
type BookStore interface {
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	GetBookByTitle(ctx context.Context, title string) (*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	UpsertBook(ctx context.Context, book *domain.Book) (int64, error)
}

// ChapterStore provides chapter reads and the sequential-ID navigation
// queries. Every lookup for an unknown chapter ID returns ErrNotFound;
// neighbor queries at a book boundary do the same.
type ChapterStore interface {
	GetChapter(ctx context.Context, id int64) (*domain.Chapter, error)
	ListChaptersForBook(ctx context.Context, bookID int64) ([]*domain.Chapter, error)
	UpsertChapter(ctx context.Context, chapter *domain.Chapter) (int64, error)

	// Navigation over the ascending-ID chapter sequence of one book.
	ChapterIDsInBook(ctx context.Context, chapterID int64) ([]int64, error)
	NextChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error)
	PreviousChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error)
	ChapterPosition(ctx context.Context, chapterID int64) (int, error)
	TotalChaptersInBook(ctx context.Context, chapterID int64) (int, error)
	LastChapterOfBook(ctx context.Context, bookID int64) (*domain.Chapter, error)
}

// PlaybackStore persists playback checkpoints.
type PlaybackStore interface {
	// UpdatePosition overwrites lastPlayedPosition only.
	UpdatePosition(ctx context.Context, chapterID, positionMs int64) error

	// RecordPlaybackEvent overwrites position, timestamp, and the finished
	// flag in a single row update. This is the canonical checkpoint for
	// pause, stop, and completion.
	RecordPlaybackEvent(ctx context.Context, chapterID, positionMs, timestampMs int64, finished bool) error
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	BookStore
	ChapterStore
	PlaybackStore

	Close() error
}
