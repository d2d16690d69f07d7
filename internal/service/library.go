// Package service aggregates the store, the locator, and the playback
// tracker behind the repository facade consumed by presentation code.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/normalize"
	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// Library is the repository facade: book and chapter reads, sequential-ID
// chapter navigation, and audio file resolution.
//
// Absence is modeled as a neutral value throughout: a nil chapter, a zero
// ID, an empty slice, or a false flag. Errors are reserved for storage
// faults.
type Library struct {
	store   store.Store
	locator *locator.Service
	logger  *slog.Logger
}

// NewLibrary creates the repository facade.
func NewLibrary(st store.Store, loc *locator.Service, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Library{store: st, locator: loc, logger: logger}
}

// Books returns every book in the library.
func (l *Library) Books(ctx context.Context) ([]*domain.Book, error) {
	return l.store.ListBooks(ctx)
}

// Book returns one book, or nil when the ID is unknown.
func (l *Library) Book(ctx context.Context, id int64) (*domain.Book, error) {
	b, err := l.store.GetBook(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return b, err
}

// Chapter returns one chapter, or nil when the ID is unknown.
func (l *Library) Chapter(ctx context.Context, id int64) (*domain.Chapter, error) {
	c, err := l.store.GetChapter(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// Chapters returns a book's chapters in ascending ID order.
func (l *Library) Chapters(ctx context.Context, bookID int64) ([]*domain.Chapter, error) {
	return l.store.ListChaptersForBook(ctx, bookID)
}

// AllChapterIDsInBook returns every chapter ID of the book owning
// chapterID, ascending. Unknown chapters yield an empty slice.
func (l *Library) AllChapterIDsInBook(ctx context.Context, chapterID int64) ([]int64, error) {
	ids, err := l.store.ChapterIDsInBook(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return ids, err
}

// NextChapter returns the chapter after chapterID in the same book, or nil
// at the boundary and for unknown chapters.
func (l *Library) NextChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error) {
	c, err := l.store.NextChapter(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// PreviousChapter returns the chapter before chapterID in the same book, or
// nil at the boundary and for unknown chapters.
func (l *Library) PreviousChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error) {
	c, err := l.store.PreviousChapter(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// NextChapterID returns the ID after chapterID, or 0 when absent.
func (l *Library) NextChapterID(ctx context.Context, chapterID int64) (int64, error) {
	c, err := l.NextChapter(ctx, chapterID)
	if err != nil || c == nil {
		return 0, err
	}
	return c.ID, nil
}

// PreviousChapterID returns the ID before chapterID, or 0 when absent.
func (l *Library) PreviousChapterID(ctx context.Context, chapterID int64) (int64, error) {
	c, err := l.PreviousChapter(ctx, chapterID)
	if err != nil || c == nil {
		return 0, err
	}
	return c.ID, nil
}

// IsFirstChapter reports whether no chapter in the same book has a smaller
// ID. Unknown chapters are never first.
func (l *Library) IsFirstChapter(ctx context.Context, chapterID int64) (bool, error) {
	pos, err := l.ChapterPosition(ctx, chapterID)
	return pos == 1, err
}

// IsLastChapter reports whether no chapter in the same book has a larger
// ID. Unknown chapters are never last.
func (l *Library) IsLastChapter(ctx context.Context, chapterID int64) (bool, error) {
	id, err := l.NextChapterID(ctx, chapterID)
	if err != nil {
		return false, err
	}
	if id != 0 {
		return false, nil
	}
	// No next chapter: last, unless the chapter itself is unknown.
	pos, err := l.ChapterPosition(ctx, chapterID)
	return pos > 0, err
}

// ChapterPosition returns the 1-based ordinal of the chapter within its
// book, or 0 for unknown chapters.
func (l *Library) ChapterPosition(ctx context.Context, chapterID int64) (int, error) {
	pos, err := l.store.ChapterPosition(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	return pos, err
}

// TotalChaptersInBook returns the chapter count of the owning book, or 0
// for unknown chapters.
func (l *Library) TotalChaptersInBook(ctx context.Context, chapterID int64) (int, error) {
	total, err := l.store.TotalChaptersInBook(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	return total, err
}

// LastChapterOfBook returns the chapter with the maximal ID in the book, or
// nil for unknown or empty books.
func (l *Library) LastChapterOfBook(ctx context.Context, bookID int64) (*domain.Chapter, error) {
	c, err := l.store.LastChapterOfBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return c, err
}

// ResolveChapterAudio resolves a chapter's audio file through the locator.
// The book directory token is recomputed from the book title on every call;
// it is never stored.
func (l *Library) ResolveChapterAudio(ctx context.Context, chapterID int64) (domain.AudioFileLocation, error) {
	chapter, err := l.Chapter(ctx, chapterID)
	if err != nil {
		return domain.NoLocation(), err
	}
	if chapter == nil {
		return domain.NoLocation(), nil
	}

	book, err := l.Book(ctx, chapter.BookID)
	if err != nil {
		return domain.NoLocation(), err
	}
	if book == nil {
		return domain.NoLocation(), fmt.Errorf("chapter %d references missing book %d", chapterID, chapter.BookID)
	}

	dir := normalize.Token(book.Title)
	loc := l.locator.ResolveLocation(ctx, dir, chapter.FileName)
	if !loc.Found() {
		l.logger.Debug("chapter audio not found",
			"chapter", chapterID, "dir", dir, "file", chapter.FileName)
	}
	return loc, nil
}
