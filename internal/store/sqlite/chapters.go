package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// chapterColumns is the ordered list of columns selected in chapter queries.
// Must match the scan order in scanChapter.
const chapterColumns = `id, bookId, title, fileName, playTime,
	lastPlayedPosition, lastPlayedTimestamp, finishedPlaying`

// scanChapter scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Chapter.
func scanChapter(scanner interface{ Scan(dest ...any) error }) (*domain.Chapter, error) {
	var (
		c        domain.Chapter
		finished int
	)

	err := scanner.Scan(
		&c.ID,
		&c.BookID,
		&c.Title,
		&c.FileName,
		&c.PlayTime,
		&c.LastPlayedPosition,
		&c.LastPlayedTimestamp,
		&finished,
	)
	if err != nil {
		return nil, err
	}

	c.FinishedPlaying = finished != 0
	return &c, nil
}

// GetChapter returns the chapter with the given ID.
func (s *Store) GetChapter(ctx context.Context, id int64) (*domain.Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE id = ?`, id)

	c, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get chapter %d: %w", id, err)
	}
	return c, nil
}

// ListChaptersForBook returns the book's chapters in ascending ID order.
func (s *Store) ListChaptersForBook(ctx context.Context, bookID int64) ([]*domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE bookId = ? ORDER BY id ASC`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list chapters for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var chapters []*domain.Chapter
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// UpsertChapter inserts the chapter if (bookId, fileName) is new and returns
// the row ID either way. An existing chapter only has its playTime refreshed;
// playback state is never touched by the importer.
func (s *Store) UpsertChapter(ctx context.Context, chapter *domain.Chapter) (int64, error) {
	if chapter.FileName == "" {
		return 0, store.ErrInvalidInput.WithCause(errors.New("chapter file name is empty"))
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, playTime FROM chapters WHERE bookId = ? AND fileName = ?`,
		chapter.BookID, chapter.FileName)

	var (
		existingID       int64
		existingPlayTime int64
	)
	err := row.Scan(&existingID, &existingPlayTime)
	switch {
	case err == nil:
		if chapter.PlayTime > 0 && chapter.PlayTime != existingPlayTime {
			if _, err := s.db.ExecContext(ctx,
				`UPDATE chapters SET playTime = ? WHERE id = ?`,
				chapter.PlayTime, existingID); err != nil {
				return 0, fmt.Errorf("update chapter %d play time: %w", existingID, err)
			}
			s.logger.Debug("chapter play time refreshed",
				"id", existingID, "play_time_ms", chapter.PlayTime)
		}
		return existingID, nil
	case errors.Is(err, sql.ErrNoRows):
		// Fall through to insert.
	default:
		return 0, fmt.Errorf("look up chapter %q: %w", chapter.FileName, err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (bookId, title, fileName, playTime) VALUES (?, ?, ?, ?)`,
		chapter.BookID, chapter.Title, chapter.FileName, chapter.PlayTime)
	if err != nil {
		return 0, fmt.Errorf("insert chapter %q: %w", chapter.FileName, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("chapter insert id: %w", err)
	}
	return id, nil
}

// ChapterIDsInBook returns every chapter ID of the book owning chapterID,
// ascending. An unknown chapter yields ErrNotFound.
func (s *Store) ChapterIDsInBook(ctx context.Context, chapterID int64) ([]int64, error) {
	c, err := s.GetChapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM chapters WHERE bookId = ? ORDER BY id ASC`, c.BookID)
	if err != nil {
		return nil, fmt.Errorf("chapter ids for book %d: %w", c.BookID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chapter id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NextChapter returns the chapter immediately after chapterID within the
// same book, or ErrNotFound at the boundary (and for unknown chapters).
func (s *Store) NextChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error) {
	return s.neighborChapter(ctx, chapterID, `id > ?1`, `ASC`)
}

// PreviousChapter returns the chapter immediately before chapterID within
// the same book, or ErrNotFound at the boundary (and for unknown chapters).
func (s *Store) PreviousChapter(ctx context.Context, chapterID int64) (*domain.Chapter, error) {
	return s.neighborChapter(ctx, chapterID, `id < ?1`, `DESC`)
}

func (s *Store) neighborChapter(ctx context.Context, chapterID int64, cmp, order string) (*domain.Chapter, error) {
	// The subquery resolves the owning book; with an unknown chapter it is
	// NULL and no row matches, which collapses into the same not-found.
	query := `SELECT ` + chapterColumns + ` FROM chapters
		WHERE bookId = (SELECT bookId FROM chapters WHERE id = ?1) AND ` + cmp + `
		ORDER BY id ` + order + ` LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, chapterID)
	c, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("neighbor of chapter %d: %w", chapterID, err)
	}
	return c, nil
}

// ChapterPosition returns the 1-based ordinal of the chapter within its
// book: the count of same-book chapters with a smaller ID, plus one.
func (s *Store) ChapterPosition(ctx context.Context, chapterID int64) (int, error) {
	c, err := s.GetChapter(ctx, chapterID)
	if err != nil {
		return 0, err
	}

	var smaller int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chapters WHERE bookId = ? AND id < ?`,
		c.BookID, c.ID).Scan(&smaller)
	if err != nil {
		return 0, fmt.Errorf("chapter %d position: %w", chapterID, err)
	}
	return smaller + 1, nil
}

// TotalChaptersInBook returns the chapter count of the book owning
// chapterID.
func (s *Store) TotalChaptersInBook(ctx context.Context, chapterID int64) (int, error) {
	c, err := s.GetChapter(ctx, chapterID)
	if err != nil {
		return 0, err
	}

	var total int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chapters WHERE bookId = ?`, c.BookID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("chapter count for book %d: %w", c.BookID, err)
	}
	return total, nil
}

// LastChapterOfBook returns the chapter with the maximal ID in the book.
func (s *Store) LastChapterOfBook(ctx context.Context, bookID int64) (*domain.Chapter, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chapterColumns+` FROM chapters WHERE bookId = ? ORDER BY id DESC LIMIT 1`,
		bookID)

	c, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last chapter of book %d: %w", bookID, err)
	}
	return c, nil
}
