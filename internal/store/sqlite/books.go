package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, title, author`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book
	if err := scanner.Scan(&b.ID, &b.Title, &b.Author); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBook returns the book with the given ID.
func (s *Store) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

// GetBookByTitle returns the book with the given title. Titles are unique.
func (s *Store) GetBookByTitle(ctx context.Context, title string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE title = ?`, title)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get book by title %q: %w", title, err)
	}
	return b, nil
}

// ListBooks returns every book ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpsertBook inserts the book if its title is new and returns the row ID
// either way. Existing books keep their author: the library treats books as
// immutable after import.
func (s *Store) UpsertBook(ctx context.Context, book *domain.Book) (int64, error) {
	if book.Title == "" {
		return 0, store.ErrInvalidInput.WithCause(errors.New("book title is empty"))
	}

	existing, err := s.GetBookByTitle(ctx, book.Title)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO books (title, author) VALUES (?, ?)`,
		book.Title, book.Author)
	if err != nil {
		return 0, fmt.Errorf("insert book %q: %w", book.Title, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("book insert id: %w", err)
	}

	s.logger.Debug("book created", "id", id, "title", book.Title)
	return id, nil
}
