// Package catalog implements the media catalog: a queryable index of audio
// files keyed by (relative path, display name), handing out opaque locators.
//
// Entry creation is a two-step protocol. Reserve writes the entry in a
// pending state; it is visible to queries but must not be treated as
// finalized by other consumers until Finalize clears the flag. Reservations
// that are never finalized are removed by the orphan sweep.
package catalog

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookreaderapp/bookreader-core/internal/id"
)

// Sentinel errors. Absence is a legitimate steady state; callers translate
// ErrNotFound into a neutral not-found result.
var (
	ErrNotFound      = errors.New("catalog entry not found")
	ErrAlreadyExists = errors.New("catalog entry already exists")
)

const (
	entryPrefix = "entry:"
	pathPrefix  = "entry:idx:path:"
)

// Entry is one catalog row.
type Entry struct {
	// Locator is the opaque handle identifying this entry.
	Locator string `json:"locator"`

	// DisplayName and RelativePath form the lookup key. Matching is exact
	// and case-sensitive.
	DisplayName  string `json:"display_name"`
	RelativePath string `json:"relative_path"`

	MimeType string `json:"mime_type"`

	// Pending is set between Reserve and Finalize. A pending entry is
	// visible but inert.
	Pending bool `json:"pending"`

	CreatedAt   time.Time `json:"created_at"`
	FinalizedAt time.Time `json:"finalized_at,omitzero"`
}

// Catalog is a Badger-backed media catalog.
type Catalog struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the catalog database at path.
func Open(path string, logger *slog.Logger) (*Catalog, error) {
	return open(badger.DefaultOptions(path).WithLogger(nil), logger)
}

// OpenInMemory opens an ephemeral catalog, used by tests and dry runs.
func OpenInMemory(logger *slog.Logger) (*Catalog, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil), logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func entryKey(locator string) []byte {
	return []byte(entryPrefix + locator)
}

// pathKey builds the (relative path, display name) index key. The NUL byte
// separates the two parts; neither can contain it.
func pathKey(relativePath, displayName string) []byte {
	buf := make([]byte, 0, len(pathPrefix)+len(relativePath)+1+len(displayName))
	buf = append(buf, pathPrefix...)
	buf = append(buf, relativePath...)
	buf = append(buf, 0)
	buf = append(buf, displayName...)
	return buf
}

// Query looks up the entry for (directoryName, fileName). Matching is exact
// and case-sensitive; absence yields ErrNotFound. Read-only.
func (c *Catalog) Query(ctx context.Context, directoryName, fileName string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	relPath := BookRelativePath(directoryName)
	var entry *Entry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pathKey(relPath, fileName))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get path index: %w", err)
		}

		var locator string
		if err := item.Value(func(val []byte) error {
			locator = string(val)
			return nil
		}); err != nil {
			return err
		}

		entry, err = getEntry(txn, locator)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns the entry for a locator.
func (c *Catalog) Get(ctx context.Context, locator string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *Entry
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		entry, err = getEntry(txn, locator)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func getEntry(txn *badger.Txn, locator string) (*Entry, error) {
	item, err := txn.Get(entryKey(locator))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, nil
}

// Reserve creates a pending entry for (directoryName, fileName) and returns
// it. Returns ErrAlreadyExists if the key is already taken.
func (c *Catalog) Reserve(ctx context.Context, directoryName, fileName, mimeType string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	locator, err := id.NewLocator()
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		Locator:      locator,
		DisplayName:  fileName,
		RelativePath: BookRelativePath(directoryName),
		MimeType:     mimeType,
		Pending:      true,
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}

	idxKey := pathKey(entry.RelativePath, entry.DisplayName)
	err = c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(idxKey); err == nil {
			return ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check path index: %w", err)
		}

		if err := txn.Set(entryKey(locator), data); err != nil {
			return fmt.Errorf("set entry: %w", err)
		}
		if err := txn.Set(idxKey, []byte(locator)); err != nil {
			return fmt.Errorf("set path index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("catalog entry reserved",
		"locator", locator, "path", entry.RelativePath, "name", fileName)
	return entry, nil
}

// Finalize clears the pending flag of a reservation.
func (c *Catalog) Finalize(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, locator)
		if err != nil {
			return err
		}
		if !entry.Pending {
			return nil
		}

		entry.Pending = false
		entry.FinalizedAt = time.Now()

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return txn.Set(entryKey(locator), data)
	})
}

// Delete removes an entry and its path index. Deleting an unknown locator
// is a no-op.
func (c *Catalog) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		entry, err := getEntry(txn, locator)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := txn.Delete(pathKey(entry.RelativePath, entry.DisplayName)); err != nil {
			return fmt.Errorf("delete path index: %w", err)
		}
		return txn.Delete(entryKey(locator))
	})
}

// DeleteByPath removes the entry for (directoryName, fileName) if present.
// Used when the backing file disappears from the audio root.
func (c *Catalog) DeleteByPath(ctx context.Context, directoryName, fileName string) error {
	entry, err := c.Query(ctx, directoryName, fileName)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.Delete(ctx, entry.Locator)
}

// List returns every entry, pending ones included.
func (c *Catalog) List(ctx context.Context) ([]*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []*Entry
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(entryPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			if strings.HasPrefix(key, pathPrefix) {
				continue // index key
			}

			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("unmarshal entry %s: %w", key, err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SweepPending removes pending entries older than maxAge and returns how
// many were deleted. This is the compensating cleanup for reservations whose
// finalize never happened.
func (c *Catalog) SweepPending(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := c.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Pending || entry.CreatedAt.After(cutoff) {
			continue
		}
		if err := c.Delete(ctx, entry.Locator); err != nil {
			return removed, fmt.Errorf("sweep %s: %w", entry.Locator, err)
		}
		c.logger.Info("swept orphaned pending entry",
			"locator", entry.Locator, "path", entry.RelativePath, "name", entry.DisplayName)
		removed++
	}
	return removed, nil
}
