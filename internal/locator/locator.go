// Package locator resolves (book directory, file name) pairs to playable
// audio sources, bridging the physical audio root and the media catalog.
package locator

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/media/sniff"
)

// Service owns the audio root and performs catalog lookups and creation.
//
// All lookup and creation failures are reported as a neutral not-found
// result, never as an error: absence is a legitimate steady state (the file
// may simply not have been imported yet), and this is a single-user local
// lookup with no retry policy.
type Service struct {
	catalog *catalog.Catalog
	logger  *slog.Logger

	// audioRoot is the absolute directory the catalog's relative paths are
	// anchored at, i.e. the parent of the fixed Audiobooks/... prefix.
	audioRoot string

	// legacyRoot, when non-empty, enables the pre-scoped-storage fallback
	// path for older hosts.
	legacyRoot string
}

// New creates a locator service over the given catalog and audio root.
func New(cat *catalog.Catalog, audioRoot, legacyRoot string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		catalog:    cat,
		logger:     logger,
		audioRoot:  audioRoot,
		legacyRoot: legacyRoot,
	}
}

// bookDir returns the physical directory of a book under the audio root.
func (s *Service) bookDir(directoryName string) string {
	return filepath.Join(s.audioRoot, filepath.FromSlash(catalog.BookRelativePath(directoryName)))
}

// QueryLocator returns the locator of an existing catalog entry matching
// (directoryName, fileName) exactly, or "" when there is none. Read-only.
func (s *Service) QueryLocator(ctx context.Context, directoryName, fileName string) (string, bool) {
	entry, err := s.catalog.Query(ctx, directoryName, fileName)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.logger.Debug("catalog query failed",
				"dir", directoryName, "file", fileName, "error", err)
		}
		return "", false
	}
	return entry.Locator, true
}

// CreateLocator registers a new catalog entry for (directoryName, fileName)
// and returns its locator. Preconditions, each a hard not-found:
//
//  1. the book directory physically exists,
//  2. the file physically exists inside it,
//  3. the file is non-empty,
//  4. the file's first bytes carry an MP3 signature.
//
// The entry is created pending; the caller clears the flag through
// Finalize once the file may be treated as finalized. After registration
// the backing file is re-verified to be openable; if it is not, the entry
// is deleted again. That guards against the race where the catalog accepts
// the insert while the backing file becomes inaccessible.
func (s *Service) CreateLocator(ctx context.Context, directoryName, fileName, mimeType string) (string, bool) {
	dir := s.bookDir(directoryName)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Debug("book directory missing", "dir", dir)
		return "", false
	}

	filePath := filepath.Join(dir, fileName)
	fileInfo, err := os.Stat(filePath)
	if err != nil || fileInfo.IsDir() {
		s.logger.Debug("audio file missing", "path", filePath)
		return "", false
	}
	if fileInfo.Size() == 0 {
		s.logger.Debug("audio file empty", "path", filePath)
		return "", false
	}
	if !sniff.DetectFile(filePath) {
		s.logger.Debug("audio file has no MP3 signature", "path", filePath)
		return "", false
	}

	entry, err := s.catalog.Reserve(ctx, directoryName, fileName, mimeType)
	if err != nil {
		s.logger.Debug("catalog reserve failed",
			"dir", directoryName, "file", fileName, "error", err)
		return "", false
	}

	// Re-verify the backing file is still openable before handing the
	// locator out; compensate with a delete if it is not.
	f, err := os.Open(filePath)
	if err != nil {
		s.logger.Warn("backing file vanished after reserve, deleting entry",
			"locator", entry.Locator, "path", filePath)
		if delErr := s.catalog.Delete(ctx, entry.Locator); delErr != nil {
			s.logger.Error("compensating delete failed",
				"locator", entry.Locator, "error", delErr)
		}
		return "", false
	}
	f.Close()

	return entry.Locator, true
}

// Finalize clears the pending flag of a created entry.
func (s *Service) Finalize(ctx context.Context, locator string) error {
	return s.catalog.Finalize(ctx, locator)
}

// ResolveLocation resolves (directoryName, fileName) to an
// AudioFileLocation. The catalog wins; the legacy absolute path is consulted
// only when configured and physically present. Absence is the neutral
// NoLocation value.
func (s *Service) ResolveLocation(ctx context.Context, directoryName, fileName string) domain.AudioFileLocation {
	if loc, ok := s.QueryLocator(ctx, directoryName, fileName); ok {
		return domain.FoundInCatalog(loc)
	}

	if s.legacyRoot != "" {
		abs := catalog.LegacyAbsolutePath(s.legacyRoot, directoryName, fileName)
		if info, err := os.Stat(filepath.FromSlash(abs)); err == nil && !info.IsDir() {
			return domain.FoundAtLegacyPath(abs)
		}
	}

	return domain.NoLocation()
}
