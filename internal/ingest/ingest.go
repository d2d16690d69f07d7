// Package ingest imports staged audiobooks into the library: it copies
// chapter files under the audio root, registers them with the media
// catalog, and records books and chapters in the snapshot store.
package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/domain"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/media/sniff"
	"github.com/bookreaderapp/bookreader-core/internal/normalize"
	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// Importer runs the staged book import pipeline.
type Importer struct {
	store   store.Store
	locator *locator.Service
	logger  *slog.Logger

	audioRoot string
	workers   int
	dryRun    bool
}

// Options configures an import run.
type Options struct {
	// AudioRoot is where chapter files are copied to, under the
	// catalog's fixed directory layout.
	AudioRoot string
	// Workers is how many books are imported concurrently (default 4).
	Workers int
	// DryRun reports what would happen without copying or writing.
	DryRun bool
}

// Result summarizes an import run.
type Result struct {
	RunID            string
	BooksImported    int
	ChaptersImported int
	FilesCopied      int
	FilesSkipped     int

	mu sync.Mutex
}

// New creates an importer.
func New(st store.Store, loc *locator.Service, logger *slog.Logger, opts Options) *Importer {
	if opts.Workers < 1 {
		opts.Workers = 4
	}
	return &Importer{
		store:     st,
		locator:   loc,
		logger:    logger,
		audioRoot: opts.AudioRoot,
		workers:   opts.Workers,
		dryRun:    opts.DryRun,
	}
}

// ImportAll imports every staging directory under stagingPath. Books are
// imported in parallel; chapters within a book stay sequential so their
// row IDs follow the file order.
func (im *Importer) ImportAll(ctx context.Context, stagingPath string) (*Result, error) {
	entries, err := os.ReadDir(stagingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read staging path: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	log := im.logger.With("run_id", result.RunID)
	log.Info("import run starting", "staging_path", stagingPath, "dry_run", im.dryRun)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(stagingPath, entry.Name())
		g.Go(func() error {
			return im.ImportBook(gctx, dir, result)
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	log.Info("import run finished",
		"books", result.BooksImported,
		"chapters", result.ChaptersImported,
		"copied", result.FilesCopied,
		"skipped", result.FilesSkipped,
	)
	return result, nil
}

// ImportBook imports one staging directory: parse its name, validate the
// chapter files, copy them under the audio root, register catalog
// entries, and record the book and chapters.
func (im *Importer) ImportBook(ctx context.Context, dir string, result *Result) error {
	title, author, err := ParseStagingDirName(dir)
	if err != nil {
		return err
	}

	files, err := im.validChapterFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no valid MP3 files found in %s", dir)
	}

	token := normalize.Token(title)
	log := im.logger.With("book", title, "token", token)
	log.Info("importing book", "author", author, "chapters", len(files))

	if im.dryRun {
		log.Info("dry run, skipping writes")
		return nil
	}

	bookID, err := im.store.UpsertBook(ctx, &domain.Book{Title: title, Author: author})
	if err != nil {
		return fmt.Errorf("failed to store book %q: %w", title, err)
	}

	result.mu.Lock()
	result.BooksImported++
	result.mu.Unlock()

	bookDir := filepath.Join(im.audioRoot, filepath.FromSlash(catalog.BookRelativePath(token)))
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		return fmt.Errorf("failed to create book directory: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		src := filepath.Join(dir, file)

		playTime, err := sniff.EstimateDuration(src)
		if err != nil {
			log.Warn("could not estimate duration", "file", file, "error", err)
			playTime = 0
		}

		copied, err := copyIfChanged(src, filepath.Join(bookDir, file))
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", file, err)
		}

		result.mu.Lock()
		if copied {
			result.FilesCopied++
		} else {
			result.FilesSkipped++
		}
		result.mu.Unlock()

		if _, found := im.locator.QueryLocator(ctx, token, file); !found {
			loc, ok := im.locator.CreateLocator(ctx, token, file, catalog.DefaultMimeType)
			if !ok {
				return fmt.Errorf("failed to register %s/%s with the catalog", token, file)
			}
			if err := im.locator.Finalize(ctx, loc); err != nil {
				return fmt.Errorf("failed to finalize catalog entry for %s: %w", file, err)
			}
		}

		chapterTitle := strings.TrimSuffix(file, filepath.Ext(file))
		if _, err := im.store.UpsertChapter(ctx, &domain.Chapter{
			BookID:   bookID,
			Title:    chapterTitle,
			FileName: file,
			PlayTime: playTime,
		}); err != nil {
			return fmt.Errorf("failed to store chapter %q: %w", chapterTitle, err)
		}

		result.mu.Lock()
		result.ChaptersImported++
		result.mu.Unlock()
	}

	log.Info("book imported", "book_id", bookID)
	return nil
}

// validChapterFiles returns the MP3 files in dir whose content carries a
// real MP3 signature, sorted by name.
func (im *Importer) validChapterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read book directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), ".mp3") {
			im.logger.Warn("skipping non-MP3 file", "file", name)
			continue
		}
		if !sniff.DetectFile(filepath.Join(dir, name)) {
			im.logger.Warn("skipping file with invalid MP3 header", "file", name)
			continue
		}
		files = append(files, name)
	}

	sort.Strings(files)
	return files, nil
}

// copyIfChanged copies src to dst unless dst already exists with the same
// MD5 checksum. Reports whether a copy happened.
func copyIfChanged(src, dst string) (bool, error) {
	srcSum, err := fileMD5(src)
	if err != nil {
		return false, err
	}

	if dstSum, err := fileMD5(dst); err == nil && dstSum == srcSum {
		return false, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return false, err
	}
	tmp := out.Name()
	defer os.Remove(tmp)

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}

	return true, os.Rename(tmp, dst)
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
