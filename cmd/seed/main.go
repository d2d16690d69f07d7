// Package main provides the staged book import tool.
//
// It reads staging directories named book-title_author-name, copies the
// chapter files under the audio root, registers them with the media
// catalog, and records books and chapters in the library snapshot.
//
// Usage:
//
//	go run ./cmd/seed --staging-path ~/incoming --audio-root ~/BookReader/storage
//	go run ./cmd/seed --staging-path ~/incoming --dry-run
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/config"
	"github.com/bookreaderapp/bookreader-core/internal/ingest"
	"github.com/bookreaderapp/bookreader-core/internal/locator"
	"github.com/bookreaderapp/bookreader-core/internal/logger"
	"github.com/bookreaderapp/bookreader-core/internal/store/sqlite"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Report planned work without copying or writing")
	normalize := flag.Bool("normalize", false, "Rename chapter files to zero-padded <digits>.mp3 first")

	// LoadConfig parses the shared flags (and ours, registered above).
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Staging.Path == "" {
		fmt.Fprintln(os.Stderr, "A staging path is required (--staging-path or STAGING_PATH)")
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if *normalize {
		entries, err := os.ReadDir(cfg.Staging.Path)
		if err != nil {
			log.Error("Failed to read staging path", "error", err)
			os.Exit(1)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(cfg.Staging.Path, entry.Name())
			renames, err := ingest.NormalizeChapterFiles(dir, *dryRun)
			if err != nil {
				log.Error("Failed to normalize chapter files", "dir", dir, "error", err)
				os.Exit(1)
			}
			for from, to := range renames {
				log.Info("renamed chapter file", "dir", entry.Name(), "from", from, "to", to)
			}
		}
	}

	// Open (or create) the library snapshot directly: the seeder is the
	// one tool allowed to bring a fresh snapshot into existence.
	st, err := sqlite.Open(cfg.Storage.DatabasePath, log)
	if err != nil {
		log.Error("Failed to open library snapshot", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var cat *catalog.Catalog
	if cfg.Storage.CatalogPath == "" {
		cat, err = catalog.OpenInMemory(log)
	} else {
		cat, err = catalog.Open(cfg.Storage.CatalogPath, log)
	}
	if err != nil {
		log.Error("Failed to open media catalog", "error", err)
		os.Exit(1)
	}
	defer cat.Close()

	loc := locator.New(cat, cfg.Storage.AudioRoot, cfg.Storage.LegacyRoot, log)

	importer := ingest.New(st, loc, log, ingest.Options{
		AudioRoot: cfg.Storage.AudioRoot,
		Workers:   cfg.Staging.Workers,
		DryRun:    *dryRun,
	})

	result, err := importer.ImportAll(context.Background(), cfg.Staging.Path)
	if err != nil {
		log.Error("Import failed", "error", err)
		os.Exit(1)
	}

	log.Info("Import complete",
		"run_id", result.RunID,
		"books", result.BooksImported,
		"chapters", result.ChaptersImported,
		"copied", result.FilesCopied,
		"skipped", result.FilesSkipped,
	)
}
