package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookreaderapp/bookreader-core/internal/catalog"
	"github.com/bookreaderapp/bookreader-core/internal/watcher"
)

// DefaultSweepInterval is how often the janitor sweeps stale pending
// catalog entries when no interval is configured.
const DefaultSweepInterval = 15 * time.Minute

// DefaultPendingMaxAge is how long a reserved entry may stay pending
// before the sweep treats it as an abandoned import.
const DefaultPendingMaxAge = time.Hour

// Janitor keeps the media catalog consistent with the audio root. It
// consumes watcher removals, evicting the matching catalog entries, and
// periodically sweeps pending entries whose import never finalized.
type Janitor struct {
	catalog   *catalog.Catalog
	events    <-chan watcher.Event
	logger    *slog.Logger
	audioRoot string

	sweepInterval time.Duration
	pendingMaxAge time.Duration
}

// NewJanitor creates a janitor over the given event stream. The audio
// root is the directory the watcher was pointed at.
func NewJanitor(cat *catalog.Catalog, events <-chan watcher.Event, audioRoot string, logger *slog.Logger) *Janitor {
	return &Janitor{
		catalog:       cat,
		events:        events,
		logger:        logger,
		audioRoot:     filepath.Clean(audioRoot),
		sweepInterval: DefaultSweepInterval,
		pendingMaxAge: DefaultPendingMaxAge,
	}
}

// WithSweep overrides the sweep cadence and pending age cutoff.
func (j *Janitor) WithSweep(interval, maxAge time.Duration) *Janitor {
	j.sweepInterval = interval
	j.pendingMaxAge = maxAge
	return j
}

// Run consumes events until the context is cancelled. It blocks.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-j.events:
			if !ok {
				return nil
			}
			j.handleEvent(ctx, ev)
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) handleEvent(ctx context.Context, ev watcher.Event) {
	if ev.Type != watcher.EventRemoved {
		return
	}

	dir, file, ok := j.splitAudioPath(ev.Path)
	if !ok {
		return
	}

	if err := j.catalog.DeleteByPath(ctx, dir, file); err != nil {
		j.logger.Error("failed to evict catalog entry",
			"directory", dir, "file", file, "error", err)
		return
	}

	j.logger.Info("evicted catalog entry for removed file",
		"directory", dir, "file", file)
}

func (j *Janitor) sweep(ctx context.Context) {
	removed, err := j.catalog.SweepPending(ctx, j.pendingMaxAge)
	if err != nil {
		j.logger.Error("pending sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("swept stale pending entries", "count", removed)
	}
}

// splitAudioPath maps an absolute path under the audio root to a book
// directory token and file name. Paths outside the catalog layout are
// reported as not ok.
func (j *Janitor) splitAudioPath(absPath string) (string, string, bool) {
	rel, err := filepath.Rel(j.audioRoot, filepath.Clean(absPath))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", "", false
	}

	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, catalog.RelativePrefix) {
		return "", "", false
	}

	// After the fixed prefix exactly <Token>/<file> remains.
	rest := strings.TrimPrefix(rel, catalog.RelativePrefix)
	dir, file, found := strings.Cut(rest, "/")
	if !found || dir == "" || file == "" || strings.Contains(file, "/") {
		return "", "", false
	}

	return dir, file, true
}
