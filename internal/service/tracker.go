package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// ResumeRewindMs is how far a resume jumps back behind the stored position,
// re-orienting the listener at the cost of replaying a few seconds.
const ResumeRewindMs = 10_000

// checkpointTimeout bounds a detached checkpoint write.
const checkpointTimeout = 10 * time.Second

// Tracker is the write-through persistence layer for playback positions.
//
// Checkpoint writes can be dispatched detached from the caller's lifecycle:
// the write runs on the tracker's own context so a final pause/stop
// checkpoint survives the teardown of the UI scope that triggered it. Close
// drains in-flight writes. If the process dies first, that single update is
// lost and the next resume uses the previous checkpoint.
type Tracker struct {
	store  store.PlaybackStore
	reader store.ChapterStore
	logger *slog.Logger

	wg sync.WaitGroup

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker creates a playback position tracker.
func NewTracker(st store.Store, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Tracker{
		store:  st,
		reader: st,
		logger: logger,
		now:    time.Now,
	}
}

// UpdatePosition overwrites the chapter's stored position only. Unknown
// chapters are absorbed silently; position writes against a vanished
// chapter are not worth surfacing to the playback loop.
func (t *Tracker) UpdatePosition(ctx context.Context, chapterID, positionMs int64) error {
	err := t.store.UpdatePosition(ctx, chapterID, positionMs)
	if errors.Is(err, store.ErrNotFound) {
		t.logger.Debug("position update for unknown chapter", "chapter", chapterID)
		return nil
	}
	return err
}

// RecordPlaybackEvent persists the canonical checkpoint: position,
// timestamp, and the finished flag in one row update.
func (t *Tracker) RecordPlaybackEvent(ctx context.Context, chapterID, positionMs, timestampMs int64, finished bool) error {
	err := t.store.RecordPlaybackEvent(ctx, chapterID, positionMs, timestampMs, finished)
	if errors.Is(err, store.ErrNotFound) {
		t.logger.Debug("checkpoint for unknown chapter", "chapter", chapterID)
		return nil
	}
	return err
}

// Checkpoint records a playback event stamped with the current time.
func (t *Tracker) Checkpoint(ctx context.Context, chapterID, positionMs int64, finished bool) error {
	return t.RecordPlaybackEvent(ctx, chapterID, positionMs, t.now().UnixMilli(), finished)
}

// CheckpointDetached dispatches Checkpoint on the tracker's own lifecycle.
// Errors are logged, not returned; the caller has usually gone away.
func (t *Tracker) CheckpointDetached(chapterID, positionMs int64, finished bool) {
	timestamp := t.now().UnixMilli()
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
		defer cancel()

		if err := t.RecordPlaybackEvent(ctx, chapterID, positionMs, timestamp, finished); err != nil {
			t.logger.Error("detached checkpoint failed",
				"chapter", chapterID, "position_ms", positionMs, "error", err)
		}
	}()
}

// ResumeStartPosition returns where playback should resume for a chapter:
// the stored position minus ResumeRewindMs, clamped at zero. Unknown
// chapters resume at zero.
func (t *Tracker) ResumeStartPosition(ctx context.Context, chapterID int64) (int64, error) {
	c, err := t.reader.GetChapter(ctx, chapterID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	pos := c.LastPlayedPosition - ResumeRewindMs
	if pos < 0 {
		pos = 0
	}
	return pos, nil
}

// Close waits for in-flight detached checkpoints to finish.
func (t *Tracker) Close() error {
	t.wg.Wait()
	return nil
}
