package sqlite

import (
	"context"
	"fmt"

	"github.com/bookreaderapp/bookreader-core/internal/store"
)

// UpdatePosition overwrites the chapter's lastPlayedPosition only. The
// timestamp and finished flag are untouched; those travel with the full
// checkpoint in RecordPlaybackEvent.
func (s *Store) UpdatePosition(ctx context.Context, chapterID, positionMs int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE chapters SET lastPlayedPosition = ? WHERE id = ?`,
		positionMs, chapterID)
	if err != nil {
		return fmt.Errorf("update position for chapter %d: %w", chapterID, err)
	}
	return affectedOrNotFound(res, chapterID)
}

// RecordPlaybackEvent overwrites position, timestamp, and the finished flag
// in one row update. This is the canonical pause/stop/complete checkpoint.
func (s *Store) RecordPlaybackEvent(ctx context.Context, chapterID, positionMs, timestampMs int64, finished bool) error {
	finishedInt := 0
	if finished {
		finishedInt = 1
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE chapters
		 SET lastPlayedPosition = ?, lastPlayedTimestamp = ?, finishedPlaying = ?
		 WHERE id = ?`,
		positionMs, timestampMs, finishedInt, chapterID)
	if err != nil {
		return fmt.Errorf("record playback event for chapter %d: %w", chapterID, err)
	}
	return affectedOrNotFound(res, chapterID)
}

func affectedOrNotFound(res interface{ RowsAffected() (int64, error) }, chapterID int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for chapter %d: %w", chapterID, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
