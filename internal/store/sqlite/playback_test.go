package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookreaderapp/bookreader-core/internal/store"
)

func TestUpdatePosition(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ids := seedBook(t, s, "Dracula", "Bram Stoker", 1)
	id := ids[0]

	if err := s.UpdatePosition(ctx, id, 42000); err != nil {
		t.Fatalf("update position: %v", err)
	}

	c, err := s.GetChapter(ctx, id)
	if err != nil {
		t.Fatalf("get chapter: %v", err)
	}
	if c.LastPlayedPosition != 42000 {
		t.Errorf("position = %d, want 42000", c.LastPlayedPosition)
	}
	if c.LastPlayedTimestamp != 0 {
		t.Errorf("timestamp must stay untouched, got %d", c.LastPlayedTimestamp)
	}
	if c.FinishedPlaying {
		t.Error("finished flag must stay untouched")
	}
}

func TestRecordPlaybackEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ids := seedBook(t, s, "Frankenstein", "Mary Shelley", 1)
	id := ids[0]

	now := time.Now().UnixMilli()
	if err := s.RecordPlaybackEvent(ctx, id, 96000, now, true); err != nil {
		t.Fatalf("record playback event: %v", err)
	}

	c, err := s.GetChapter(ctx, id)
	if err != nil {
		t.Fatalf("get chapter: %v", err)
	}
	if c.LastPlayedPosition != 96000 {
		t.Errorf("position = %d, want 96000", c.LastPlayedPosition)
	}
	if c.LastPlayedTimestamp != now {
		t.Errorf("timestamp = %d, want %d", c.LastPlayedTimestamp, now)
	}
	if !c.FinishedPlaying {
		t.Error("finished flag not persisted")
	}
	if !c.Played() {
		t.Error("chapter should count as played after a checkpoint")
	}

	// A later checkpoint overwrites unconditionally, including clearing
	// the finished flag for a replay.
	later := now + 60000
	if err := s.RecordPlaybackEvent(ctx, id, 1000, later, false); err != nil {
		t.Fatalf("second checkpoint: %v", err)
	}
	c, err = s.GetChapter(ctx, id)
	if err != nil {
		t.Fatalf("get chapter: %v", err)
	}
	if c.LastPlayedPosition != 1000 || c.LastPlayedTimestamp != later || c.FinishedPlaying {
		t.Errorf("checkpoint not overwritten: %+v", c)
	}
}

func TestPlaybackUnknownChapter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpdatePosition(ctx, 12345, 1000); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update position: expected ErrNotFound, got %v", err)
	}
	if err := s.RecordPlaybackEvent(ctx, 12345, 1000, 1, false); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record event: expected ErrNotFound, got %v", err)
	}
}
