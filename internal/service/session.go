package service

import (
	"context"
	"fmt"

	"github.com/bookreaderapp/bookreader-core/internal/domain"
)

// Session drives one chapter's playback lifecycle:
// IDLE -> PLAYING -> {PAUSED <-> PLAYING} -> COMPLETED.
//
// Only one session is active at a time; position writes for a chapter are
// funneled through its session, which is what makes the underlying
// unsynchronized row updates safe.
type Session struct {
	library *Library
	tracker *Tracker

	chapter  *domain.Chapter
	state    domain.SessionState
	position int64
}

// Advance is the outcome of a position observation.
type Advance struct {
	// Completed is set when the completion heuristic fired and the
	// finished checkpoint was dispatched.
	Completed bool

	// NextChapterID is the chapter to auto-advance to, or 0 when the
	// completed chapter is the last of its book (or nothing completed).
	NextChapterID int64
}

// StartSession opens an IDLE session for a chapter. Returns nil for unknown
// chapters.
func (l *Library) StartSession(ctx context.Context, tracker *Tracker, chapterID int64) (*Session, error) {
	chapter, err := l.Chapter(ctx, chapterID)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	return &Session{
		library: l,
		tracker: tracker,
		chapter: chapter,
		state:   domain.SessionIdle,
	}, nil
}

// State returns the current session state.
func (s *Session) State() domain.SessionState { return s.state }

// Chapter returns the chapter this session plays.
func (s *Session) Chapter() *domain.Chapter { return s.chapter }

// Position returns the last observed position in milliseconds.
func (s *Session) Position() int64 { return s.position }

// Play transitions IDLE or PAUSED to PLAYING. From IDLE the starting
// position is the resume point: the stored position rewound by
// ResumeRewindMs, clamped at zero. Leaving PAUSED dispatches a checkpoint,
// so every exit from PLAYING or PAUSED persists one.
func (s *Session) Play(ctx context.Context) (int64, error) {
	if !s.state.CanTransition(domain.SessionPlaying) {
		return 0, fmt.Errorf("cannot play from %s", s.state)
	}

	if s.state == domain.SessionIdle {
		pos, err := s.tracker.ResumeStartPosition(ctx, s.chapter.ID)
		if err != nil {
			return 0, err
		}
		s.position = pos
	} else {
		s.tracker.CheckpointDetached(s.chapter.ID, s.position, false)
	}

	s.state = domain.SessionPlaying
	return s.position, nil
}

// Pause transitions PLAYING to PAUSED and dispatches a checkpoint. The
// write is detached so it survives the caller's teardown.
func (s *Session) Pause(positionMs int64) error {
	if !s.state.CanTransition(domain.SessionPaused) {
		return fmt.Errorf("cannot pause from %s", s.state)
	}

	s.position = positionMs
	s.state = domain.SessionPaused
	s.tracker.CheckpointDetached(s.chapter.ID, positionMs, false)
	return nil
}

// Observe reports playback progress. The position-only write is dispatched
// through the tracker; when the observed position crosses the completion
// threshold of the chapter's play time, the session completes: a finished
// checkpoint is dispatched and, unless the chapter is the last of its book,
// the next chapter ID is returned for auto-advance.
func (s *Session) Observe(ctx context.Context, positionMs int64) (Advance, error) {
	if s.state != domain.SessionPlaying {
		return Advance{}, fmt.Errorf("observe in state %s", s.state)
	}

	s.position = positionMs

	if !domain.IsComplete(positionMs, s.chapter.PlayTime) {
		if err := s.tracker.UpdatePosition(ctx, s.chapter.ID, positionMs); err != nil {
			return Advance{}, err
		}
		return Advance{}, nil
	}

	s.state = domain.SessionCompleted
	s.tracker.CheckpointDetached(s.chapter.ID, positionMs, true)

	last, err := s.library.IsLastChapter(ctx, s.chapter.ID)
	if err != nil {
		return Advance{Completed: true}, err
	}
	if last {
		return Advance{Completed: true}, nil
	}

	nextID, err := s.library.NextChapterID(ctx, s.chapter.ID)
	if err != nil {
		return Advance{Completed: true}, err
	}
	return Advance{Completed: true, NextChapterID: nextID}, nil
}
