package domain

import "fmt"

// SessionState is the state of one chapter's playback session.
//
// Transitions: IDLE -> PLAYING -> {PAUSED <-> PLAYING} -> COMPLETED.
// COMPLETED is terminal for the session, not for the chapter: a finished
// chapter can be replayed from a fresh IDLE session.
type SessionState int

const (
	SessionIdle SessionState = iota
	SessionPlaying
	SessionPaused
	SessionCompleted
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionPlaying:
		return "playing"
	case SessionPaused:
		return "paused"
	case SessionCompleted:
		return "completed"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// CanTransition reports whether moving from s to next is a legal session
// transition.
func (s SessionState) CanTransition(next SessionState) bool {
	switch s {
	case SessionIdle:
		return next == SessionPlaying
	case SessionPlaying:
		return next == SessionPaused || next == SessionCompleted
	case SessionPaused:
		return next == SessionPlaying || next == SessionCompleted
	case SessionCompleted:
		return false
	default:
		return false
	}
}

// CompletionThreshold is the fraction of a chapter's play time past which
// the chapter is considered finished.
const CompletionThreshold = 0.95

// IsComplete applies the completion heuristic: a chapter is finished once
// the observed position exceeds CompletionThreshold of the known duration.
// With an unknown duration (playTime <= 0) the heuristic never fires.
func IsComplete(positionMs, playTimeMs int64) bool {
	if playTimeMs <= 0 {
		return false
	}
	return float64(positionMs)/float64(playTimeMs) > CompletionThreshold
}
