package domain

import "testing"

func TestSessionStateTransitions(t *testing.T) {
	tests := []struct {
		from    SessionState
		to      SessionState
		allowed bool
	}{
		{SessionIdle, SessionPlaying, true},
		{SessionIdle, SessionPaused, false},
		{SessionIdle, SessionCompleted, false},
		{SessionPlaying, SessionPaused, true},
		{SessionPlaying, SessionCompleted, true},
		{SessionPlaying, SessionIdle, false},
		{SessionPaused, SessionPlaying, true},
		{SessionPaused, SessionCompleted, true},
		{SessionPaused, SessionIdle, false},
		{SessionCompleted, SessionPlaying, false},
		{SessionCompleted, SessionIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		name     string
		position int64
		playTime int64
		want     bool
	}{
		{"at 96 percent", 96000, 100000, true},
		{"at exactly threshold", 95000, 100000, false},
		{"just past threshold", 95001, 100000, true},
		{"halfway", 50000, 100000, false},
		{"unknown duration", 96000, 0, false},
		{"negative duration", 96000, -1, false},
		{"past the end", 101000, 100000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsComplete(tt.position, tt.playTime); got != tt.want {
				t.Errorf("IsComplete(%d, %d) = %v, want %v", tt.position, tt.playTime, got, tt.want)
			}
		})
	}
}

func TestAudioFileLocation(t *testing.T) {
	loc := FoundInCatalog("loc-abc")
	if !loc.Found() || loc.Kind != LocationCatalog || loc.Locator != "loc-abc" {
		t.Errorf("unexpected catalog location: %+v", loc)
	}

	legacy := FoundAtLegacyPath("/sdcard/Audiobooks/BookReader/audio/Hobbit/001.mp3")
	if !legacy.Found() || legacy.Kind != LocationLegacyPath {
		t.Errorf("unexpected legacy location: %+v", legacy)
	}

	none := NoLocation()
	if none.Found() || none.Kind != LocationNotFound {
		t.Errorf("unexpected not-found location: %+v", none)
	}
}
