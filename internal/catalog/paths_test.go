package catalog

import (
	"strings"
	"testing"
)

func TestBookRelativePath(t *testing.T) {
	tests := []struct {
		dir      string
		expected string
	}{
		{"TheHobbit", "Audiobooks/BookReader/audio/TheHobbit/"},
		{"TheHobbit/", "Audiobooks/BookReader/audio/TheHobbit/"},
		{"/TheHobbit", "Audiobooks/BookReader/audio/TheHobbit/"},
	}

	for _, tt := range tests {
		got := BookRelativePath(tt.dir)
		if got != tt.expected {
			t.Errorf("BookRelativePath(%q) = %q, want %q", tt.dir, got, tt.expected)
		}
		if strings.Contains(got, "//") {
			t.Errorf("BookRelativePath(%q) = %q contains a doubled separator", tt.dir, got)
		}
		if !strings.HasSuffix(got, "/") || strings.HasSuffix(got, "//") {
			t.Errorf("BookRelativePath(%q) = %q must end with exactly one separator", tt.dir, got)
		}
	}
}

func TestFullRelativePath(t *testing.T) {
	tests := []struct {
		dir, file string
		expected  string
	}{
		{"TheHobbit", "001.mp3", "Audiobooks/BookReader/audio/TheHobbit/001.mp3"},
		{"TheHobbit/", "/001.mp3", "Audiobooks/BookReader/audio/TheHobbit/001.mp3"},
	}

	for _, tt := range tests {
		got := FullRelativePath(tt.dir, tt.file)
		if got != tt.expected {
			t.Errorf("FullRelativePath(%q, %q) = %q, want %q", tt.dir, tt.file, got, tt.expected)
		}
		if strings.Contains(got, "//") {
			t.Errorf("FullRelativePath(%q, %q) = %q contains a doubled separator", tt.dir, tt.file, got)
		}
		if !strings.HasPrefix(got, RelativePrefix) {
			t.Errorf("FullRelativePath(%q, %q) = %q missing fixed prefix", tt.dir, tt.file, got)
		}
	}
}

func TestLegacyAbsolutePath(t *testing.T) {
	got := LegacyAbsolutePath("/sdcard", "TheHobbit", "001.mp3")
	want := "/sdcard/Audiobooks/BookReader/audio/TheHobbit/001.mp3"
	if got != want {
		t.Errorf("LegacyAbsolutePath = %q, want %q", got, want)
	}
}
