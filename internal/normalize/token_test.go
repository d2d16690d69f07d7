package normalize

import (
	"strings"
	"testing"
	"unicode"
)

func TestToken(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"the name of the wind", "TheNameOfTheWind"},
		{"The Name of the Wind", "TheNameOfTheWind"},
		{"Harry Potter", "HarryPotter"},
		{"harry potter #1!", "HarryPotter1"},
		{"  multi   word   title  ", "MultiWordTitle"},
		{"don't panic", "DontPanic"},
		{"1984", "1984"},
		{"Krieg und Frieden", "KriegUndFrieden"},
		{"Über den Dächern", "ÜberDenDächern"},
		// Sentinel cases.
		{"", "unknown"},
		{"   ", "unknown"},
		{"\t\n", "unknown"},
		{"***", "unknown"},
		{"!@#$%^&*()", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Token(tt.input); got != tt.expected {
				t.Errorf("Token(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTokenIdempotent(t *testing.T) {
	titles := []string{
		"the name of the wind",
		"Harry Potter #1!",
		"  multi   word ",
		"ALL CAPS TITLE",
		"mIxEd CaSe",
		"Über den Dächern",
	}

	for _, title := range titles {
		once := Token(title)
		twice := Token(once)
		if once != twice {
			t.Errorf("Token not idempotent for %q: %q -> %q", title, once, twice)
		}
	}
}

func TestTokenIsFilesystemSafe(t *testing.T) {
	titles := []string{
		"a/b\\c", "with spaces", "tabs\there", "dots. and, commas",
		"slashes / everywhere / here",
	}

	for _, title := range titles {
		token := Token(title)
		if strings.ContainsRune(token, '/') {
			t.Errorf("Token(%q) = %q contains a path separator", title, token)
		}
		for _, r := range token {
			if unicode.IsSpace(r) {
				t.Errorf("Token(%q) = %q contains whitespace", title, token)
			}
		}
	}
}
