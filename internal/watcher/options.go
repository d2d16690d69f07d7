package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// Options configures the watcher.
type Options struct {
	// IgnorePatterns are filepath.Match patterns checked against the
	// base name of each path. When nil, defaults cover the usual
	// transfer droppings (.tmp files, .DS_Store, Thumbs.db).
	IgnorePatterns []string

	// SettleDelay is how long a file must stay unchanged before an
	// added event is emitted. Copies into the audio root arrive in
	// chunks; emitting early would hand a half-written file downstream.
	SettleDelay time.Duration

	// IgnoreHidden skips dot files and anything under a dot directory.
	IgnoreHidden bool
}

func (o *Options) setDefaults() {
	if o.SettleDelay == 0 {
		o.SettleDelay = 100 * time.Millisecond
	}

	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"*.tmp",
			"*.temp",
			"*.part",
			"Thumbs.db",
		}
		o.IgnoreHidden = true
	}
}

func (o *Options) shouldIgnore(path string) bool {
	if o.IgnoreHidden {
		for part := range strings.SplitSeq(filepath.Clean(path), string(filepath.Separator)) {
			if strings.HasPrefix(part, ".") && part != "." && part != ".." {
				return true
			}
		}
	}

	base := filepath.Base(path)
	for _, pattern := range o.IgnorePatterns {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	return false
}
