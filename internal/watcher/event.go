package watcher

import "time"

// EventType is the kind of change seen under the audio root.
type EventType int

const (
	// EventAdded is emitted when a new file has finished settling.
	EventAdded EventType = iota
	// EventRemoved is emitted when a file is deleted.
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a single file change under the watched root.
type Event struct {
	Type EventType

	// Path is the absolute file path.
	Path string

	// Size is the file size in bytes. Zero for removals.
	Size int64

	// ModTime is the file's last modification time. Zero for removals.
	ModTime time.Time
}
