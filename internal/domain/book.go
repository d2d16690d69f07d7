// Package domain contains the core types of the BookReader library:
// books, chapters, audio file locations, and playback session state.
package domain

// Book is one audiobook in the library. Books are created by the catalog
// import and are immutable afterwards; runtime flows only read them.
type Book struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Chapter is one audio file belonging to a book. Chapter IDs within a book
// form a contiguous ascending sequence; next/previous navigation relies on
// that ordering rather than an explicit sequence column.
type Chapter struct {
	ID     int64  `json:"id"`
	BookID int64  `json:"book_id"`
	Title  string `json:"title"`

	// FileName is the chapter's audio file name inside the book directory,
	// e.g. "001.mp3".
	FileName string `json:"file_name"`

	// PlayTime is the total duration of the chapter audio in milliseconds.
	PlayTime int64 `json:"play_time"`

	// LastPlayedPosition is the most recently checkpointed playback offset
	// in milliseconds.
	LastPlayedPosition int64 `json:"last_played_position"`

	// LastPlayedTimestamp is the epoch-millisecond time of the last
	// checkpoint. Zero means the chapter was never played.
	LastPlayedTimestamp int64 `json:"last_played_timestamp"`

	FinishedPlaying bool `json:"finished_playing"`
}

// Played reports whether the chapter has ever been checkpointed.
func (c *Chapter) Played() bool {
	return c.LastPlayedTimestamp != 0
}
