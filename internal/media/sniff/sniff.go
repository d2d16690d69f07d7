// Package sniff provides lightweight MP3 container detection and a duration
// estimate. Detection reads only the first bytes of a file; it is a format
// sniff, not a decode validation.
package sniff

import (
	"io"
	"os"
)

// id3Tag is the 3-byte signature of an ID3v2 header.
var id3Tag = []byte("ID3")

// DetectHeader reports whether the given leading bytes look like an MP3
// container: either an ID3v2 tag, or an MPEG frame sync (0xFF followed by a
// byte with its top three bits set).
func DetectHeader(header []byte) bool {
	if len(header) >= 3 && header[0] == id3Tag[0] && header[1] == id3Tag[1] && header[2] == id3Tag[2] {
		return true
	}
	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return true
	}
	return false
}

// DetectReader reads up to three bytes from r and applies DetectHeader.
func DetectReader(r io.Reader) (bool, error) {
	header := make([]byte, 3)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false, err
	}
	return DetectHeader(header[:n]), nil
}

// DetectFile reports whether the file at path is a non-empty MP3. A missing
// or unreadable file is simply not an MP3; no error escapes.
func DetectFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	ok, err := DetectReader(f)
	if err != nil {
		return false
	}
	return ok
}
