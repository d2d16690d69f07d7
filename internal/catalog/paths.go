package catalog

import (
	"path"
	"strings"
)

// The media catalog files every book under a fixed three-segment prefix:
// a top-level audio-content category, the app namespace, and the audio leaf.
const (
	categorySegment = "Audiobooks"
	appSegment      = "BookReader"
	audioSegment    = "audio"

	// RelativePrefix is the fixed prefix of every catalog relative path.
	RelativePrefix = categorySegment + "/" + appSegment + "/" + audioSegment + "/"

	// DefaultMimeType is used when an entry is created without an explicit
	// MIME type.
	DefaultMimeType = "audio/mpeg"
)

// BookRelativePath returns the catalog relative path of a book directory:
// the fixed prefix plus the directory token, with exactly one trailing
// separator and never a doubled one.
func BookRelativePath(directoryName string) string {
	return RelativePrefix + strings.Trim(directoryName, "/") + "/"
}

// FullRelativePath returns the catalog relative path of one file inside a
// book directory, with no separator duplication.
func FullRelativePath(directoryName, fileName string) string {
	return BookRelativePath(directoryName) + strings.TrimLeft(fileName, "/")
}

// LegacyAbsolutePath builds the pre-scoped-storage absolute path for hosts
// without a media catalog: root + category + app + audio + token + file.
func LegacyAbsolutePath(root, directoryName, fileName string) string {
	return path.Join(root, categorySegment, appSegment, audioSegment, directoryName, fileName)
}
