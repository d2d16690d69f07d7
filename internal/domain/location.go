package domain

// LocationKind discriminates the AudioFileLocation variant.
type LocationKind int

const (
	// LocationNotFound means neither the catalog nor the legacy path has
	// the file. Absence is a legitimate steady state (not yet imported),
	// so this is a value, never an error.
	LocationNotFound LocationKind = iota

	// LocationCatalog means the file was resolved through the media
	// catalog and Locator identifies the entry.
	LocationCatalog

	// LocationLegacyPath means the file was found at a pre-scoped-storage
	// absolute path and AbsolutePath points at it.
	LocationLegacyPath
)

func (k LocationKind) String() string {
	switch k {
	case LocationCatalog:
		return "catalog"
	case LocationLegacyPath:
		return "legacy-path"
	case LocationNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// AudioFileLocation is the tagged result of resolving a (book directory,
// file name) pair to a playable audio source. It is computed per lookup and
// never persisted.
type AudioFileLocation struct {
	Kind LocationKind

	// Locator is set when Kind == LocationCatalog.
	Locator string

	// AbsolutePath is set when Kind == LocationLegacyPath.
	AbsolutePath string
}

// FoundInCatalog builds a catalog-backed location.
func FoundInCatalog(locator string) AudioFileLocation {
	return AudioFileLocation{Kind: LocationCatalog, Locator: locator}
}

// FoundAtLegacyPath builds a legacy absolute-path location.
func FoundAtLegacyPath(abs string) AudioFileLocation {
	return AudioFileLocation{Kind: LocationLegacyPath, AbsolutePath: abs}
}

// NoLocation is the neutral not-found result.
func NoLocation() AudioFileLocation {
	return AudioFileLocation{Kind: LocationNotFound}
}

// Found reports whether the location points at a playable source.
func (l AudioFileLocation) Found() bool {
	return l.Kind != LocationNotFound
}
