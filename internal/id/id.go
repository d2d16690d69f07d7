// Package id generates the opaque locator identifiers handed out by the
// media catalog.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// LocatorPrefix is the prefix of every catalog locator.
const LocatorPrefix = "loc"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "loc-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random
// generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewLocator creates a fresh catalog locator.
func NewLocator() (string, error) {
	return Generate(LocatorPrefix)
}
