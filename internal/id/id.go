// Package id generates and validates entity identifiers.
//
// Identifiers are ULIDs: 26 characters of Crockford base32 whose lexical
// order matches creation order, so ORDER BY id doubles as a timestamp tie-break.
package id

import (
	"fmt"
	"regexp"

	"github.com/oklog/ulid/v2"
)

// Length is the fixed length of every identifier.
const Length = ulid.EncodedSize

// pattern matches the Crockford base32 alphabet (no I, L, O, U), upper case only.
var pattern = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)

// Generate creates a new sortable unique ID.
//
// IDs generated within the same millisecond are strictly increasing.
// Returns an error if the entropy source fails or the monotonic counter overflows.
func Generate() (string, error) {
	u, err := ulid.New(ulid.Now(), ulid.DefaultEntropy())
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return u.String(), nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate() string {
	id, err := Generate()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Valid reports whether s has the exact identifier format.
func Valid(s string) bool {
	return pattern.MatchString(s)
}

// FilterValid returns the well-formed IDs from ids, preserving order.
// Malformed entries are dropped, not reported.
func FilterValid(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, s := range ids {
		if Valid(s) {
			out = append(out, s)
		}
	}
	return out
}
