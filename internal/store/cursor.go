package store

import (
	"regexp"
	"strconv"
	"strings"

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
	"github.com/lifelogapp/lifelog-server/internal/id"
)

// cursorSeparator divides the timestamp from the ID in an encoded cursor.
const cursorSeparator = "_"

var digits = regexp.MustCompile(`^[0-9]+$`)

// Cursor is a position in a (timestamp DESC, id DESC) ordered sequence.
// It is only ever serialized as "{timestampMs}_{id}" at the API boundary.
type Cursor struct {
	TimestampMs int64
	ID          string
}

// Encode serializes the cursor.
func (c Cursor) Encode() string {
	return strconv.FormatInt(c.TimestampMs, 10) + cursorSeparator + c.ID
}

// DecodeCursor parses an encoded cursor. An empty string means "first page"
// and yields nil. Anything malformed fails with an invalid cursor error.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	// Everything before the first separator is the timestamp; the rest is the ID.
	tsPart, idPart, found := strings.Cut(s, cursorSeparator)
	if !found {
		return nil, domainerrors.InvalidCursorf("invalid cursor %q: missing separator", s)
	}

	if !digits.MatchString(tsPart) {
		return nil, domainerrors.InvalidCursorf("invalid cursor %q: timestamp must be a positive integer", s)
	}
	ts, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil || ts <= 0 {
		return nil, domainerrors.InvalidCursorf("invalid cursor %q: timestamp must be a positive integer", s)
	}

	if !id.Valid(idPart) {
		return nil, domainerrors.InvalidCursorf("invalid cursor %q: malformed id", s)
	}

	return &Cursor{TimestampMs: ts, ID: idPart}, nil
}
