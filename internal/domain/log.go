package domain

import "strings"

// LogType is the closed set of entry kinds.
type LogType string

// Log entry kinds.
const (
	LogTypeActivity LogType = "activity"
	LogTypeWakeUp   LogType = "wake_up"
	LogTypeMeal     LogType = "meal"
	LogTypeLocation LogType = "location"
	LogTypeThought  LogType = "thought"
	LogTypeReading  LogType = "reading"
	LogTypeMedia    LogType = "media"
	LogTypeBookmark LogType = "bookmark"
)

// LogTypes lists every valid LogType in display order.
var LogTypes = []LogType{
	LogTypeActivity,
	LogTypeWakeUp,
	LogTypeMeal,
	LogTypeLocation,
	LogTypeThought,
	LogTypeReading,
	LogTypeMedia,
	LogTypeBookmark,
}

// Valid reports whether t is a member of the closed set.
func (t LogType) Valid() bool {
	for _, v := range LogTypes {
		if t == v {
			return true
		}
	}
	return false
}

// LogTypeNames returns the LogTypes as plain strings.
func LogTypeNames() []string {
	names := make([]string, len(LogTypes))
	for i, t := range LogTypes {
		names[i] = string(t)
	}
	return names
}

// Metadata is a schema-less bag attached to a log entry.
// Values must be JSON-serializable; the core never interprets them except URL.
type Metadata map[string]any

// URL returns the "url" value when it is a non-empty string.
func (m Metadata) URL() (string, bool) {
	raw, ok := m["url"]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// Log is a single timestamped life-log entry.
// All timestamps are UTC epoch milliseconds.
type Log struct {
	ID        string   `json:"id"`
	Type      LogType  `json:"type"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp"`
	Metadata  Metadata `json:"metadata"`
	TagIDs    []string `json:"tagIds"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// Touch advances UpdatedAt to now, or one millisecond past its previous value
// when the clock has not moved forward.
func (l *Log) Touch(nowMs int64) {
	if nowMs <= l.UpdatedAt {
		nowMs = l.UpdatedAt + 1
	}
	l.UpdatedAt = nowMs
}
