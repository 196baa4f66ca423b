package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelogapp/lifelog-server/internal/domain"
	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

// fixedNow is Wednesday 2025-12-03 18:00 UTC.
var fixedNow = time.Date(2025, 12, 3, 18, 0, 0, 0, time.UTC)

var ulidPattern = regexp.MustCompile(`[0-9A-HJKMNP-TV-Z]{26}`)

type harness struct {
	t      *testing.T
	dbPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{t: t, dbPath: filepath.Join(t.TempDir(), "sub", "lifelog.db")}
}

// run executes one command against the harness database.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := &app{now: func() time.Time { return fixedNow }}
	cmd := newRootCommand(a)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", h.dbPath}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "lifelog %v", args)
	return out
}

// addID runs an add command and returns the created ID.
func (h *harness) addID(args ...string) string {
	h.t.Helper()
	out := h.mustRun(append([]string{"add"}, args...)...)
	logID := ulidPattern.FindString(out)
	require.NotEmpty(h.t, logID, out)
	return logID
}

func TestAddAndDay(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "meal", "Ramen", "for", "lunch", "--at", "2025-12-03 12:30")
	assert.Contains(t, out, "Added Meal")
	assert.Contains(t, out, "at 2025-12-03 12:30")

	h.mustRun("add", "wake_up", "Up early", "--at", "2025-12-03T06:15:00Z")
	h.mustRun("add", "thought", "yesterday", "--at", "2025-12-02 23:59")

	out = h.mustRun("day")
	assert.Contains(t, out, "Ramen for lunch")
	assert.Contains(t, out, "Wake Up")
	assert.NotContains(t, out, "yesterday")

	out = h.mustRun("day", "2025-12-02")
	assert.Contains(t, out, "yesterday")
	assert.NotContains(t, out, "Ramen")
}

func TestDay_Timezone(t *testing.T) {
	h := newHarness(t)

	// 02:00 UTC on Dec 3 is still Dec 2 in New York.
	h.mustRun("add", "thought", "late night", "--at", "2025-12-03T02:00:00Z")

	out := h.mustRun("--tz", "America/New_York", "day", "2025-12-02")
	assert.Contains(t, out, "late night")
	assert.Contains(t, out, "2025-12-02 21:00")

	_, err := h.run("--tz", "Mars/Base", "day")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInvalidTimezone, domainerrors.CodeOf(err))
}

func TestAdd_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("add", "nap", "zzz")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = h.run("add", "meal", "toast", "--tag", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tag "missing" not found`)

	_, err = h.run("add", "meal", "toast", "--at", "teatime")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --at")
}

func TestShowAndRm(t *testing.T) {
	h := newHarness(t)
	h.mustRun("tags", "add", "reading-list")

	logID := h.addID("bookmark", "Good essay", "--meta", "url=https://example.com/essay", "--tag", "reading-list")

	out := h.mustRun("show", logID)
	assert.Contains(t, out, "Type:     Bookmark")
	assert.Contains(t, out, "Tags:     reading-list")
	assert.Contains(t, out, `Metadata: {"url":"https://example.com/essay"}`)
	assert.Contains(t, out, "Good essay")

	out = h.mustRun("rm", logID)
	assert.Contains(t, out, "Deleted "+logID)

	_, err := h.run("show", logID)
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))

	_, err = h.run("show", "not-an-id")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestArchive_Paging(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "meal", "breakfast", "--at", "2025-12-01 08:00")
	h.mustRun("add", "wake_up", "up", "--at", "2025-12-01 07:00")
	h.mustRun("add", "thought", "hmm", "--at", "2025-12-01 09:00")

	out := h.mustRun("archive", "meal,wake_up", "-n", "1")
	assert.Contains(t, out, "breakfast")
	assert.NotContains(t, out, "hmm")

	cursor := regexp.MustCompile(`more: --cursor (\S+)`).FindStringSubmatch(out)
	require.Len(t, cursor, 2, out)

	out = h.mustRun("archive", "meal", "wake_up", "-n", "1", "--cursor", cursor[1])
	assert.Contains(t, out, "up")
	assert.NotContains(t, out, "more:")

	_, err := h.run("archive", "--cursor", "garbage")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeInvalidCursor, domainerrors.CodeOf(err))
}

func TestTags(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("tags", "list")
	assert.Contains(t, out, "No tags yet")

	out = h.mustRun("tags", "add", "gym", "--color", "#00ff00")
	tagID := ulidPattern.FindString(out)
	require.NotEmpty(t, tagID)

	_, err := h.run("tags", "add", "gym")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeConflict, domainerrors.CodeOf(err))

	h.mustRun("add", "activity", "squats", "--tag", "gym")

	out = h.mustRun("tags", "list")
	assert.Contains(t, out, "gym")
	assert.Contains(t, out, "#00ff00")

	out = h.mustRun("tags", "logs", tagID)
	assert.Contains(t, out, "squats")

	h.mustRun("tags", "rm", tagID)
	out = h.mustRun("tags", "logs", tagID)
	assert.Contains(t, out, "No entries.")
}

func TestSearchAndStats(t *testing.T) {
	h := newHarness(t)
	h.mustRun("tags", "add", "fun")
	h.mustRun("add", "media", "100% worth it", "--at", "2025-12-03 10:00", "--tag", "fun")
	h.mustRun("add", "media", "1000 episodes", "--at", "2025-12-01 10:00")
	h.mustRun("add", "bookmark", "saved", "--at", "2025-11-20 10:00", "-m", "url=https://go.dev")

	out := h.mustRun("search", "100%")
	assert.Contains(t, out, "100% worth it")
	assert.NotContains(t, out, "1000 episodes")

	out = h.mustRun("search", "100", "--date", "2025-12-01")
	assert.Contains(t, out, "1000 episodes")
	assert.NotContains(t, out, "worth it")

	_, err := h.run("search", "x")
	require.Error(t, err)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	out = h.mustRun("stats", "--month", "2025-12")
	assert.Contains(t, out, "Today: 1")
	assert.Contains(t, out, "This week: 2")
	assert.Contains(t, out, "https://go.dev")
	assert.Regexp(t, `fun\s+1`, out)
	assert.Contains(t, out, "2025-12-01 # 1")
	assert.Contains(t, out, "2025-12-03 # 1")
}

func TestMigrate(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("migrate")
	assert.Contains(t, out, "Schema version 1")
	assert.FileExists(t, h.dbPath)

	// Idempotent.
	out = h.mustRun("migrate")
	assert.Contains(t, out, "Schema version 1")
}

func TestSeed(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("seed", "--days", "3", "--per-day", "2", "--seed", "42")
	assert.Regexp(t, `Created \d+ entries across 3 days`, out)

	out = h.mustRun("tags", "list")
	for _, name := range seedTags {
		assert.Contains(t, out, name)
	}

	out = h.mustRun("archive")
	assert.NotContains(t, out, "No entries.")

	// A second run reuses the existing tags.
	h.mustRun("seed", "--days", "1", "--seed", "7")

	_, err := h.run("seed", "--days", "0")
	require.Error(t, err)
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Wake Up", typeLabel(domain.LogTypeWakeUp))
	assert.Equal(t, "Bookmark", typeLabel(domain.LogTypeBookmark))
}

func TestParseTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ms, err := parseTimestamp("1733228400000", ny)
	require.NoError(t, err)
	assert.Equal(t, int64(1733228400000), ms)

	ms, err = parseTimestamp("2025-12-03T12:00:00Z", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 3, 12, 0, 0, 0, time.UTC).UnixMilli(), ms)

	ms, err = parseTimestamp("2025-12-03 07:00", ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 3, 12, 0, 0, 0, time.UTC).UnixMilli(), ms)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
