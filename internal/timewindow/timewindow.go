// Package timewindow converts wall-clock calendar inputs in an IANA timezone
// into UTC millisecond ranges.
//
// Day ranges are closed: [start, end] where end is one millisecond before the
// next local midnight. Month, week, and today ranges are half-open: [start, end).
// No range assumes a fixed 24 hour day; every boundary is a civil midnight
// computed in the target zone.
package timewindow

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // IANA database fallback for hosts without zoneinfo

	domainerrors "github.com/lifelogapp/lifelog-server/internal/errors"
)

// Layouts for calendar inputs.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// SearchLookbackDays bounds searches that do not name a date.
const SearchLookbackDays = 90

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// Bound describes whether a range includes its end instant.
type Bound int

const (
	// Exclusive ranges are [StartMs, EndMs).
	Exclusive Bound = iota
	// Inclusive ranges are [StartMs, EndMs].
	Inclusive
)

// Range is a window of UTC epoch milliseconds.
type Range struct {
	StartMs int64
	EndMs   int64
	End     Bound
}

// Contains reports whether ms falls inside the range.
func (r Range) Contains(ms int64) bool {
	if ms < r.StartMs {
		return false
	}
	if r.End == Inclusive {
		return ms <= r.EndMs
	}
	return ms < r.EndMs
}

// UpperExclusive returns the first instant after the range, so any range can be
// queried as start <= ts < UpperExclusive().
func (r Range) UpperExclusive() int64 {
	if r.End == Inclusive {
		return r.EndMs + 1
	}
	return r.EndMs
}

// Span returns the length of the range.
func (r Range) Span() time.Duration {
	return time.Duration(r.UpperExclusive()-r.StartMs) * time.Millisecond
}

// LoadZone resolves an IANA zone name.
// An empty name is a missing parameter; anything unresolvable is an invalid timezone.
func LoadZone(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return nil, domainerrors.Validation("tz is required (IANA timezone name)")
	}
	// "Local" depends on the host, never on the caller.
	if tz == "Local" {
		return nil, domainerrors.InvalidTimezonef("invalid timezone %q", tz)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, domainerrors.InvalidTimezonef("invalid timezone %q", tz).WithCause(err)
	}
	return loc, nil
}

// ParseDate validates a YYYY-MM-DD string: syntax first, then calendar existence.
func ParseDate(date string) (year int, month time.Month, day int, err error) {
	if date == "" {
		return 0, 0, 0, domainerrors.Validation("date is required (YYYY-MM-DD)")
	}
	if !datePattern.MatchString(date) {
		return 0, 0, 0, domainerrors.Validationf("invalid date %q: expected YYYY-MM-DD", date)
	}
	t, err := time.Parse(DateLayout, date)
	if err != nil || t.Format(DateLayout) != date {
		return 0, 0, 0, domainerrors.Validationf("invalid date %q: no such calendar day", date)
	}
	return t.Year(), t.Month(), t.Day(), nil
}

// ParseMonth validates a YYYY-MM string.
func ParseMonth(month string) (year int, mon time.Month, err error) {
	if !monthPattern.MatchString(month) {
		return 0, 0, domainerrors.Validationf("invalid month %q: expected YYYY-MM", month)
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil || t.Format(MonthLayout) != month {
		return 0, 0, domainerrors.Validationf("invalid month %q: no such calendar month", month)
	}
	return t.Year(), t.Month(), nil
}

// Day resolves a calendar day in tz to [local midnight, next local midnight - 1ms].
func Day(date, tz string) (Range, error) {
	y, m, d, err := ParseDate(date)
	if err != nil {
		return Range{}, err
	}
	loc, err := LoadZone(tz)
	if err != nil {
		return Range{}, err
	}
	r := dayIn(y, m, d, loc)
	// A day the zone skipped entirely has no local midnight of its own.
	if LocalDate(r.StartMs, loc) != date || r.StartMs > r.EndMs {
		return Range{}, domainerrors.InvalidTimezonef("timezone %q has no calendar day %s", tz, date)
	}
	return r, nil
}

// Month resolves a calendar month in tz to [first local midnight, next month's first local midnight).
func Month(month, tz string) (Range, error) {
	y, m, err := ParseMonth(month)
	if err != nil {
		return Range{}, err
	}
	loc, err := LoadZone(tz)
	if err != nil {
		return Range{}, err
	}
	return Range{
		StartMs: civilMidnight(y, m, 1, loc).UnixMilli(),
		EndMs:   civilMidnight(y, m+1, 1, loc).UnixMilli(),
		End:     Exclusive,
	}, nil
}

// Today resolves the local day containing now.
func Today(now time.Time, tz string) (Range, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return Range{}, err
	}
	y, m, d := now.In(loc).Date()
	return Range{
		StartMs: civilMidnight(y, m, d, loc).UnixMilli(),
		EndMs:   civilMidnight(y, m, d+1, loc).UnixMilli(),
		End:     Exclusive,
	}, nil
}

// Week resolves the Monday-start local week containing now.
func Week(now time.Time, tz string) (Range, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return Range{}, err
	}
	local := now.In(loc)
	y, m, d := local.Date()
	sinceMonday := (int(local.Weekday()) + 6) % 7
	return Range{
		StartMs: civilMidnight(y, m, d-sinceMonday, loc).UnixMilli(),
		EndMs:   civilMidnight(y, m, d-sinceMonday+7, loc).UnixMilli(),
		End:     Exclusive,
	}, nil
}

// Lookback resolves [same wall-clock time `days` civil days ago, now] in tz.
func Lookback(now time.Time, tz string, days int) (Range, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return Range{}, err
	}
	local := now.In(loc)
	return Range{
		StartMs: local.AddDate(0, 0, -days).UnixMilli(),
		EndMs:   now.UnixMilli(),
		End:     Inclusive,
	}, nil
}

// LocalDate formats a UTC millisecond instant as the YYYY-MM-DD calendar day in loc.
func LocalDate(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(DateLayout)
}

func dayIn(y int, m time.Month, d int, loc *time.Location) Range {
	return Range{
		StartMs: civilMidnight(y, m, d, loc).UnixMilli(),
		EndMs:   civilMidnight(y, m, d+1, loc).UnixMilli() - 1,
		End:     Inclusive,
	}
}

// civilMidnight returns the first instant of the local calendar day y-m-d.
// Day and month overflow normalise the same way time.Date does.
func civilMidnight(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	ty, tm, td := t.Date()
	if ty != want.Year() || tm != want.Month() || td != want.Day() {
		// Midnight was skipped by a forward transition: the day begins at the transition.
		_, end := t.ZoneBounds()
		return end
	}

	// Midnight repeated by a backward transition: the day begins at the first occurrence.
	start, _ := t.ZoneBounds()
	if !start.IsZero() {
		_, prevOffset := start.Add(-time.Nanosecond).Zone()
		_, offset := t.Zone()
		if prevOffset > offset {
			earlier := t.Add(-time.Duration(prevOffset-offset) * time.Second)
			if earlier.Before(start) {
				return earlier
			}
		}
	}
	return t
}
