// Package timeutil normalizes timestamps at the system boundary. Every
// persisted instant is UTC; conversion to a caretaker's wall clock happens
// only when parsing input or formatting output.
package timeutil

import (
	"errors"
	"time"
)

var (
	// ErrInvalidDate is returned when an input cannot be parsed to a valid
	// calendar date/time.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidRange is returned when a range's end precedes its start.
	ErrInvalidRange = errors.New("end time before start time")
)

// inputLayouts are tried in order when parsing string input. Forms without
// an offset are interpreted in the supplied location.
var inputLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false}, // datetime-local form values
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", false},
}

// ParseToUTC parses a caller-local date/time string and returns the
// equivalent UTC instant. Inputs carrying an explicit offset keep it;
// offset-less inputs are read as wall-clock time in loc.
func ParseToUTC(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, l := range inputLayouts {
		var t time.Time
		var err error
		if l.zoned {
			t, err = time.Parse(l.layout, s)
		} else {
			t, err = time.ParseInLocation(l.layout, s, loc)
		}
		if err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ToUTC normalizes an already-parsed time to the canonical representation.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// ToLocal converts a stored instant to wall-clock time in the named IANA
// zone. The stored value is never mutated.
func ToLocal(instant time.Time, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return instant.In(loc), nil
}

// FormatForResponse renders an instant as an ISO-8601 UTC string, or passes
// nil through for absent optional timestamps.
func FormatForResponse(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// DurationMinutes returns the whole minutes between start and end.
func DurationMinutes(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return int(end.Sub(start) / time.Minute), nil
}

// DayWindow returns the UTC instants bounding the local calendar day that
// contains day in loc: [00:00:00.000, 23:59:59.999]. The end bound is built
// explicitly in local time so DST transitions do not shift it.
func DayWindow(day time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc).UTC()
	end = time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), loc).UTC()
	return start, end
}

// ElapsedMinutesOfDay returns how many minutes of the local day containing
// day have elapsed as of now: the full 1440 for a past day, minutes since
// local midnight for the current day, clamped to [0, 1440].
func ElapsedMinutesOfDay(day, now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	start, end := DayWindow(day, loc)
	if !now.Before(end) {
		return 24 * 60
	}
	if now.Before(start) {
		return 0
	}
	elapsed := int(now.Sub(start) / time.Minute)
	if elapsed > 24*60 {
		elapsed = 24 * 60
	}
	return elapsed
}

// SameLocalDay reports whether a and b fall on the same calendar day in loc.
func SameLocalDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
