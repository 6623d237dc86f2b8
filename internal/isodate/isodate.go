// Package isodate encodes and decodes the ISO-8601 strings dates are stored as.
package isodate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical stored form: UTC with millisecond precision.
const Layout = "2006-01-02T15:04:05.000Z"

// DateLayout is the calendar-date form used for due dates typed by a user.
const DateLayout = "2006-01-02"

// ErrEmpty is returned when parsing a blank string.
var ErrEmpty = errors.New("empty date")

// parseLayouts are tried in order by Parse.
var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// Format renders t in UTC as "2006-01-02T15:04:05.000Z".
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse accepts RFC 3339 timestamps (with or without fraction), zone-less
// timestamps and bare dates. Zone-less values are read as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 date %q", s)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// FormatDate renders the UTC calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Display renders t as "Jan 2, 2006" in UTC.
func Display(t time.Time) string {
	return t.UTC().Format("Jan 2, 2006")
}

// Truncate drops what the stored form cannot hold: the zone, the monotonic
// reading and everything below a millisecond.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Date truncates t to midnight UTC of its UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Equal reports whether a and b are both nil or name the same instant.
func Equal(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
