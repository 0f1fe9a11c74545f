// Package timezone provides timezone utilities for nlcal.
//
// Relative dates are resolved against the wall-clock date in the caller's
// zone, so every entry point turns a zone name and an optional instant
// into an aitime.Reference here.
package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC

	// Local is the local timezone
	Local = time.Local
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Berlin"),
// "Local", or a fixed offset such as "+02:00".
// An empty string is the local zone. Invalid names return Local and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	tz = strings.TrimSpace(tz)
	switch {
	case tz == "" || strings.EqualFold(tz, "local"):
		return Local, nil
	case tz == "UTC" || tz == "Z":
		return UTC, nil
	case tz[0] == '+' || tz[0] == '-':
		offset, err := parseOffset(tz)
		if err != nil {
			return Local, err
		}
		return time.FixedZone(tz, offset), nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Local, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// parseOffset reads "+hh:mm", "+hhmm" or "+hh" as seconds east of UTC.
func parseOffset(s string) (int, error) {
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(s[1:], ":", "")
	if len(digits) != 2 && len(digits) != 4 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 14 {
		return 0, fmt.Errorf("invalid UTC offset %q", s)
	}
	minutes := 0
	if len(digits) == 4 {
		minutes, err = strconv.Atoi(digits[2:])
		if err != nil || minutes > 59 {
			return 0, fmt.Errorf("invalid UTC offset %q", s)
		}
	}
	return sign * (hours*3600 + minutes*60), nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// nowLayouts are accepted for an explicit reference instant, most specific first.
var nowLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseNow parses an explicit reference instant. Layouts without an offset
// are read in loc. An empty string means time.Now().
func ParseNow(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = Local
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().In(loc), nil
	}
	for _, layout := range nowLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid reference time %q: want RFC3339 or YYYY-MM-DD[ HH:MM]", s)
}

// ReferenceAt builds the reference instant for a request. now and tz are
// both optional; an RFC3339 now keeps its own offset unless tz is given.
func ReferenceAt(now, tz string) (aitime.Reference, error) {
	loc, err := ParseTimezone(tz)
	if err != nil {
		return aitime.Reference{}, err
	}
	t, err := ParseNow(now, loc)
	if err != nil {
		return aitime.Reference{}, err
	}
	if tz != "" {
		t = t.In(loc)
	}
	return aitime.NewReference(t), nil
}
