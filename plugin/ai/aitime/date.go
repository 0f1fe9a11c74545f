package aitime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date without a time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Valid reports whether the date names a real calendar day.
// Out-of-range values are never normalized (2024-02-30 is not 2024-03-01).
func (d Date) Valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 || d.Day > 31 {
		return false
	}
	t := d.midnight(time.UTC)
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// AddDays returns the date n days after d (before d when n is negative).
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of the week d falls on.
func (d Date) Weekday() time.Weekday {
	return d.midnight(time.UTC).Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// DaysUntil returns the signed number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.midnight(time.UTC).Sub(d.midnight(time.UTC)).Hours() / 24)
}

// In returns local midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return d.midnight(loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Reference is the evaluation context for resolving relative expressions:
// the observer's local date, local time of day and UTC offset.
type Reference struct {
	Date   Date
	Clock  time.Duration // time since local midnight
	Offset int           // seconds east of UTC
}

// NewReference captures the reference instant from t in t's own location.
func NewReference(t time.Time) Reference {
	_, offset := t.Zone()
	h, m, s := t.Clock()
	return Reference{
		Date:   DateOf(t),
		Clock:  time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second,
		Offset: offset,
	}
}

// Location returns a fixed zone carrying the reference offset.
func (r Reference) Location() *time.Location {
	return time.FixedZone(FormatOffset(r.Offset), r.Offset)
}

// Time reconstructs the reference instant.
func (r Reference) Time() time.Time {
	return r.Date.In(r.Location()).Add(r.Clock)
}

// ResolvedDate is a concrete calendar date paired with the UTC offset
// in effect when it was resolved.
type ResolvedDate struct {
	Date   Date
	Offset int // seconds east of UTC
}

// MarshalJSON renders {"date":"2024-06-17","offset":"+02:00"}.
func (r ResolvedDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date   string `json:"date"`
		Offset string `json:"offset"`
	}{r.Date.String(), FormatOffset(r.Offset)})
}

// Time returns local midnight of the resolved date.
func (r ResolvedDate) Time() time.Time {
	return r.Date.In(time.FixedZone(FormatOffset(r.Offset), r.Offset))
}

func (r ResolvedDate) String() string {
	return r.Date.String() + " " + FormatOffset(r.Offset)
}

// FormatOffset renders an offset in seconds as "+hh:mm".
func FormatOffset(offset int) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}
