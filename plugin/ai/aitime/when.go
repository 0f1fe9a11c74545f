package aitime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind tags the variant held by a When.
type Kind int

const (
	// KindInExactDays is an offset in days from today. It is the zero Kind,
	// so the zero When means "today".
	KindInExactDays Kind = iota
	// KindNextWeek is the next occurrence of a weekday at least 7 days out.
	KindNextWeek
	// KindThisWeek is a weekday within the current Monday-based week.
	KindThisWeek
	// KindMonthDay is a month and day without a year.
	KindMonthDay
	// KindAbsoluteDate is a fully specified calendar date.
	KindAbsoluteDate
)

var kindNames = map[Kind]string{
	KindInExactDays:  "in_exact_days",
	KindNextWeek:     "next_week",
	KindThisWeek:     "this_week",
	KindMonthDay:     "month_day",
	KindAbsoluteDate: "absolute_date",
}

// KindNames lists the wire names of every Kind in declaration order.
func KindNames() []string {
	return []string{"in_exact_days", "next_week", "this_week", "month_day", "absolute_date"}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a wire name such as "next_week" to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// When is a symbolic description of a target date that still needs a
// reference instant to become concrete.
//
// Exactly one variant is populated; payload fields that do not belong to
// the variant are always zero. That makes == a structural equality:
// two values are equal iff they hold the same variant and the same payload.
type When struct {
	kind    Kind
	weekday time.Weekday
	days    int
	year    int
	month   time.Month
	day     int
}

// InExactDays is today plus n days. n may be zero or negative.
func InExactDays(n int) When {
	return When{kind: KindInExactDays, days: n}
}

// NextWeek is the next occurrence of w that is never today.
func NextWeek(w time.Weekday) When {
	return When{kind: KindNextWeek, weekday: w}
}

// ThisWeek is the occurrence of w inside the current Monday-based week.
// It may resolve to a date before today.
func ThisWeek(w time.Weekday) When {
	return When{kind: KindThisWeek, weekday: w}
}

// MonthDay is a day of the year; the year is picked during resolution.
func MonthDay(month time.Month, day int) When {
	return When{kind: KindMonthDay, month: month, day: day}
}

// AbsoluteDate is a fully specified calendar date.
func AbsoluteDate(year int, month time.Month, day int) When {
	return When{kind: KindAbsoluteDate, year: year, month: month, day: day}
}

func (w When) Kind() Kind { return w.kind }
func (w When) Weekday() time.Weekday { return w.weekday }
func (w When) Days() int { return w.days }
func (w When) Year() int { return w.year }
func (w When) Month() time.Month { return w.month }
func (w When) Day() int { return w.day }

func (w When) String() string {
	switch w.kind {
	case KindNextWeek, KindThisWeek:
		return fmt.Sprintf("%s(%s)", w.kind, weekdayName(w.weekday))
	case KindInExactDays:
		return fmt.Sprintf("%s(%d)", w.kind, w.days)
	case KindMonthDay:
		return fmt.Sprintf("%s(%02d-%02d)", w.kind, int(w.month), w.day)
	case KindAbsoluteDate:
		return fmt.Sprintf("%s(%04d-%02d-%02d)", w.kind, w.year, int(w.month), w.day)
	default:
		return w.kind.String()
	}
}

// whenJSON is the wire form shared by oracle schemas and the HTTP API.
type whenJSON struct {
	Kind    string `json:"kind"`
	Weekday string `json:"weekday,omitempty"`
	Days    *int   `json:"days,omitempty"`
	Year    *int   `json:"year,omitempty"`
	Month   *int   `json:"month,omitempty"`
	Day     *int   `json:"day,omitempty"`
}

// MarshalJSON encodes only the fields that belong to the variant.
func (w When) MarshalJSON() ([]byte, error) {
	out := whenJSON{Kind: w.kind.String()}
	switch w.kind {
	case KindNextWeek, KindThisWeek:
		out.Weekday = weekdayName(w.weekday)
	case KindInExactDays:
		out.Days = &w.days
	case KindMonthDay:
		m := int(w.month)
		out.Month, out.Day = &m, &w.day
	case KindAbsoluteDate:
		m := int(w.month)
		out.Year, out.Month, out.Day = &w.year, &m, &w.day
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(w.kind))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form and checks that the payload required
// by the kind is present and in range. Whether month/day name a real date
// is left to Resolve.
func (w *When) UnmarshalJSON(data []byte) error {
	var in whenJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	kind, err := ParseKind(in.Kind)
	if err != nil {
		return err
	}

	switch kind {
	case KindNextWeek, KindThisWeek:
		wd, err := ParseWeekday(in.Weekday)
		if err != nil {
			return err
		}
		if kind == KindNextWeek {
			*w = NextWeek(wd)
		} else {
			*w = ThisWeek(wd)
		}
	case KindInExactDays:
		if in.Days == nil {
			return fmt.Errorf("%s requires days", kind)
		}
		*w = InExactDays(*in.Days)
	case KindMonthDay:
		m, d, err := monthDayFields(kind, in.Month, in.Day)
		if err != nil {
			return err
		}
		*w = MonthDay(m, d)
	case KindAbsoluteDate:
		if in.Year == nil {
			return fmt.Errorf("%s requires year", kind)
		}
		m, d, err := monthDayFields(kind, in.Month, in.Day)
		if err != nil {
			return err
		}
		*w = AbsoluteDate(*in.Year, m, d)
	}
	return nil
}

func monthDayFields(kind Kind, month, day *int) (time.Month, int, error) {
	if month == nil || day == nil {
		return 0, 0, fmt.Errorf("%s requires month and day", kind)
	}
	if *month < 1 || *month > 12 {
		return 0, 0, fmt.Errorf("month %d out of range 1-12", *month)
	}
	if *day < 1 || *day > 31 {
		return 0, 0, fmt.Errorf("day %d out of range 1-31", *day)
	}
	return time.Month(*month), *day, nil
}

// WeekdayNames lists lowercase weekday names starting from Monday.
func WeekdayNames() []string {
	return []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
}

// ParseWeekday accepts full or three-letter English weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := weekdayName(d)
		if s == name || s == name[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrInvalidWeekday, s)
}

func weekdayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}
