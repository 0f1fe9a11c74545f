// Package aitime turns symbolic time expressions produced by the language
// model into concrete calendar dates.
package aitime

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCalendarDate indicates a When payload names a day that does
	// not exist in the calendar (e.g. February 30). It is never clamped.
	ErrInvalidCalendarDate = errors.New("invalid calendar date")

	// ErrUnknownKind indicates a When whose variant tag is not recognised.
	ErrUnknownKind = errors.New("unknown time expression kind")

	// ErrInvalidWeekday indicates a weekday outside Sunday..Saturday.
	ErrInvalidWeekday = errors.New("invalid weekday")
)

// Resolve maps w to a concrete date relative to ref.
// All arithmetic happens in the reference's offset, and the returned offset
// is exactly ref.Offset.
func Resolve(w When, ref Reference) (ResolvedDate, error) {
	today := ref.Date

	var date Date
	switch w.kind {
	case KindNextWeek:
		target, err := isoWeekday(w.weekday)
		if err != nil {
			return ResolvedDate{}, err
		}
		current, _ := isoWeekday(today.Weekday())
		d := (target - current + 7) % 7
		if d == 0 {
			d = 7
		}
		date = today.AddDays(d)

	case KindThisWeek:
		target, err := isoWeekday(w.weekday)
		if err != nil {
			return ResolvedDate{}, err
		}
		current, _ := isoWeekday(today.Weekday())
		// Deliberately unclamped: a weekday already passed this week
		// resolves into the past.
		date = today.AddDays(target - current)

	case KindInExactDays:
		date = today.AddDays(w.days)

	case KindMonthDay:
		candidate, err := calendarDate(today.Year, w.month, w.day)
		if err != nil {
			return ResolvedDate{}, err
		}
		if candidate.Before(today) {
			candidate, err = calendarDate(today.Year+1, w.month, w.day)
			if err != nil {
				return ResolvedDate{}, err
			}
		}
		date = candidate

	case KindAbsoluteDate:
		candidate, err := calendarDate(w.year, w.month, w.day)
		if err != nil {
			return ResolvedDate{}, err
		}
		date = candidate

	default:
		return ResolvedDate{}, fmt.Errorf("%w: %d", ErrUnknownKind, int(w.kind))
	}

	return ResolvedDate{Date: date, Offset: ref.Offset}, nil
}

// isoWeekday numbers weekdays Monday=1 through Sunday=7.
func isoWeekday(d time.Weekday) (int, error) {
	if d < time.Sunday || d > time.Saturday {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWeekday, int(d))
	}
	if d == time.Sunday {
		return 7, nil
	}
	return int(d), nil
}

func calendarDate(year int, month time.Month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidCalendarDate, year, int(month), day)
	}
	return d, nil
}
