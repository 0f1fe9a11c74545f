package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/hrygo/nlcal/plugin/ai/consensus"
)

// Event is the calendar entry the model extracts alongside the date.
// Two samples agree only when both fields match exactly, so Decode
// normalises them first.
type Event struct {
	// Title is what goes in the calendar.
	Title string `json:"title"`
	// Time is the time of day as HH:MM, or empty for an all-day entry.
	Time string `json:"time,omitempty"`
}

// AllDay reports whether the event has no time of day.
func (e Event) AllDay() bool {
	return e.Time == ""
}

func (e Event) String() string {
	if e.AllDay() {
		return e.Title
	}
	return e.Time + " " + e.Title
}

// DecodeEvent reads one model answer. An empty title means the model found
// nothing to schedule and is reported as consensus.ErrNoCandidate.
func DecodeEvent(data []byte) (Event, error) {
	var raw struct {
		Title string `json:"title"`
		Time  string `json:"time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Event{}, err
	}

	title := strings.Join(strings.Fields(raw.Title), " ")
	if title == "" {
		return Event{}, consensus.ErrNoCandidate
	}

	clock, err := NormalizeClock(raw.Time)
	if err != nil {
		return Event{}, err
	}
	return Event{Title: title, Time: clock}, nil
}

// NormalizeClock turns "9:05", "09:05" or "09:05:00" into "09:05".
// An empty string or "none" yields "".
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return "", nil
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("time %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("time %q has an invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("time %q has an invalid minute", s)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
