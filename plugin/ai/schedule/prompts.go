package schedule

import (
	"fmt"
	"strings"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
)

// whenSystemPrompt asks for a symbolic date, never a computed one. Date
// arithmetic happens in aitime.Resolve.
const whenSystemPrompt = `You convert a calendar request into a symbolic date expression.
Do not compute dates yourself. Pick exactly one kind:

- in_exact_days: a plain offset from today. "today" is 0, "tomorrow" is 1, "yesterday" is -1, "in 3 days" is 3.
- next_week: a weekday in the coming week, as in "next monday". Set weekday.
- this_week: a weekday of the current Monday-to-Sunday week, as in "this friday" or "on friday". Set weekday.
- month_day: a month and day without a year, as in "June 17" or "the 17th of June". Set month and day.
- absolute_date: a full date with a year, as in "2025-03-01". Set year, month and day.

If the request names no date at all, use in_exact_days with days 0.
Fill every field the kind does not use with 0, or with none for weekday.
Answer with a single JSON object and nothing else.`

// eventSystemPrompt asks for the entry itself.
const eventSystemPrompt = `You extract the calendar entry from a request.
- title: a short title for the entry. Leave out the date and time words.
- time: the time of day in 24-hour HH:MM format, or none if no time was given.
If the request does not describe anything to put in a calendar, use an empty title.
Answer with a single JSON object and nothing else.`

// WhenSystemPrompt returns the system prompt for extracting an aitime.When.
func WhenSystemPrompt() string { return whenSystemPrompt }

// EventSystemPrompt returns the system prompt for extracting an Event.
func EventSystemPrompt() string { return eventSystemPrompt }

// BuildPrompt frames the user's text with the reference date so the model
// can tell "this" week from "next" week.
func BuildPrompt(text string, ref aitime.Reference) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Today's date is %s, a %s (UTC%s).\n",
		ref.Date, ref.Date.Weekday(), aitime.FormatOffset(ref.Offset))
	fmt.Fprintf(&sb, "The user has just entered the following calendar request:\n%s", strings.TrimSpace(text))
	return sb.String()
}
