package schedule

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/oracle"
)

// NoWeekday fills the weekday field for kinds that do not use it.
const NoWeekday = "none"

// WhenSchema describes aitime.When. Every field is required so the schema
// is accepted in strict mode; the model fills unused ones with 0 or "none"
// and the decoder ignores them.
func WhenSchema() oracle.Schema[aitime.When] {
	integer := func(desc string) jsonschema.Definition {
		return jsonschema.Definition{Type: jsonschema.Integer, Description: desc}
	}

	return oracle.Schema[aitime.When]{
		Name:        "when",
		Description: "The date the user refers to, as a symbolic expression.",
		Definition: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"kind": {
					Type:        jsonschema.String,
					Enum:        aitime.KindNames(),
					Description: "Which kind of date expression the user used.",
				},
				"weekday": {
					Type:        jsonschema.String,
					Enum:        append(aitime.WeekdayNames(), NoWeekday),
					Description: "Weekday for next_week and this_week, otherwise none.",
				},
				"days":  integer("Day offset from today for in_exact_days, negative for the past, otherwise 0."),
				"year":  integer("Year for absolute_date, otherwise 0."),
				"month": integer("Month 1-12 for month_day and absolute_date, otherwise 0."),
				"day":   integer("Day of month for month_day and absolute_date, otherwise 0."),
			},
			Required:             []string{"kind", "weekday", "days", "year", "month", "day"},
			AdditionalProperties: false,
		},
		Decode: func(data []byte) (aitime.When, error) {
			var w aitime.When
			err := json.Unmarshal(data, &w)
			return w, err
		},
	}
}

// EventSchema describes Event.
func EventSchema() oracle.Schema[Event] {
	return oracle.Schema[Event]{
		Name:        "event",
		Description: "The calendar entry the user wants to add.",
		Definition: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				"title": {
					Type:        jsonschema.String,
					Description: "Short title for the calendar entry, without date or time words.",
				},
				"time": {
					Type:        jsonschema.String,
					Description: "Time of day as HH:MM in 24-hour format, or none if no time was given.",
				},
			},
			Required:             []string{"title", "time"},
			AdditionalProperties: false,
		},
		Decode: DecodeEvent,
	}
}
