package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/server/service/calendar"
)

var (
	headStyle = lipgloss.NewStyle().Bold(true)
	noteStyle = lipgloss.NewStyle().Faint(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// render writes v as JSON or YAML, or calls text for the default format.
func render(w io.Writer, format string, v any, text func(io.Writer) error) error {
	switch strings.ToLower(format) {
	case "", "text":
		return text(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so the domain types' JSON forms are kept.
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	default:
		return errors.Errorf("unknown output format %q: want text, json or yaml", format)
	}
}

func printSchedule(w io.Writer, r *calendar.ScheduleResult) error {
	if r.Outcome == calendar.OutcomeNoEvent {
		return printNoEvent(w, r.Attempts)
	}
	lines := []string{
		headStyle.Render(r.Date.Date.String() + " " + r.Event.String()),
		noteStyle.Render(fmt.Sprintf("%s, UTC%s, %d model calls", r.When, aitime.FormatOffset(r.Date.Offset), r.Attempts)),
	}
	if !r.EventAgreed {
		lines = append(lines, noteStyle.Render("title taken from the request text"))
	}
	if r.Entry != nil {
		lines = append(lines, fmt.Sprintf("saved as %s (#%d)", r.Entry.UID, r.Entry.ID))
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func printWhen(w io.Writer, r *calendar.WhenResult) error {
	if r.Outcome == calendar.OutcomeNoEvent {
		return printNoEvent(w, r.Attempts)
	}
	if err := printDate(w, *r.When, *r.Date); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("%d model calls", r.Attempts)))
	return err
}

func printDate(w io.Writer, when aitime.When, date aitime.ResolvedDate) error {
	_, err := fmt.Fprintf(w, "%s  %s\n",
		headStyle.Render(date.Date.String()+" "+date.Date.Weekday().String()),
		noteStyle.Render(fmt.Sprintf("%s, UTC%s", when, aitime.FormatOffset(date.Offset))),
	)
	return err
}

func printNoEvent(w io.Writer, attempts int) error {
	_, err := fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("No event implied (no agreement after %d model calls).", attempts)))
	return err
}

func printEntries(w io.Writer, entries []*calendar.EntryView) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, noteStyle.Render("No entries."))
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "TIME", "TITLE", "OFFSET")
	for _, e := range entries {
		t.Row(strconv.Itoa(int(e.ID)), e.Date, e.Time, e.Title, e.Offset)
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}
