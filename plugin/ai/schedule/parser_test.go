package schedule

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nlcal/plugin/ai/aitime"
	"github.com/hrygo/nlcal/plugin/ai/consensus"
	"github.com/hrygo/nlcal/plugin/ai/oracle"
)

// Wednesday 2024-06-12 at +02:00.
func testRef() aitime.Reference {
	return aitime.NewReference(time.Date(2024, 6, 12, 14, 30, 0, 0, time.FixedZone("", 2*3600)))
}

// fakeCompleter answers by schema name, cycling through its scripted replies.
type fakeCompleter struct {
	replies map[string][]string
	calls   map[string]int
	seen    []oracle.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req oracle.Request) (string, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.seen = append(f.seen, req)
	r := f.replies[req.SchemaName]
	out := r[f.calls[req.SchemaName]%len(r)]
	f.calls[req.SchemaName]++
	return out, nil
}

func newTestParser(t *testing.T, c oracle.Completer) *Parser {
	t.Helper()
	s, err := consensus.NewSampler(consensus.DefaultConfig(), nil)
	require.NoError(t, err)
	p, err := NewParser(c, s)
	require.NoError(t, err)
	return p
}

func TestParser_ParseWhen(t *testing.T) {
	c := &fakeCompleter{replies: map[string][]string{
		"when": {
			`{"kind":"next_week","weekday":"monday","days":0,"year":0,"month":0,"day":0}`,
			`{"kind":"this_week","weekday":"monday","days":0,"year":0,"month":0,"day":0}`,
			"```json\n{\"kind\":\"next_week\",\"weekday\":\"Monday\",\"days\":0,\"year\":0,\"month\":0,\"day\":0}\n```",
			`{"kind":"next_week","weekday":"mon","days":3,"year":0,"month":0,"day":0}`,
		},
	}}
	p := newTestParser(t, c)

	res, err := p.ParseWhen(context.Background(), "lunch with Bob next monday", testRef())
	require.NoError(t, err)
	require.True(t, res.Agreed)
	assert.Equal(t, aitime.NextWeek(time.Monday), res.Value)
	assert.Equal(t, 4, res.Attempts)

	resolved, err := aitime.Resolve(res.Value, testRef())
	require.NoError(t, err)
	assert.Equal(t, "2024-06-17", resolved.Date.String())

	require.NotEmpty(t, c.seen)
	assert.Equal(t, WhenSystemPrompt(), c.seen[0].System)
	assert.Contains(t, c.seen[0].Prompt, "2024-06-12")
	assert.Contains(t, c.seen[0].Prompt, "lunch with Bob next monday")
}

func TestParser_ParseWhenMalformedAnswersAreSkipped(t *testing.T) {
	c := &fakeCompleter{replies: map[string][]string{
		"when": {
			`{"kind":"next_week","weekday":"none","days":0,"year":0,"month":0,"day":0}`,
			`{"kind":"in_exact_days","weekday":"none","days":-2,"year":0,"month":0,"day":0}`,
			`not json`,
		},
	}}
	p := newTestParser(t, c)

	res, err := p.ParseWhen(context.Background(), "two days ago", testRef())
	require.NoError(t, err)
	require.True(t, res.Agreed)
	assert.Equal(t, aitime.InExactDays(-2), res.Value)
	assert.Equal(t, 3, res.Samples)
	assert.Equal(t, 8, res.Attempts)
}

func TestParser_ParseEvent(t *testing.T) {
	c := &fakeCompleter{replies: map[string][]string{
		"event": {
			`{"title":"Lunch with Bob","time":"12:00"}`,
			`{"title":"Lunch with Bob","time":"12:30"}`,
			`{"title":"Lunch  with Bob","time":"12:00:00"}`,
			`{"title":"Lunch with Bob","time":"12:00"}`,
		},
	}}
	p := newTestParser(t, c)

	res, err := p.ParseEvent(context.Background(), "lunch with Bob at noon", testRef())
	require.NoError(t, err)
	require.True(t, res.Agreed)
	assert.Equal(t, Event{Title: "Lunch with Bob", Time: "12:00"}, res.Value)
	assert.Equal(t, EventSystemPrompt(), c.seen[0].System)
}

func TestParser_NothingToSchedule(t *testing.T) {
	c := &fakeCompleter{replies: map[string][]string{
		"event": {`{"title":"","time":"none"}`},
	}}
	p := newTestParser(t, c)

	_, err := p.ParseEvent(context.Background(), "hello there", testRef())
	assert.ErrorIs(t, err, consensus.ErrOracleExhausted)
}

func TestParser_ValidatesInput(t *testing.T) {
	c := &fakeCompleter{}
	p := newTestParser(t, c)

	_, err := p.ParseWhen(context.Background(), "   ", testRef())
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.ParseEvent(context.Background(), strings.Repeat("é", MaxInputLength+1), testRef())
	assert.ErrorIs(t, err, ErrInputTooLong)

	assert.NoError(t, ValidateInput(strings.Repeat("é", MaxInputLength)))
	assert.Empty(t, c.seen)
}

func TestNewParser_RequiresDependencies(t *testing.T) {
	s, err := consensus.NewSampler(consensus.DefaultConfig(), nil)
	require.NoError(t, err)

	_, err = NewParser(nil, s)
	assert.ErrorIs(t, err, ErrNoCompleter)
	_, err = NewParser(&fakeCompleter{}, nil)
	assert.ErrorIs(t, err, ErrNoSampler)
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt("  dentist on friday at 9 ", testRef())
	assert.Equal(t,
		"Today's date is 2024-06-12, a Wednesday (UTC+02:00).\n"+
			"The user has just entered the following calendar request:\ndentist on friday at 9",
		got)
}

func TestWhenSchema(t *testing.T) {
	s := WhenSchema()
	assert.Equal(t, "when", s.Name)
	assert.ElementsMatch(t, []string{"kind", "weekday", "days", "year", "month", "day"}, s.Definition.Required)
	assert.Equal(t, aitime.KindNames(), s.Definition.Properties["kind"].Enum)
	assert.Contains(t, s.Definition.Properties["weekday"].Enum, NoWeekday)
	assert.Len(t, s.Definition.Properties["weekday"].Enum, 8)

	w, err := s.Decode([]byte(`{"kind":"month_day","weekday":"none","days":0,"year":0,"month":12,"day":25}`))
	require.NoError(t, err)
	assert.Equal(t, aitime.MonthDay(time.December, 25), w)
}

func TestParser_WithCache(t *testing.T) {
	c := &fakeCompleter{replies: map[string][]string{
		"when": {`{"kind":"in_exact_days","weekday":"none","days":2,"year":0,"month":0,"day":0}`},
	}}
	p := newTestParser(t, c).WithCache(8, time.Minute)

	first, err := p.ParseWhen(context.Background(), "dentist in two days", testRef())
	require.NoError(t, err)
	require.True(t, first.Agreed)
	assert.Equal(t, 3, first.Attempts)

	second, err := p.ParseWhen(context.Background(), "dentist in two days", testRef())
	require.NoError(t, err)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, 0, second.Attempts)
	assert.Equal(t, 3, c.calls["when"])

	// A different reference day is a different prompt.
	nextDay := aitime.NewReference(time.Date(2024, 6, 13, 9, 0, 0, 0, time.FixedZone("", 2*3600)))
	_, err = p.ParseWhen(context.Background(), "dentist in two days", nextDay)
	require.NoError(t, err)
	assert.Equal(t, 6, c.calls["when"])
}
