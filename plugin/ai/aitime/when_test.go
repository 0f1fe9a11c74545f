package aitime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhen_StructuralEquality(t *testing.T) {
	assert.Equal(t, NextWeek(time.Monday), NextWeek(time.Monday))
	assert.True(t, NextWeek(time.Monday) == NextWeek(time.Monday))
	assert.False(t, NextWeek(time.Monday) == ThisWeek(time.Monday), "same payload, different variant")
	assert.False(t, MonthDay(time.June, 1) == MonthDay(time.June, 2))
	assert.False(t, InExactDays(0) == NextWeek(time.Sunday), "Sunday is the zero weekday")
	assert.True(t, When{} == InExactDays(0))
}

func TestWhen_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want When
	}{
		{"next week", `{"kind":"next_week","weekday":"Monday"}`, NextWeek(time.Monday)},
		{"this week short name", `{"kind":"this_week","weekday":"fri"}`, ThisWeek(time.Friday)},
		{"in exact days", `{"kind":"in_exact_days","days":-2}`, InExactDays(-2)},
		{"month day", `{"kind":"month_day","month":6,"day":17}`, MonthDay(time.June, 17)},
		{"absolute date", `{"kind":"absolute_date","year":2024,"month":2,"day":30}`, AbsoluteDate(2024, time.February, 30)},
		{"stray fields ignored", `{"kind":"next_week","weekday":"tuesday","days":4,"month":3}`, NextWeek(time.Tuesday)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got When
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWhen_UnmarshalJSONRejectsMalformed(t *testing.T) {
	inputs := []string{
		`{"kind":"someday"}`,
		`{"kind":"next_week"}`,
		`{"kind":"next_week","weekday":"funday"}`,
		`{"kind":"in_exact_days"}`,
		`{"kind":"month_day","month":13,"day":1}`,
		`{"kind":"month_day","month":1,"day":0}`,
		`{"kind":"absolute_date","month":1,"day":1}`,
		`{"kind":"in_exact_days","days":"two"}`,
		`not json`,
	}

	for _, in := range inputs {
		var w When
		assert.Error(t, json.Unmarshal([]byte(in), &w), in)
	}
}

func TestWhen_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NextWeek(time.Sunday))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"next_week","weekday":"sunday"}`, string(data))

	data, err = json.Marshal(InExactDays(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"in_exact_days","days":0}`, string(data))

	data, err = json.Marshal(AbsoluteDate(2024, time.June, 17))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"absolute_date","year":2024,"month":6,"day":17}`, string(data))
}

func TestWhen_String(t *testing.T) {
	assert.Equal(t, "next_week(monday)", NextWeek(time.Monday).String())
	assert.Equal(t, "in_exact_days(-2)", InExactDays(-2).String())
	assert.Equal(t, "month_day(06-17)", MonthDay(time.June, 17).String())
	assert.Equal(t, "absolute_date(2024-06-17)", AbsoluteDate(2024, time.June, 17).String())
}

func TestNewReference(t *testing.T) {
	loc := time.FixedZone("", 5*3600+45*60)
	now := time.Date(2024, 6, 12, 8, 15, 30, 0, loc)

	ref := NewReference(now)
	assert.Equal(t, Date{Year: 2024, Month: time.June, Day: 12}, ref.Date)
	assert.Equal(t, 8*time.Hour+15*time.Minute+30*time.Second, ref.Clock)
	assert.Equal(t, 5*3600+45*60, ref.Offset)
	assert.True(t, now.Equal(ref.Time()))
}

func TestResolvedDate_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ResolvedDate{Date: Date{2024, time.June, 17}, Offset: -5 * 3600})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-06-17","offset":"-05:00"}`, string(data))
}
