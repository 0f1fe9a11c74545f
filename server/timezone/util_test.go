package timezone

import (
	"testing"
	"time"
)

func TestParseTimezone(t *testing.T) {
	tests := []struct {
		name       string
		tz         string
		wantOffset int // at 2024-06-12 12:00 UTC; -1 skips the check
		wantErr    bool
	}{
		{name: "UTC", tz: "UTC", wantOffset: 0},
		{name: "empty string is local", tz: "", wantOffset: -1},
		{name: "explicit local", tz: "Local", wantOffset: -1},
		{name: "Europe/Berlin in summer", tz: "Europe/Berlin", wantOffset: 2 * 3600},
		{name: "America/New_York in summer", tz: "America/New_York", wantOffset: -4 * 3600},
		{name: "fixed offset", tz: "+05:45", wantOffset: 5*3600 + 45*60},
		{name: "fixed offset without colon", tz: "-0930", wantOffset: -(9*3600 + 30*60)},
		{name: "hours only", tz: "+02", wantOffset: 2 * 3600},
		{name: "invalid timezone", tz: "Invalid/Timezone", wantErr: true},
		{name: "invalid offset", tz: "+25:00", wantErr: true},
		{name: "malformed offset", tz: "+2:3", wantErr: true},
	}

	at := time.Date(2024, 6, 12, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := ParseTimezone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimezone() error = %v, wantErr %v", err, tt.wantErr)
			}
			if loc == nil {
				t.Fatal("ParseTimezone() returned a nil location")
			}
			if tt.wantErr || tt.wantOffset == -1 {
				return
			}
			if _, offset := at.In(loc).Zone(); offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestIsValidTimezone(t *testing.T) {
	if !IsValidTimezone("Asia/Tokyo") {
		t.Error("Asia/Tokyo should be valid")
	}
	if IsValidTimezone("Mars/Olympus_Mons") {
		t.Error("Mars/Olympus_Mons should be invalid")
	}
}

func TestParseNow(t *testing.T) {
	berlin, err := ParseTimezone("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-06-12T14:30:00+02:00", time.Date(2024, 6, 12, 12, 30, 0, 0, time.UTC)},
		{"2024-06-12T14:30", time.Date(2024, 6, 12, 14, 30, 0, 0, berlin)},
		{"2024-06-12 14:30", time.Date(2024, 6, 12, 14, 30, 0, 0, berlin)},
		{"2024-06-12", time.Date(2024, 6, 12, 0, 0, 0, 0, berlin)},
	}

	for _, tt := range tests {
		got, err := ParseNow(tt.in, berlin)
		if err != nil {
			t.Errorf("ParseNow(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseNow(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseNow("next tuesday", berlin); err == nil {
		t.Error("ParseNow should reject free text")
	}
}

func TestReferenceAt(t *testing.T) {
	ref, err := ReferenceAt("2024-06-12T23:30:00Z", "Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	// 23:30 UTC is already the 13th in Berlin.
	if got := ref.Date.String(); got != "2024-06-13" {
		t.Errorf("date = %s, want 2024-06-13", got)
	}
	if ref.Offset != 2*3600 {
		t.Errorf("offset = %d, want 7200", ref.Offset)
	}

	ref, err = ReferenceAt("2024-06-12T10:00:00-05:00", "")
	if err != nil {
		t.Fatal(err)
	}
	if ref.Offset != -5*3600 {
		t.Errorf("offset = %d, want -18000", ref.Offset)
	}

	if _, err := ReferenceAt("", "Nowhere/Special"); err == nil {
		t.Error("ReferenceAt should reject an unknown zone")
	}
}
