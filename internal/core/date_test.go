package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "valid date", input: "2024-01-31", want: NewDate(2024, 1, 31)},
		{name: "leap day", input: "2024-02-29", want: NewDate(2024, 2, 29)},
		{name: "invalid leap day", input: "2023-02-29", wantErr: true},
		{name: "wrong separator", input: "2024/01/31", wantErr: true},
		{name: "month out of range", input: "2024-13-01", wantErr: true},
		{name: "missing day", input: "2024-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "not a date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate("startDate", tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %v", tt.input, got)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ParseDate(%q) error = %T, want *ValidationError", tt.input, err)
				}
				if verr.Field != "startDate" {
					t.Errorf("ValidationError.Field = %q, want %q", verr.Field, "startDate")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateMonthKey(t *testing.T) {
	tests := []struct {
		date Date
		want MonthKey
	}{
		{NewDate(2024, 1, 1), "2024-01"},
		{NewDate(2024, 12, 31), "2024-12"},
		{NewDate(999, 6, 15), "0999-06"},
	}

	for _, tt := range tests {
		if got := tt.date.MonthKey(); got != tt.want {
			t.Errorf("MonthKey(%v) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestParseMonthKey(t *testing.T) {
	if _, err := ParseMonthKey("month", "2024-04"); err != nil {
		t.Fatalf("ParseMonthKey valid input: %v", err)
	}
	for _, bad := range []string{"2024-13", "2024", "04-2024", "2024-4", ""} {
		if _, err := ParseMonthKey("month", bad); err == nil {
			t.Errorf("ParseMonthKey(%q) expected error", bad)
		}
	}
}

func TestMonthKeyContains(t *testing.T) {
	m := MonthKey("2024-02")
	if !m.Contains(NewDate(2024, 2, 29)) {
		t.Error("2024-02 should contain 2024-02-29")
	}
	if m.Contains(NewDate(2024, 3, 1)) {
		t.Error("2024-02 should not contain 2024-03-01")
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, 4, 15)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-04-15"` {
		t.Fatalf("marshal = %s, want \"2024-04-15\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"15/04/2024"`), &back); err == nil {
		t.Error("unmarshal of non-ISO date should fail")
	}
}

func TestFormatDate(t *testing.T) {
	d := NewDate(2024, 4, 5)
	tests := []struct {
		format string
		want   string
	}{
		{FormatMonthFirst, "04/05/2024"},
		{FormatDayFirst, "05/04/2024"},
		{FormatISO, "2024-04-05"},
		{"unknown", "04/05/2024"},
	}

	for _, tt := range tests {
		if got := FormatDate(d, tt.format); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2024, 1, 31},
		{2024, 4, 30},
		{2024, 12, 31},
	}

	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysIn(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}
