package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	dateLayout     = "2006-01-02"
	monthKeyLayout = "2006-01"
)

type (
	// Date is a calendar date with no time-of-day component, always UTC.
	Date struct {
		time.Time
	}

	// MonthKey buckets dates by calendar month, formatted YYYY-MM.
	MonthKey string
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a strict YYYY-MM-DD string. Malformed input is a
// ValidationError for the given field; it is never coerced to a default.
func ParseDate(field, s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, invalidField(field, fmt.Errorf("%q is not a YYYY-MM-DD date", s))
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MonthKey returns the year-month bucket the date falls in.
func (d Date) MonthKey() MonthKey {
	return MonthKey(d.Format(monthKeyLayout))
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// Equal reports whether d and o name the same calendar date.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as an int.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return invalidField("date", errors.New("date must be a JSON string"))
	}
	parsed, err := ParseDate("date", s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days in the given calendar month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ParseMonthKey parses a strict YYYY-MM string.
func ParseMonthKey(field, s string) (MonthKey, error) {
	if _, err := time.ParseInLocation(monthKeyLayout, s, time.UTC); err != nil {
		return "", invalidField(field, fmt.Errorf("%q is not a YYYY-MM month key", s))
	}
	return MonthKey(s), nil
}

// MonthKeyOf is shorthand for bucketing an instant.
func MonthKeyOf(t time.Time) MonthKey {
	return DateOf(t).MonthKey()
}

func (m MonthKey) String() string {
	return string(m)
}

// Contains reports whether the date falls inside this month bucket.
func (m MonthKey) Contains(d Date) bool {
	return d.MonthKey() == m
}

// Date format names stored in Settings.DateFormat.
const (
	FormatMonthFirst = "MM/DD/YYYY"
	FormatDayFirst   = "DD/MM/YYYY"
	FormatISO        = "YYYY-MM-DD"
)

// FormatDate renders a date in one of the user-selectable display formats.
// Unknown format names fall back to MM/DD/YYYY, matching the display default.
func FormatDate(d Date, format string) string {
	switch format {
	case FormatDayFirst:
		return d.Format("02/01/2006")
	case FormatISO:
		return d.Format(dateLayout)
	default:
		return d.Format("01/02/2006")
	}
}
