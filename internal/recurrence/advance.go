// Package recurrence materializes recurring transaction templates into
// concrete transactions. Each frequency (daily, weekly, monthly, yearly)
// has its own advancer that steps a cursor forward one period.
package recurrence

import (
	"fmt"

	"tally/internal/core"
)

// Advancer is the strategy interface for stepping a materialization
// cursor forward by one period.
type Advancer interface {
	// Next returns the first due date after cursor. The anchor is the
	// template's start date; month- and year-based frequencies keep its
	// day-of-month (and month) rather than drifting with the cursor.
	Next(cursor, anchor core.Date) core.Date
}

// DailyAdvancer steps one calendar day.
type DailyAdvancer struct{}

func (DailyAdvancer) Next(cursor, _ core.Date) core.Date {
	return cursor.AddDays(1)
}

// WeeklyAdvancer steps seven calendar days.
type WeeklyAdvancer struct{}

func (WeeklyAdvancer) Next(cursor, _ core.Date) core.Date {
	return cursor.AddDays(7)
}

// MonthlyAdvancer steps to the next calendar month, keeping the anchor's
// day-of-month and clamping to the last valid day when the target month
// is shorter. A template anchored on the 31st lands on Feb 29 (or 28)
// and returns to the 31st in March; no month is skipped or doubled.
type MonthlyAdvancer struct{}

func (MonthlyAdvancer) Next(cursor, anchor core.Date) core.Date {
	year, month := cursor.Year(), cursor.Month()+1
	if month > 12 {
		year, month = year+1, 1
	}
	return core.NewDate(year, month, clampDay(anchor.Day(), year, month))
}

// YearlyAdvancer steps to the next year at the anchor's month and day,
// clamping Feb 29 anchors to Feb 28 in non-leap years.
type YearlyAdvancer struct{}

func (YearlyAdvancer) Next(cursor, anchor core.Date) core.Date {
	year := cursor.Year() + 1
	return core.NewDate(year, anchor.Month(), clampDay(anchor.Day(), year, anchor.Month()))
}

func clampDay(day, year, month int) int {
	if last := core.DaysIn(year, month); day > last {
		return last
	}
	return day
}

var advancers = map[core.Frequency]Advancer{
	core.Daily:   DailyAdvancer{},
	core.Weekly:  WeeklyAdvancer{},
	core.Monthly: MonthlyAdvancer{},
	core.Yearly:  YearlyAdvancer{},
}

// ForFrequency returns the advancer for a frequency. An unknown value is
// a configuration error; the caller is expected to skip the template and
// report it, never to guess a default.
func ForFrequency(frequency core.Frequency) (Advancer, error) {
	adv, ok := advancers[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %q", frequency)
	}
	return adv, nil
}
