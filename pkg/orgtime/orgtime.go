package orgtime

import (
	"fmt"
	"time"
)

// Calendar normalizes timestamps onto organizational calendar days. Every component
// that touches dates (check-in, batch jobs, leave ranges) must go through the same
// Calendar so day boundaries cannot drift between writers.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads the organization's time zone.
func NewCalendar(tz string) (*Calendar, error) {
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load organization timezone %q: %w", tz, err)
	}
	return &Calendar{loc: loc}, nil
}

// Location returns the organization's time zone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayOf returns the organizational calendar day containing t, normalized to
// UTC midnight. The result is the canonical (employee, date) ledger key.
func (c *Calendar) DayOf(t time.Time) time.Time {
	year, month, day := t.In(c.loc).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ClockOn returns the instant at the given "HH:MM" wall clock on the given
// organizational day.
func (c *Calendar) ClockOn(day time.Time, clock string) (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("clock %q out of range", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, c.loc), nil
}

// SameDay reports whether two timestamps fall on the same organizational day.
func (c *Calendar) SameDay(a, b time.Time) bool {
	return c.DayOf(a).Equal(c.DayOf(b))
}

// IsSunday reports whether the normalized day is a Sunday. Sundays are the only
// non-working calendar days outside the holiday register.
func IsSunday(day time.Time) bool {
	return day.Weekday() == time.Sunday
}

// CountWorkingDays counts non-Sunday calendar days in [from, to] inclusive.
// Both bounds must already be normalized days.
func CountWorkingDays(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	count := 0.0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !IsSunday(d) {
			count++
		}
	}
	return count
}

// EachDay invokes fn for every calendar day in [from, to] inclusive.
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// MonthBounds returns the first and last normalized days of a month.
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}
