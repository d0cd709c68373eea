// Package timeutil provides timezone-aware calendar date utilities for BrainSpark.
// Streaks are counted in the user's own timezone, so every date comparison here
// works on calendar dates resolved in a caller-supplied location, never on raw
// timestamps. No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// Clock supplies the current instant. It exists so that streak logic can be
// tested against a fixed point in time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a Clock frozen at a single instant, for tests.
type FixedClock struct {
	Instant time.Time
}

// Now returns the frozen instant.
func (c FixedClock) Now() time.Time {
	return c.Instant
}

// Date represents a calendar date with no time component.
// The zero value is "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date of t in the given location.
func DateOf(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns the start of day (00:00:00) for d in UTC.
// Useful for persisting dates as timestamps without partial-day artifacts.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date offset by the given number of days.
func (d Date) AddDays(days int) Date {
	t := d.Time().AddDate(0, 0, days)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Equal reports whether two dates are the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// DaysUntil returns the number of days from d to other (negative if other is earlier).
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Time().Format(FormatDate)
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(FormatDate, value)
	if err != nil {
		return Date{}, fmt.Errorf("timeutil: invalid date %q: %w", value, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// LoadLocation resolves an IANA timezone name, falling back to UTC
// when the name is empty or unknown. Streak continuity should degrade
// gracefully rather than fail on a bad timezone string.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DateIn resolves "today + offsetDays" in the named timezone using the clock.
// This is the single date-boundary resolution point for streak tracking:
// the boundary is computed once per call from the user's timezone, not the
// server's.
func DateIn(clock Clock, timezone string, offsetDays int) Date {
	loc := LoadLocation(timezone)
	return DateOf(clock.Now(), loc).AddDays(offsetDays)
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
)

// SameDay checks if two times fall on the same calendar day in the given location.
func SameDay(t1, t2 time.Time, loc *time.Location) bool {
	return DateOf(t1, loc).Equal(DateOf(t2, loc))
}

// ConsecutiveDay checks if t2 is the calendar day after t1 in the given location.
func ConsecutiveDay(t1, t2 time.Time, loc *time.Location) bool {
	return DateOf(t1, loc).AddDays(1).Equal(DateOf(t2, loc))
}

// DaysBetween returns the absolute number of calendar days between two times
// in the given location.
func DaysBetween(t1, t2 time.Time, loc *time.Location) int {
	days := DateOf(t1, loc).DaysUntil(DateOf(t2, loc))
	if days < 0 {
		days = -days
	}
	return days
}

// StartOfDay returns the start of the day (00:00:00) of t in the given location.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
