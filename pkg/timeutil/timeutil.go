// Package timeutil provides timezone utilities for Moscow timezone (UTC+3).
// Commit timestamps arrive from GitLab in arbitrary zones; all reporting and
// review deadlines for the internship program are anchored to Moscow time.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// MoscowTZ is the Moscow timezone (UTC+3, no DST).
// Russia abolished DST in 2014, so this is constant year-round.
var MoscowTZ = time.FixedZone("Europe/Moscow", 3*60*60)

// Now returns the current time in Moscow timezone.
func Now() time.Time {
	return time.Now().In(MoscowTZ)
}

// ToMoscow converts a time to Moscow timezone.
func ToMoscow(t time.Time) time.Time {
	return t.In(MoscowTZ)
}

// ToUTC converts a time to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// Date creates a time in Moscow timezone with the given date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, MoscowTZ)
}

// DateTime creates a time in Moscow timezone with the given date and time.
func DateTime(year, month, day, hour, min, sec int) time.Time {
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, MoscowTZ)
}

// StartOfDay returns the start of the day (00:00:00) in Moscow timezone.
func StartOfDay(t time.Time) time.Time {
	moscow := ToMoscow(t)
	return time.Date(moscow.Year(), moscow.Month(), moscow.Day(), 0, 0, 0, 0, MoscowTZ)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in Moscow timezone.
func EndOfDay(t time.Time) time.Time {
	moscow := ToMoscow(t)
	return time.Date(moscow.Year(), moscow.Month(), moscow.Day(), 23, 59, 59, 999999999, MoscowTZ)
}

// IsSameDay checks if two times are on the same day in Moscow timezone.
func IsSameDay(t1, t2 time.Time) bool {
	m1, m2 := ToMoscow(t1), ToMoscow(t2)
	return m1.Year() == m2.Year() && m1.YearDay() == m2.YearDay()
}

// DaysBetween calculates the number of days between two times.
func DaysBetween(t1, t2 time.Time) int {
	m1 := StartOfDay(t1)
	m2 := StartOfDay(t2)
	duration := m2.Sub(m1)
	days := int(duration.Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatTime is the standard time format (HH:MM).
	FormatTime = "15:04"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
	// FormatDateTimeSeconds includes seconds.
	FormatDateTimeSeconds = "2006-01-02 15:04:05"
	// FormatRussianDate is the Russian date format (DD.MM.YYYY).
	FormatRussianDate = "02.01.2006"
	// FormatRussianDateTime is the Russian datetime format.
	FormatRussianDateTime = "02.01.2006 15:04"
)

// FormatMoscow formats a time in Moscow timezone with the given layout.
func FormatMoscow(t time.Time, layout string) string {
	return ToMoscow(t).Format(layout)
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in Moscow timezone.
func FormatDateStr(t time.Time) string {
	return FormatMoscow(t, FormatDate)
}

// FormatDateTimeStr formats a time as datetime string in Moscow timezone.
func FormatDateTimeStr(t time.Time) string {
	return FormatMoscow(t, FormatDateTime)
}

// ParseMoscow parses a time string in Moscow timezone.
func ParseMoscow(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, MoscowTZ)
}

// ParseDateMoscow parses a date string (YYYY-MM-DD) in Moscow timezone.
func ParseDateMoscow(value string) (time.Time, error) {
	return ParseMoscow(FormatDate, value)
}

// ParseCommitTimestamp parses a push-event commit timestamp (RFC 3339 with
// offset) and converts it to Moscow time. GitLab reports the committer's
// local zone; solutions are compared against deadlines in Moscow time.
func ParseCommitTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return ToMoscow(t), nil
}
