// Package dateutils provides the date handling shared by CSV import, budget
// analysis and goal planning.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts used across the application.
const (
	DateLayoutISO   = "2006-01-02"
	DateLayoutMonth = "2006-01"
)

// isoFormats are tried in order by ParseISODate.
var isoFormats = []string{
	DateLayoutISO,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

var whitespace = regexp.MustCompile(`\s+`)

// ParseISODate parses an ISO-8601 date (optionally with a time part) and
// returns it truncated to midnight UTC.
func ParseISODate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range isoFormats {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q: expected YYYY-MM-DD", dateStr)
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// MonthKey returns the YYYY-MM bucket of t.
func MonthKey(t time.Time) string {
	return t.Format(DateLayoutMonth)
}

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// StartOfMonth returns the first day of the month for a given date.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// MonthsBetween counts whole calendar months from `from` to `to`. A month only
// counts once its day-of-month has been reached, so Jan 31 to Feb 28 is 0.
// The result is negative when `to` is before `from`.
func MonthsBetween(from, to time.Time) int {
	from, to = truncateDay(from), truncateDay(to)
	if to.Before(from) {
		return -MonthsBetween(to, from)
	}

	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// DaysBetween counts calendar days from `from` to `to`.
func DaysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
