package dateutil

import (
	"fmt"
	"time"
)

// MonthLayout is the YYYY-MM form used in query parameters and CLI flags
const MonthLayout = "2006-01"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// DateOnly returns the calendar date of t as midnight UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of the month as midnight UTC
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of the month as midnight UTC
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// AddMonths shifts the first day of the month containing date by n months
func AddMonths(date time.Time, n int) time.Time {
	return StartOfMonth(date).AddDate(0, n, 0)
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return EndOfMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)).Day()
}

// MonthKey formats date as YYYY-MM
func MonthKey(date time.Time) string {
	return date.Format(MonthLayout)
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// ParseDate parses date string in various formats
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// ParseMonth parses YYYY-MM or MM.YYYY into the first day of that month
func ParseMonth(s string) (time.Time, error) {
	for _, format := range []string{MonthLayout, "01.2006"} {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("month must be YYYY-MM, got %q", s)
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}
