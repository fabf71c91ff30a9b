package calendar

import (
	"errors"
	"fmt"
	"time"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

// DefaultHoursPerDay is the length of a regular working day
const DefaultHoursPerDay = 8

func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// MarshalText renders the day type as its name
func (t DayType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a day type name written by MarshalText
func (t *DayType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "workday":
		*t = DayTypeWorkday
	case "weekend":
		*t = DayTypeWeekend
	case "holiday":
		*t = DayTypeHoliday
	default:
		return fmt.Errorf("unknown day type %q", text)
	}
	return nil
}

// ErrInvalidRange is returned when an interval starts after it ends
var ErrInvalidRange = errors.New("invalid range: start after end")

// RangeError carries the offending interval bounds
type RangeError struct {
	Start time.Time
	End   time.Time
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%v: %s > %s", ErrInvalidRange,
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"))
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date         time.Time `json:"date"`
	Type         DayType   `json:"type"`
	WorkingHours int       `json:"working_hours"`
	IsWorkday    bool      `json:"is_workday"`
	Note         string    `json:"note,omitempty"`
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year         int        `json:"year"`
	Month        time.Month `json:"month"`
	WorkingHours int        `json:"working_hours"` // Total working hours in the month
	WorkDays     int        `json:"work_days"`
	Weekends     int        `json:"weekends"`
	Holidays     int        `json:"holidays"`
	Days         []DayInfo  `json:"days"`
}

// Calendar answers working-day questions for the salary forecaster
type Calendar interface {
	// IsWorkingDay reports whether the date is neither a weekend nor a holiday
	IsWorkingDay(date time.Time) bool

	// WorkingDaysInMonth returns the working days of the month containing monthDate
	WorkingDaysInMonth(monthDate time.Time) []time.Time

	// WorkingDaysInInterval returns the working days in [start, end]
	WorkingDaysInInterval(start, end time.Time) ([]time.Time, error)
}

// Date builds a calendar date at midnight UTC. Out-of-range values are
// normalized the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// truncate drops the time of day and zone, keeping the local calendar date
func truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// MonthCalendar is a Calendar that also reports per-day details
type MonthCalendar interface {
	Calendar

	DayInfo(date time.Time) DayInfo
	MonthInfo(year int, month time.Month) *MonthInfo
}

var (
	_ MonthCalendar = (*WorkCalendar)(nil)
	_ MonthCalendar = (*FileCalendar)(nil)
)
