package calendar

import (
	"time"
)

// WorkCalendar classifies dates using the weekday and a recurring holiday table.
// It is immutable after construction and safe for concurrent use.
type WorkCalendar struct {
	holidays    map[monthDay]string
	hoursPerDay int
}

var defaultCalendar = NewWorkCalendar(fixedHolidays, DefaultHoursPerDay)

// Default returns the calendar backed by the built-in holiday table
func Default() *WorkCalendar {
	return defaultCalendar
}

// NewWorkCalendar creates a calendar for the given holiday table.
// hoursPerDay <= 0 falls back to DefaultHoursPerDay.
func NewWorkCalendar(holidays []Holiday, hoursPerDay int) *WorkCalendar {
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	table := make(map[monthDay]string, len(holidays))
	for _, h := range holidays {
		table[monthDay{month: h.Month, day: h.Day}] = h.Name
	}
	return &WorkCalendar{
		holidays:    table,
		hoursPerDay: hoursPerDay,
	}
}

// Holidays returns the holiday table in calendar order
func (c *WorkCalendar) Holidays() []Holiday {
	out := make([]Holiday, 0, len(c.holidays))
	for m := time.January; m <= time.December; m++ {
		for d := 1; d <= 31; d++ {
			if name, ok := c.holidays[monthDay{month: m, day: d}]; ok {
				out = append(out, Holiday{Month: m, Day: d, Name: name})
			}
		}
	}
	return out
}

// IsHoliday reports whether the date's day and month appear in the holiday table
func (c *WorkCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.holidays[monthDay{month: date.Month(), day: date.Day()}]
	return ok
}

// IsWeekend returns true for Saturday and Sunday
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWorkingDay reports whether the date is neither a weekend nor a holiday
func (c *WorkCalendar) IsWorkingDay(date time.Time) bool {
	return !IsWeekend(date) && !c.IsHoliday(date)
}

// WorkingDaysInMonth returns the working days of the month containing monthDate, ascending
func (c *WorkCalendar) WorkingDaysInMonth(monthDate time.Time) []time.Time {
	start := Date(monthDate.Year(), monthDate.Month(), 1)
	end := start.AddDate(0, 1, -1)
	days, _ := c.WorkingDaysInInterval(start, end)
	return days
}

// WorkingDaysInInterval returns the working days in [start, end], ascending.
// Only the calendar dates of start and end are considered.
func (c *WorkCalendar) WorkingDaysInInterval(start, end time.Time) ([]time.Time, error) {
	start, end = truncate(start), truncate(end)
	if start.After(end) {
		return nil, &RangeError{Start: start, End: end}
	}

	days := []time.Time{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorkingDay(d) {
			days = append(days, d)
		}
	}
	return days, nil
}

// DayInfo returns detailed info for a specific day
func (c *WorkCalendar) DayInfo(date time.Time) DayInfo {
	date = truncate(date)
	info := DayInfo{Date: date}

	switch {
	case c.IsHoliday(date):
		info.Type = DayTypeHoliday
		info.Note = c.holidays[monthDay{month: date.Month(), day: date.Day()}]
	case IsWeekend(date):
		info.Type = DayTypeWeekend
	default:
		info.Type = DayTypeWorkday
		info.IsWorkday = true
		info.WorkingHours = c.hoursPerDay
	}
	return info
}

// MonthInfo returns calendar info for the entire month
func (c *WorkCalendar) MonthInfo(year int, month time.Month) *MonthInfo {
	start := Date(year, month, 1)
	mi := &MonthInfo{
		Year:  start.Year(),
		Month: start.Month(),
		Days:  []DayInfo{},
	}

	for d := start; d.Month() == start.Month(); d = d.AddDate(0, 0, 1) {
		day := c.DayInfo(d)
		mi.Days = append(mi.Days, day)

		switch day.Type {
		case DayTypeWorkday:
			mi.WorkDays++
			mi.WorkingHours += day.WorkingHours
		case DayTypeWeekend:
			mi.Weekends++
		case DayTypeHoliday:
			mi.Holidays++
		}
	}
	return mi
}

// IsHoliday checks the built-in holiday table
func IsHoliday(date time.Time) bool {
	return defaultCalendar.IsHoliday(date)
}

// IsWorkingDay checks the date against weekends and the built-in holiday table
func IsWorkingDay(date time.Time) bool {
	return defaultCalendar.IsWorkingDay(date)
}

// WorkingDaysInMonth uses the built-in holiday table
func WorkingDaysInMonth(monthDate time.Time) []time.Time {
	return defaultCalendar.WorkingDaysInMonth(monthDate)
}

// WorkingDaysInInterval uses the built-in holiday table
func WorkingDaysInInterval(start, end time.Time) ([]time.Time, error) {
	return defaultCalendar.WorkingDaysInInterval(start, end)
}
