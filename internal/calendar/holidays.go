package calendar

import "time"

// Holiday is a non-working day that recurs on the same date every year
type Holiday struct {
	Month time.Month `json:"month" yaml:"month"`
	Day   int        `json:"day" yaml:"day"`
	Name  string     `json:"name" yaml:"name"`
}

type monthDay struct {
	month time.Month
	day   int
}

// fixedHolidays is the built-in Russian public holiday table.
// Weekend transfers are not applied.
var fixedHolidays = []Holiday{
	{Month: time.January, Day: 1, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 2, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 3, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 4, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 5, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 6, Name: "Новогодние каникулы"},
	{Month: time.January, Day: 7, Name: "Рождество Христово"},
	{Month: time.January, Day: 8, Name: "Новогодние каникулы"},
	{Month: time.February, Day: 23, Name: "День защитника Отечества"},
	{Month: time.March, Day: 8, Name: "Международный женский день"},
	{Month: time.May, Day: 1, Name: "Праздник Весны и Труда"},
	{Month: time.May, Day: 9, Name: "День Победы"},
	{Month: time.June, Day: 12, Name: "День России"},
	{Month: time.November, Day: 4, Name: "День народного единства"},
}

// FixedHolidays returns a copy of the built-in holiday table
func FixedHolidays() []Holiday {
	out := make([]Holiday, len(fixedHolidays))
	copy(out, fixedHolidays)
	return out
}
