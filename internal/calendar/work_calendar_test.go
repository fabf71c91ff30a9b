package calendar

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestIsHoliday(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"New Year", Date(2024, time.January, 1), true},
		{"last day of winter break", Date(2025, time.January, 8), true},
		{"after winter break", Date(2025, time.January, 9), false},
		{"Defender of the Fatherland Day", Date(2024, time.February, 23), true},
		{"Women's Day", Date(2030, time.March, 8), true},
		{"Labour Day", Date(2024, time.May, 1), true},
		{"Victory Day", Date(2024, time.May, 9), true},
		{"Russia Day", Date(2024, time.June, 12), true},
		{"Unity Day", Date(2024, time.November, 4), true},
		{"ordinary day", Date(2024, time.April, 15), false},
		{"time of day ignored", time.Date(2024, time.June, 12, 23, 59, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHoliday(tt.date); got != tt.want {
				t.Errorf("IsHoliday(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestFixedHolidays_Count(t *testing.T) {
	if got := len(FixedHolidays()); got != 14 {
		t.Errorf("len(FixedHolidays()) = %d, want 14", got)
	}
	if got := len(Default().Holidays()); got != 14 {
		t.Errorf("len(Default().Holidays()) = %d, want 14", got)
	}
}

func TestIsWorkingDay(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"Monday", Date(2024, time.April, 15), true},
		{"Friday", Date(2024, time.April, 19), true},
		{"Saturday", Date(2024, time.April, 20), false},
		{"Sunday", Date(2024, time.April, 21), false},
		{"holiday on a weekday", Date(2024, time.June, 12), false},
		{"holiday on a weekend", Date(2023, time.November, 4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWorkingDay(tt.date); got != tt.want {
				t.Errorf("IsWorkingDay(%s) = %v, want %v", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestIsWorkingDay_WeekendsAndHolidaysNeverWork(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for d := Date(year, time.January, 1); d.Year() == year; d = d.AddDate(0, 0, 1) {
			if (IsWeekend(d) || IsHoliday(d)) && IsWorkingDay(d) {
				t.Fatalf("IsWorkingDay(%s) = true for a weekend or holiday", d.Format("2006-01-02"))
			}
		}
	}
}

func TestWorkingDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 17},
		{2024, time.February, 20},
		{2024, time.March, 20},
		{2024, time.May, 21},
		{2024, time.December, 22},
		{2025, time.January, 17},
		{2025, time.November, 19},
	}

	for _, tt := range tests {
		t.Run(Date(tt.year, tt.month, 1).Format("2006-01"), func(t *testing.T) {
			days := WorkingDaysInMonth(Date(tt.year, tt.month, 17))
			if len(days) != tt.want {
				t.Fatalf("len(WorkingDaysInMonth) = %d, want %d", len(days), tt.want)
			}

			for i, d := range days {
				if d.Year() != tt.year || d.Month() != tt.month {
					t.Errorf("day %s is outside the month", d.Format("2006-01-02"))
				}
				if !IsWorkingDay(d) {
					t.Errorf("day %s is not a working day", d.Format("2006-01-02"))
				}
				if i > 0 && !d.After(days[i-1]) {
					t.Errorf("days not strictly ascending at %d: %s after %s",
						i, d.Format("2006-01-02"), days[i-1].Format("2006-01-02"))
				}
			}
		})
	}
}

func TestWorkingDaysInInterval(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"first half of January 2024", Date(2024, time.January, 1), Date(2024, time.January, 15), 5},
		{"first half of March 2024", Date(2024, time.March, 1), Date(2024, time.March, 15), 10},
		{"single working day", Date(2024, time.April, 15), Date(2024, time.April, 15), 1},
		{"single weekend day", Date(2024, time.April, 20), Date(2024, time.April, 20), 0},
		{"across months", Date(2024, time.April, 29), Date(2024, time.May, 3), 4},
		{"start time of day ignored", time.Date(2024, time.April, 15, 18, 0, 0, 0, time.UTC), Date(2024, time.April, 15), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := WorkingDaysInInterval(tt.start, tt.end)
			if err != nil {
				t.Fatalf("WorkingDaysInInterval() error = %v", err)
			}
			if len(days) != tt.want {
				t.Errorf("len(WorkingDaysInInterval) = %d, want %d", len(days), tt.want)
			}
		})
	}
}

func TestWorkingDaysInInterval_InvalidRange(t *testing.T) {
	_, err := WorkingDaysInInterval(Date(2024, time.March, 15), Date(2024, time.March, 1))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("error = %v, want ErrInvalidRange", err)
	}

	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("error %T is not a *RangeError", err)
	}
	if rangeErr.Start.Day() != 15 || rangeErr.End.Day() != 1 {
		t.Errorf("RangeError bounds = %v..%v", rangeErr.Start, rangeErr.End)
	}
}

func TestNewWorkCalendar_EmptyTable(t *testing.T) {
	cal := NewWorkCalendar(nil, 0)

	if cal.IsHoliday(Date(2024, time.January, 1)) {
		t.Errorf("IsHoliday(Jan 1) = true with empty table")
	}
	// January 2024 has 23 weekdays
	if got := len(cal.WorkingDaysInMonth(Date(2024, time.January, 1))); got != 23 {
		t.Errorf("len(WorkingDaysInMonth) = %d, want 23", got)
	}
}

func TestMonthInfo(t *testing.T) {
	mi := Default().MonthInfo(2024, time.June)

	if len(mi.Days) != 30 {
		t.Errorf("Days count = %d, want 30", len(mi.Days))
	}
	if mi.WorkDays != 19 {
		t.Errorf("WorkDays = %d, want 19", mi.WorkDays)
	}
	if mi.Holidays != 1 {
		t.Errorf("Holidays = %d, want 1", mi.Holidays)
	}
	if mi.Weekends != 10 {
		t.Errorf("Weekends = %d, want 10", mi.Weekends)
	}
	if mi.WorkingHours != 19*DefaultHoursPerDay {
		t.Errorf("WorkingHours = %d, want %d", mi.WorkingHours, 19*DefaultHoursPerDay)
	}

	russiaDay := mi.Days[11]
	if russiaDay.Type != DayTypeHoliday || russiaDay.Note != "День России" {
		t.Errorf("June 12 = %+v, want holiday День России", russiaDay)
	}
}

func TestMonthInfo_NormalizesMonth(t *testing.T) {
	mi := Default().MonthInfo(2024, 13)
	if mi.Year != 2025 || mi.Month != time.January {
		t.Errorf("MonthInfo(2024, 13) = %d-%02d, want 2025-01", mi.Year, mi.Month)
	}
}

func TestDayType_String(t *testing.T) {
	tests := []struct {
		dt   DayType
		want string
	}{
		{DayTypeWorkday, "workday"},
		{DayTypeWeekend, "weekend"},
		{DayTypeHoliday, "holiday"},
		{DayType(0), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.dt.String(); got != tt.want {
			t.Errorf("DayType(%d).String() = %q, want %q", tt.dt, got, tt.want)
		}
	}
}

func TestDayType_TextRoundTrip(t *testing.T) {
	for _, dt := range []DayType{DayTypeWorkday, DayTypeWeekend, DayTypeHoliday} {
		text, err := dt.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", dt, err)
		}
		var got DayType
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error = %v", text, err)
		}
		if got != dt {
			t.Errorf("UnmarshalText(%q) = %v, want %v", text, got, dt)
		}
	}

	var dt DayType
	if err := dt.UnmarshalText([]byte("unknown")); err == nil {
		t.Error("UnmarshalText(unknown) should fail")
	}
}

func TestMonthInfo_JSONDecode(t *testing.T) {
	info := Default().MonthInfo(2024, time.May)
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded MonthInfo
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Days[0].Type != DayTypeHoliday {
		t.Errorf("May 1 type = %v, want holiday", decoded.Days[0].Type)
	}
	if decoded.Days[2].Type != DayTypeWorkday {
		t.Errorf("May 3 type = %v, want workday", decoded.Days[2].Type)
	}
}
