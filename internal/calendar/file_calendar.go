package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FileCalendar implements Calendar using a holiday table read from a local text file.
// Until Load succeeds it answers with the built-in table.
type FileCalendar struct {
	filePath    string
	hoursPerDay int
	logger      *zap.Logger

	mu  sync.RWMutex
	cal *WorkCalendar
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, hoursPerDay int, logger *zap.Logger) *FileCalendar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCalendar{
		filePath:    filePath,
		hoursPerDay: hoursPerDay,
		logger:      logger,
		cal:         NewWorkCalendar(fixedHolidays, hoursPerDay),
	}
}

// Load loads the holiday table from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	holidays := []Holiday{}
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: MM-DD [name]
		// Example: 01-07 Рождество Христово
		parts := strings.SplitN(line, " ", 2)

		date, err := time.Parse("01-02", parts[0])
		if err != nil {
			fc.logger.Warn("Failed to parse holiday date",
				zap.Int("line", lineNo),
				zap.String("date", parts[0]),
				zap.Error(err))
			continue
		}

		name := ""
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}

		holidays = append(holidays, Holiday{
			Month: date.Month(),
			Day:   date.Day(),
			Name:  name,
		})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.mu.Lock()
	fc.cal = NewWorkCalendar(holidays, fc.hoursPerDay)
	fc.mu.Unlock()

	fc.logger.Info("Holiday table loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", len(holidays)))

	return nil
}

// Calendar returns the currently loaded table as a WorkCalendar
func (fc *FileCalendar) Calendar() *WorkCalendar {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return fc.cal
}

// IsWorkingDay reports whether the date is neither a weekend nor a listed holiday
func (fc *FileCalendar) IsWorkingDay(date time.Time) bool {
	return fc.Calendar().IsWorkingDay(date)
}

// WorkingDaysInMonth returns the working days of the month containing monthDate
func (fc *FileCalendar) WorkingDaysInMonth(monthDate time.Time) []time.Time {
	return fc.Calendar().WorkingDaysInMonth(monthDate)
}

// WorkingDaysInInterval returns the working days in [start, end]
func (fc *FileCalendar) WorkingDaysInInterval(start, end time.Time) ([]time.Time, error) {
	return fc.Calendar().WorkingDaysInInterval(start, end)
}

// DayInfo returns detailed info for a specific day
func (fc *FileCalendar) DayInfo(date time.Time) DayInfo {
	return fc.Calendar().DayInfo(date)
}

// MonthInfo returns calendar info for the entire month
func (fc *FileCalendar) MonthInfo(year int, month time.Month) *MonthInfo {
	return fc.Calendar().MonthInfo(year, month)
}
