package salary

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/calendar"
)

// PaymentKind distinguishes the two payments of a month
type PaymentKind string

const (
	KindAdvance PaymentKind = "ADVANCE"
	KindSalary  PaymentKind = "SALARY"
)

// firstHalfLastDay closes the period covered by the advance
const firstHalfLastDay = 15

// ForecastedPayment is a single expected payment
type ForecastedPayment struct {
	Date   time.Time   `json:"date" yaml:"date"`
	Amount int64       `json:"amount" yaml:"amount"`
	Kind   PaymentKind `json:"kind" yaml:"kind"`
}

// Forecast is the result for one month
type Forecast struct {
	Year                 int                 `json:"year" yaml:"year"`
	Month                time.Month          `json:"month" yaml:"month"`
	Payments             []ForecastedPayment `json:"payments" yaml:"payments"`
	TotalWorkingDays     int                 `json:"total_working_days" yaml:"total_working_days"`
	FirstHalfWorkingDays int                 `json:"first_half_working_days" yaml:"first_half_working_days"`
	Warnings             []error             `json:"-" yaml:"-"`
}

// Advance returns the advance payment
func (f *Forecast) Advance() ForecastedPayment {
	return f.Payments[0]
}

// Salary returns the salary payment
func (f *Forecast) Salary() ForecastedPayment {
	return f.Payments[1]
}

// Calculate forecasts the advance and salary for the given month.
// month is 1-based; it and the day fields are normalized by time.Date, so a
// salary day before the advance day lands in the following month.
// The result always holds exactly two payments, ADVANCE first.
func Calculate(cal calendar.Calendar, year int, month time.Month, cfg PayConfig) ([]ForecastedPayment, error) {
	f, err := compute(cal, year, month, cfg)
	if err != nil {
		return nil, err
	}
	return f.Payments, nil
}

func compute(cal calendar.Calendar, year int, month time.Month, cfg PayConfig) (*Forecast, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	monthStart := calendar.Date(year, month, 1)
	totalDays := len(cal.WorkingDaysInMonth(monthStart))

	firstHalf, err := cal.WorkingDaysInInterval(monthStart, calendar.Date(year, month, firstHalfLastDay))
	if err != nil {
		return nil, fmt.Errorf("count first half working days: %w", err)
	}
	firstHalfDays := len(firstHalf)

	advanceDate := calendar.Date(year, month, cfg.AdvanceDay)
	salaryDate := calendar.Date(year, month, cfg.SalaryDay)
	if cfg.SalaryDay < cfg.AdvanceDay {
		salaryDate = calendar.Date(year, month+1, cfg.SalaryDay)
	}

	f := &Forecast{
		Year:                 monthStart.Year(),
		Month:                monthStart.Month(),
		TotalWorkingDays:     totalDays,
		FirstHalfWorkingDays: firstHalfDays,
	}

	var advance, rest decimal.Decimal
	switch cfg.Type {
	case PayTypeFixed:
		switch {
		case cfg.AdvancePercent != nil:
			advance = cfg.BaseAmount.Mul(*cfg.AdvancePercent).Div(hundred)
			rest = cfg.BaseAmount.Sub(advance)
		case totalDays == 0:
			advance, rest = decimal.Zero, decimal.Zero
			f.Warnings = append(f.Warnings, ErrDegenerateMonth)
		default:
			dailyRate := cfg.BaseAmount.Div(decimal.NewFromInt(int64(totalDays)))
			advance = dailyRate.Mul(decimal.NewFromInt(int64(firstHalfDays)))
			rest = cfg.BaseAmount.Sub(advance)
		}

	case PayTypeHourly:
		hourly := cfg.BaseAmount.Mul(cfg.HoursPerDay())
		advance = hourly.Mul(decimal.NewFromInt(int64(firstHalfDays)))
		rest = hourly.Mul(decimal.NewFromInt(int64(totalDays))).Sub(advance)
		if totalDays == 0 {
			f.Warnings = append(f.Warnings, ErrDegenerateMonth)
		}
	}

	f.Payments = []ForecastedPayment{
		{Date: advanceDate, Amount: roundAmount(advance), Kind: KindAdvance},
		{Date: salaryDate, Amount: roundAmount(rest), Kind: KindSalary},
	}
	return f, nil
}

// roundAmount rounds half away from zero to whole currency units
func roundAmount(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}

// Forecaster computes forecasts against a calendar and reports degenerate months
type Forecaster struct {
	calendar calendar.Calendar
	logger   *zap.Logger
}

// NewForecaster creates a new forecaster. A nil calendar uses the built-in holiday table.
func NewForecaster(cal calendar.Calendar, logger *zap.Logger) *Forecaster {
	if cal == nil {
		cal = calendar.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forecaster{
		calendar: cal,
		logger:   logger,
	}
}

// Calendar returns the calendar the forecaster counts working days with
func (fc *Forecaster) Calendar() calendar.Calendar {
	return fc.calendar
}

// Forecast computes the payments for one month
func (fc *Forecaster) Forecast(year int, month time.Month, cfg PayConfig) (*Forecast, error) {
	f, err := compute(fc.calendar, year, month, cfg)
	if err != nil {
		return nil, err
	}

	for _, w := range f.Warnings {
		fc.logger.Warn("Salary forecast degraded",
			zap.Int("year", f.Year),
			zap.Stringer("month", f.Month),
			zap.Error(w))
	}

	fc.logger.Debug("Salary forecast computed",
		zap.Int("year", f.Year),
		zap.Stringer("month", f.Month),
		zap.String("pay_type", string(cfg.Type)),
		zap.Int("working_days", f.TotalWorkingDays),
		zap.Int("first_half_days", f.FirstHalfWorkingDays),
		zap.Int64("advance", f.Advance().Amount),
		zap.Int64("salary", f.Salary().Amount))

	return f, nil
}

// ForecastRange computes consecutive months starting at (year, month)
func (fc *Forecaster) ForecastRange(year int, month time.Month, months int, cfg PayConfig) ([]*Forecast, error) {
	if months < 1 {
		months = 1
	}
	out := make([]*Forecast, 0, months)
	for i := 0; i < months; i++ {
		start := calendar.Date(year, month+time.Month(i), 1)
		f, err := fc.Forecast(start.Year(), start.Month(), cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
