package salary

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PayType selects how advance and salary amounts are computed
type PayType string

const (
	PayTypeFixed  PayType = "FIXED"
	PayTypeHourly PayType = "HOURLY"
)

// ParsePayType accepts the pay type name in any case
func ParsePayType(s string) (PayType, error) {
	switch PayType(strings.ToUpper(strings.TrimSpace(s))) {
	case PayTypeFixed:
		return PayTypeFixed, nil
	case PayTypeHourly:
		return PayTypeHourly, nil
	}
	return "", &ConfigError{Field: "type", Reason: fmt.Sprintf("unknown pay type %q", s)}
}

// DefaultHoursPerDay is used for HOURLY pay when WorkingHoursPerDay is not set
var DefaultHoursPerDay = decimal.NewFromInt(8)

var (
	// ErrInvalidConfig is returned when a PayConfig field is out of range
	ErrInvalidConfig = errors.New("invalid pay config")

	// ErrDegenerateMonth marks a month without working days. Amounts fall back to zero.
	ErrDegenerateMonth = errors.New("month has no working days")
)

// ConfigError names the PayConfig field that failed validation
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidConfig, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// PayConfig describes how and when the user is paid
type PayConfig struct {
	Type PayType `json:"type" yaml:"type"`

	// Monthly salary for FIXED, hourly rate for HOURLY
	BaseAmount decimal.Decimal `json:"base_amount" yaml:"base_amount"`

	AdvanceDay int `json:"advance_day" yaml:"advance_day"`
	SalaryDay  int `json:"salary_day" yaml:"salary_day"`

	// FIXED only. nil splits the salary by working days instead.
	AdvancePercent *decimal.Decimal `json:"advance_percent,omitempty" yaml:"advance_percent,omitempty"`

	// HOURLY only. nil means DefaultHoursPerDay.
	WorkingHoursPerDay *decimal.Decimal `json:"working_hours_per_day,omitempty" yaml:"working_hours_per_day,omitempty"`
}

var (
	hundred  = decimal.NewFromInt(100)
	minHours = decimal.NewFromInt(1)
	maxHours = decimal.NewFromInt(24)
)

// Validate checks field ranges and returns a *ConfigError for the first violation
func (c PayConfig) Validate() error {
	if c.Type != PayTypeFixed && c.Type != PayTypeHourly {
		return &ConfigError{Field: "type", Reason: fmt.Sprintf("unknown pay type %q", c.Type)}
	}
	if !c.BaseAmount.IsPositive() {
		return &ConfigError{Field: "base_amount", Reason: "must be positive"}
	}
	if c.AdvanceDay < 1 || c.AdvanceDay > 31 {
		return &ConfigError{Field: "advance_day", Reason: fmt.Sprintf("must be in [1,31], got %d", c.AdvanceDay)}
	}
	if c.SalaryDay < 1 || c.SalaryDay > 31 {
		return &ConfigError{Field: "salary_day", Reason: fmt.Sprintf("must be in [1,31], got %d", c.SalaryDay)}
	}
	if p := c.AdvancePercent; p != nil && (p.IsNegative() || p.GreaterThan(hundred)) {
		return &ConfigError{Field: "advance_percent", Reason: fmt.Sprintf("must be in [0,100], got %s", p)}
	}
	if h := c.WorkingHoursPerDay; h != nil && (h.LessThan(minHours) || h.GreaterThan(maxHours)) {
		return &ConfigError{Field: "working_hours_per_day", Reason: fmt.Sprintf("must be in [1,24], got %s", h)}
	}
	return nil
}

// HoursPerDay returns the configured hours or DefaultHoursPerDay
func (c PayConfig) HoursPerDay() decimal.Decimal {
	if c.WorkingHoursPerDay == nil {
		return DefaultHoursPerDay
	}
	return *c.WorkingHoursPerDay
}
