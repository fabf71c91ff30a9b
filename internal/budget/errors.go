package budget

import (
	"errors"
	"fmt"

	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/salary"
)

var (
	// ErrNotFound is returned when a referenced record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransaction is returned when a transaction fails validation
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrNoPayConfig is returned before the pay schedule has been saved
	ErrNoPayConfig = errors.New("pay config not set")
)

// ValidationError names the transaction field that failed validation
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidTransaction, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTransaction
}

// IsClientError reports whether err was caused by bad input
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidTransaction) ||
		errors.Is(err, salary.ErrInvalidConfig) ||
		errors.Is(err, calendar.ErrInvalidRange)
}

// IsNotFound reports whether err means a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoPayConfig)
}
