package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/salary"
)

// Publisher is notified about every planned transaction that gets stored
type Publisher interface {
	PublishTransactionPlanned(ctx context.Context, t budget.Transaction) error
}

// Manager ties the calendar, the salary forecaster and the budget together
type Manager struct {
	service    *budget.Service
	forecaster *salary.Forecaster
	calendar   calendar.MonthCalendar
	publisher  Publisher
	defaults   salary.PayConfig
	logger     *zap.Logger
}

// NewManager creates a new planner. defaults is used while no pay schedule is saved.
func NewManager(
	service *budget.Service,
	cal calendar.MonthCalendar,
	publisher Publisher,
	defaults salary.PayConfig,
	logger *zap.Logger,
) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cal == nil {
		cal = calendar.Default()
	}
	return &Manager{
		service:    service,
		forecaster: salary.NewForecaster(cal, logger),
		calendar:   cal,
		publisher:  publisher,
		defaults:   defaults,
		logger:     logger,
	}
}

// Service returns the budget service
func (m *Manager) Service() *budget.Service {
	return m.service
}

// Calendar returns the working-day calendar
func (m *Manager) Calendar() calendar.MonthCalendar {
	return m.calendar
}

// PayConfig returns the saved pay schedule or the configured defaults
func (m *Manager) PayConfig(ctx context.Context) (salary.PayConfig, error) {
	cfg, err := m.service.PayConfigOr(ctx, m.defaults)
	if err != nil {
		return salary.PayConfig{}, fmt.Errorf("failed to load pay config: %w", err)
	}
	return cfg, nil
}

// Forecast computes forecasts for months consecutive months starting at (year, month)
func (m *Manager) Forecast(ctx context.Context, year int, month time.Month, months int) ([]*salary.Forecast, error) {
	cfg, err := m.PayConfig(ctx)
	if err != nil {
		return nil, err
	}
	return m.forecaster.ForecastRange(year, month, months, cfg)
}

// Preview forecasts the month containing now and the one after it
func (m *Manager) Preview(ctx context.Context, now time.Time) ([]*salary.Forecast, error) {
	return m.Forecast(ctx, now.Year(), now.Month(), 2)
}

// Generate forecasts the given months and stores the payments as planned income.
// Payments that already exist are skipped, so repeated calls are safe.
func (m *Manager) Generate(ctx context.Context, year int, month time.Month, months int, dryRun bool) (*budget.GenerateResult, error) {
	m.logger.Info("Starting salary generation",
		zap.Int("year", year),
		zap.Stringer("month", month),
		zap.Int("months", months),
		zap.Bool("dry_run", dryRun))

	forecasts, err := m.Forecast(ctx, year, month, months)
	if err != nil {
		return nil, err
	}

	payments := make([]salary.ForecastedPayment, 0, 2*len(forecasts))
	for _, f := range forecasts {
		payments = append(payments, f.Payments...)
	}

	result, err := m.service.PlanSalaryPayments(ctx, payments, dryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to plan salary payments: %w", err)
	}

	if !dryRun && m.publisher != nil {
		for _, t := range result.Created {
			if err := m.publisher.PublishTransactionPlanned(ctx, t); err != nil {
				m.logger.Warn("Failed to publish planned transaction",
					zap.String("id", t.ID),
					zap.Error(err))
			}
		}
	}

	return result, nil
}

// GenerateAhead generates the current month and monthsAhead following months
func (m *Manager) GenerateAhead(ctx context.Context, now time.Time, monthsAhead int, dryRun bool) (*budget.GenerateResult, error) {
	return m.Generate(ctx, now.Year(), now.Month(), monthsAhead+1, dryRun)
}

// NextPayment returns the first forecasted payment on or after now
func (m *Manager) NextPayment(ctx context.Context, now time.Time) (*salary.ForecastedPayment, error) {
	today := calendar.Date(now.Year(), now.Month(), now.Day())

	// The salary of the previous month may still be ahead
	prev := calendar.Date(now.Year(), now.Month()-1, 1)
	forecasts, err := m.Forecast(ctx, prev.Year(), prev.Month(), 3)
	if err != nil {
		return nil, err
	}

	var next *salary.ForecastedPayment
	for _, f := range forecasts {
		for i := range f.Payments {
			p := f.Payments[i]
			if p.Date.Before(today) {
				continue
			}
			if next == nil || p.Date.Before(next.Date) {
				next = &p
			}
		}
	}
	if next == nil {
		return nil, fmt.Errorf("no upcoming payment found")
	}
	return next, nil
}

// MonthlyStatus summarizes a month: calendar, forecast and recorded transactions
type MonthlyStatus struct {
	Calendar        *calendar.MonthInfo `json:"calendar"`
	Forecast        *salary.Forecast    `json:"forecast"`
	ForecastTotal   int64               `json:"forecast_total"`
	PlannedIncome   decimal.Decimal     `json:"planned_income"`
	CompletedIncome decimal.Decimal     `json:"completed_income"`
	Expense         decimal.Decimal     `json:"expense"`
	Transactions    int                 `json:"transactions"`
}

// MonthlyStatus builds the status of a month
func (m *Manager) MonthlyStatus(ctx context.Context, year int, month time.Month) (*MonthlyStatus, error) {
	forecasts, err := m.Forecast(ctx, year, month, 1)
	if err != nil {
		return nil, err
	}
	f := forecasts[0]

	monthStart := calendar.Date(f.Year, f.Month, 1)
	txs, err := m.service.Transactions(ctx, &monthStart)
	if err != nil {
		return nil, err
	}

	status := &MonthlyStatus{
		Calendar:        m.calendar.MonthInfo(f.Year, f.Month),
		Forecast:        f,
		ForecastTotal:   f.Advance().Amount + f.Salary().Amount,
		PlannedIncome:   decimal.Zero,
		CompletedIncome: decimal.Zero,
		Expense:         decimal.Zero,
		Transactions:    len(txs),
	}
	for _, t := range txs {
		switch {
		case t.Type == budget.TypeExpense:
			status.Expense = status.Expense.Add(t.Amount)
		case t.Status == budget.StatusPlanned:
			status.PlannedIncome = status.PlannedIncome.Add(t.Amount)
		default:
			status.CompletedIncome = status.CompletedIncome.Add(t.Amount)
		}
	}

	return status, nil
}
