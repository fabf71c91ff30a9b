package planner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/salary"
	"github.com/username/budget-planner/internal/storage/sqlite"
)

type recordingPublisher struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (p *recordingPublisher) PublishTransactionPlanned(_ context.Context, t budget.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, t.ID)
	return p.err
}

func defaultPay() salary.PayConfig {
	percent := decimal.NewFromInt(40)
	return salary.PayConfig{
		Type:           salary.PayTypeFixed,
		BaseAmount:     decimal.NewFromInt(50000),
		AdvanceDay:     25,
		SalaryDay:      10,
		AdvancePercent: &percent,
	}
}

func newManager(t *testing.T, pub Publisher) *Manager {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "budget.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger, _ := zap.NewDevelopment()
	return NewManager(budget.NewService(store, logger), calendar.Default(), pub, defaultPay(), logger)
}

func TestManager_PreviewUsesDefaultsUntilSaved(t *testing.T) {
	m := newManager(t, nil)
	ctx := context.Background()

	forecasts, err := m.Preview(ctx, time.Date(2024, time.December, 3, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, forecasts, 2)
	assert.Equal(t, time.December, forecasts[0].Month)
	assert.Equal(t, 2025, forecasts[1].Year)
	assert.Equal(t, int64(20000), forecasts[0].Advance().Amount)
	assert.Equal(t, calendar.Date(2025, time.January, 10), forecasts[0].Salary().Date)

	_, err = m.Service().SavePayConfig(ctx, salary.PayConfig{
		Type:       salary.PayTypeHourly,
		BaseAmount: decimal.NewFromInt(500),
		AdvanceDay: 25,
		SalaryDay:  10,
	})
	require.NoError(t, err)

	forecasts, err = m.Forecast(ctx, 2024, time.March, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), forecasts[0].Advance().Amount)
	assert.Equal(t, int64(40000), forecasts[0].Salary().Amount)
}

func TestManager_GenerateIsIdempotent(t *testing.T) {
	pub := &recordingPublisher{}
	m := newManager(t, pub)
	ctx := context.Background()

	first, err := m.Generate(ctx, 2024, time.January, 2, false)
	require.NoError(t, err)
	assert.Len(t, first.Created, 4)
	assert.Len(t, pub.ids, 4)

	second, err := m.Generate(ctx, 2024, time.January, 2, false)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, 4)
	assert.Len(t, pub.ids, 4, "skipped payments are not published")

	txs, err := m.Service().Transactions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, txs, 4)
}

func TestManager_GeneratePublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := newManager(t, pub)

	res, err := m.GenerateAhead(context.Background(), time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), 0, false)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
}

func TestManager_GenerateDryRun(t *testing.T) {
	pub := &recordingPublisher{}
	m := newManager(t, pub)
	ctx := context.Background()

	res, err := m.Generate(ctx, 2024, time.June, 1, true)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	assert.Empty(t, pub.ids)

	txs, err := m.Service().Transactions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestManager_NextPayment(t *testing.T) {
	m := newManager(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		now  time.Time
		want time.Time
		kind salary.PaymentKind
	}{
		{"before salary day", time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), calendar.Date(2024, time.March, 10), salary.KindSalary},
		{"on salary day", time.Date(2024, time.March, 10, 15, 0, 0, 0, time.UTC), calendar.Date(2024, time.March, 10), salary.KindSalary},
		{"between payments", time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), calendar.Date(2024, time.March, 25), salary.KindAdvance},
		{"after advance", time.Date(2024, time.December, 26, 0, 0, 0, 0, time.UTC), calendar.Date(2025, time.January, 10), salary.KindSalary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := m.NextPayment(ctx, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Date)
			assert.Equal(t, tt.kind, p.Kind)
		})
	}
}

func TestManager_MonthlyStatus(t *testing.T) {
	m := newManager(t, nil)
	ctx := context.Background()

	_, err := m.Generate(ctx, 2024, time.February, 1, false)
	require.NoError(t, err)

	_, err = m.Service().CreateTransaction(ctx, budget.Transaction{
		Amount:      decimal.NewFromInt(3000),
		Date:        time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC),
		Description: "Транспорт",
		Type:        budget.TypeExpense,
	})
	require.NoError(t, err)

	status, err := m.MonthlyStatus(ctx, 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, 20, status.Calendar.WorkDays)
	assert.Equal(t, int64(50000), status.ForecastTotal)
	// only the advance (Feb 25) falls in February; the salary lands on Mar 10
	assert.True(t, status.PlannedIncome.Equal(decimal.NewFromInt(20000)))
	assert.True(t, status.Expense.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 2, status.Transactions)
}
