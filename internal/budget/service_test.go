package budget_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/calendar"
	"github.com/username/budget-planner/internal/salary"
	"github.com/username/budget-planner/internal/storage/sqlite"
)

func newService(t *testing.T) *budget.Service {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "budget.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return budget.NewService(store, nil)
}

func payments(t *testing.T, year int, month time.Month) []salary.ForecastedPayment {
	t.Helper()
	percent := decimal.NewFromInt(40)
	p, err := salary.Calculate(calendar.Default(), year, month, salary.PayConfig{
		Type:           salary.PayTypeFixed,
		BaseAmount:     decimal.NewFromInt(50000),
		AdvanceDay:     25,
		SalaryDay:      10,
		AdvancePercent: &percent,
	})
	require.NoError(t, err)
	return p
}

func ptr[T any](v T) *T { return &v }

func TestService_CategoriesSeededOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(budget.DefaultCategories))

	created, err := svc.SeedCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	cats, err = svc.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(budget.DefaultCategories))
}

func TestService_CreateTransaction(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tx, err := svc.CreateTransaction(ctx, budget.Transaction{
		Amount:      decimal.RequireFromString("1500.25"),
		Date:        time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC),
		Description: "Продукты на неделю",
		Type:        budget.TypeExpense,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, budget.StatusCompleted, tx.Status)
	assert.Equal(t, 0, tx.Date.Hour())

	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	list, err := svc.Transactions(ctx, &march)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, tx.ID, list[0].ID)

	require.NoError(t, svc.DeleteTransaction(ctx, tx.ID))
	err = svc.DeleteTransaction(ctx, tx.ID)
	assert.True(t, budget.IsNotFound(err))
}

func TestService_CreateTransactionValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		tx    budget.Transaction
		field string
	}{
		{
			name:  "short description",
			tx:    budget.Transaction{Amount: decimal.NewFromInt(10), Date: time.Now(), Description: "x", Type: budget.TypeExpense},
			field: "description",
		},
		{
			name:  "negative amount",
			tx:    budget.Transaction{Amount: decimal.NewFromInt(-10), Date: time.Now(), Description: "Кафе", Type: budget.TypeExpense},
			field: "amount",
		},
		{
			name:  "unknown type",
			tx:    budget.Transaction{Amount: decimal.NewFromInt(10), Date: time.Now(), Description: "Кафе", Type: "TRANSFER"},
			field: "type",
		},
		{
			name:  "unknown category",
			tx:    budget.Transaction{Amount: decimal.NewFromInt(10), Date: time.Now(), Description: "Кафе", Type: budget.TypeExpense, CategoryID: ptr("no-such-category")},
			field: "category_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, tt.tx)
			require.Error(t, err)
			assert.True(t, budget.IsClientError(err))

			var vErr *budget.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestService_PayConfig(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.PayConfig(ctx)
	assert.True(t, errors.Is(err, budget.ErrNoPayConfig))

	fallback := salary.PayConfig{Type: salary.PayTypeFixed, BaseAmount: decimal.NewFromInt(1), AdvanceDay: 1, SalaryDay: 2}
	got, err := svc.PayConfigOr(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback.AdvanceDay, got.AdvanceDay)

	zero := decimal.Zero
	saved, err := svc.SavePayConfig(ctx, salary.PayConfig{
		Type:           salary.PayTypeFixed,
		BaseAmount:     decimal.NewFromInt(50000),
		AdvanceDay:     25,
		SalaryDay:      10,
		AdvancePercent: &zero,
	})
	require.NoError(t, err)
	assert.Nil(t, saved.AdvancePercent, "zero percent is stored as unset")

	stored, err := svc.PayConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored.AdvancePercent)
	assert.Equal(t, 25, stored.AdvanceDay)

	_, err = svc.SavePayConfig(ctx, salary.PayConfig{
		Type:       salary.PayTypeFixed,
		BaseAmount: decimal.NewFromInt(50000),
		AdvanceDay: 32,
		SalaryDay:  10,
	})
	assert.True(t, errors.Is(err, salary.ErrInvalidConfig))
	assert.True(t, budget.IsClientError(err))
}

func TestService_PlanSalaryPaymentsDeduplicates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.PlanSalaryPayments(ctx, payments(t, 2024, time.January), false)
	require.NoError(t, err)
	require.Len(t, first.Created, 2)
	assert.Empty(t, first.Skipped)

	assert.Equal(t, budget.CategoryAdvance, first.Created[0].Description)
	assert.Equal(t, budget.StatusPlanned, first.Created[0].Status)
	assert.Equal(t, budget.TypeIncome, first.Created[0].Type)
	assert.True(t, first.Created[0].Amount.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, budget.CategorySalary, first.Created[1].Description)
	assert.Equal(t, time.February, first.Created[1].Date.Month())

	second, err := svc.PlanSalaryPayments(ctx, payments(t, 2024, time.January), false)
	require.NoError(t, err)
	assert.Empty(t, second.Created)
	assert.Len(t, second.Skipped, 2)

	all, err := svc.Transactions(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// next month shares no (date, amount, category) key
	third, err := svc.PlanSalaryPayments(ctx, payments(t, 2024, time.February), false)
	require.NoError(t, err)
	assert.Len(t, third.Created, 2)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	names := map[string]int{}
	for _, c := range cats {
		names[c.Name]++
	}
	assert.Equal(t, 1, names[budget.CategoryAdvance])
	assert.Equal(t, 1, names[budget.CategorySalary])
}

func TestService_PlanSalaryPaymentsDryRun(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	res, err := svc.PlanSalaryPayments(ctx, payments(t, 2024, time.May), true)
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)

	all, err := svc.Transactions(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestService_Summary(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.PlanSalaryPayments(ctx, payments(t, 2024, time.March), false)
	require.NoError(t, err)

	_, err = svc.CreateTransaction(ctx, budget.Transaction{
		Amount:      decimal.NewFromInt(12000),
		Date:        time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC),
		Description: "Квартира",
		Type:        budget.TypeExpense,
	})
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, nil)
	require.NoError(t, err)
	assert.True(t, sum.TotalIncome.Equal(decimal.NewFromInt(50000)))
	assert.True(t, sum.TotalExpense.Equal(decimal.NewFromInt(12000)))
	assert.True(t, sum.Balance.Equal(decimal.NewFromInt(38000)))
	assert.Equal(t, 3, sum.Count)
	assert.Len(t, sum.Recent, 3)

	march := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	sum, err = svc.Summary(ctx, &march)
	require.NoError(t, err)
	// salary for March lands on April 10
	assert.True(t, sum.TotalIncome.Equal(decimal.NewFromInt(20000)))
}
