package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/username/budget-planner/internal/salary"
	"github.com/username/budget-planner/pkg/dateutil"
)

const recentLimit = 5

// Service implements budget operations on top of a Store
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new budget service
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// SeedCategories creates the default categories when none exist yet.
// Returns the number of categories created.
func (s *Service) SeedCategories(ctx context.Context) (int, error) {
	count, err := s.store.CountCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		for _, def := range DefaultCategories {
			c := def
			c.ID = uuid.NewString()
			if err := tx.CreateCategory(ctx, &c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", err)
	}

	s.logger.Info("Default categories seeded", zap.Int("count", len(DefaultCategories)))
	return len(DefaultCategories), nil
}

// Categories lists all categories, seeding defaults on first use
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if _, err := s.SeedCategories(ctx); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx)
}

// Transactions lists transactions ordered by date. A nil month lists everything.
func (s *Service) Transactions(ctx context.Context, month *time.Time) ([]Transaction, error) {
	filter := TransactionFilter{}
	if month != nil {
		filter = MonthFilter(*month)
	}
	txs, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// CreateTransaction validates and stores a user transaction
func (s *Service) CreateTransaction(ctx context.Context, t Transaction) (*Transaction, error) {
	if t.Status == "" {
		t.Status = StatusCompleted
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if t.CategoryID != nil {
		if _, err := s.store.GetCategory(ctx, *t.CategoryID); errors.Is(err, ErrNotFound) {
			return nil, &ValidationError{Field: "category_id", Reason: "does not exist"}
		} else if err != nil {
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
	}

	t.ID = uuid.NewString()
	t.Date = dateutil.DateOnly(t.Date)
	t.CreatedAt = s.now().UTC()
	t.Category = nil

	if err := s.store.CreateTransaction(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.logger.Info("Transaction created",
		zap.String("id", t.ID),
		zap.String("type", string(t.Type)),
		zap.String("status", string(t.Status)),
		zap.String("amount", t.Amount.String()),
		zap.Time("date", t.Date))

	return &t, nil
}

// DeleteTransaction removes a transaction by id
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	s.logger.Info("Transaction deleted", zap.String("id", id))
	return nil
}

// PayConfig returns the saved pay schedule
func (s *Service) PayConfig(ctx context.Context) (*salary.PayConfig, error) {
	return s.store.GetPayConfig(ctx)
}

// PayConfigOr returns the saved pay schedule or fallback when none is saved
func (s *Service) PayConfigOr(ctx context.Context, fallback salary.PayConfig) (salary.PayConfig, error) {
	cfg, err := s.store.GetPayConfig(ctx)
	if errors.Is(err, ErrNoPayConfig) {
		return fallback, nil
	}
	if err != nil {
		return salary.PayConfig{}, err
	}
	return *cfg, nil
}

// SavePayConfig validates and replaces the pay schedule.
// A zero percent or zero hours value is stored as unset.
func (s *Service) SavePayConfig(ctx context.Context, cfg salary.PayConfig) (*salary.PayConfig, error) {
	if cfg.AdvancePercent != nil && cfg.AdvancePercent.IsZero() {
		cfg.AdvancePercent = nil
	}
	if cfg.WorkingHoursPerDay != nil && cfg.WorkingHoursPerDay.IsZero() {
		cfg.WorkingHoursPerDay = nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.SavePayConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save pay config: %w", err)
	}

	s.logger.Info("Pay config saved",
		zap.String("type", string(cfg.Type)),
		zap.String("base_amount", cfg.BaseAmount.String()),
		zap.Int("advance_day", cfg.AdvanceDay),
		zap.Int("salary_day", cfg.SalaryDay))

	return &cfg, nil
}

// Summary totals income and expense. A nil month covers all transactions.
func (s *Service) Summary(ctx context.Context, month *time.Time) (*Summary, error) {
	txs, err := s.Transactions(ctx, month)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Count:        len(txs),
		Recent:       []Transaction{},
	}
	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		case TypeExpense:
			sum.TotalExpense = sum.TotalExpense.Add(t.Amount)
		}
	}
	sum.Balance = sum.TotalIncome.Sub(sum.TotalExpense)

	if len(txs) > recentLimit {
		txs = txs[:recentLimit]
	}
	sum.Recent = append(sum.Recent, txs...)

	return sum, nil
}

// PlanSalaryPayments stores forecasted payments as planned income.
// A payment is skipped when a transaction with the same date, amount and
// category already exists. Lookups and inserts share one database transaction.
func (s *Service) PlanSalaryPayments(ctx context.Context, payments []salary.ForecastedPayment, dryRun bool) (*GenerateResult, error) {
	result := &GenerateResult{
		Created: []Transaction{},
		Skipped: []Transaction{},
	}

	err := s.store.WithTx(ctx, func(tx Store) error {
		result.Created = result.Created[:0]
		result.Skipped = result.Skipped[:0]

		categories := map[salary.PaymentKind]*Category{}
		for _, p := range payments {
			cat, ok := categories[p.Kind]
			if !ok {
				var err error
				cat, err = s.ensureCategory(ctx, tx, categoryFor(p.Kind), dryRun)
				if err != nil {
					return err
				}
				categories[p.Kind] = cat
			}

			amount := decimal.NewFromInt(p.Amount)
			date := dateutil.DateOnly(p.Date)

			existing, err := tx.FindTransaction(ctx, date, amount, cat.ID)
			switch {
			case err == nil:
				result.Skipped = append(result.Skipped, *existing)
				continue
			case !errors.Is(err, ErrNotFound):
				return fmt.Errorf("failed to look up %s payment: %w", p.Kind, err)
			}

			catID := cat.ID
			t := Transaction{
				ID:          uuid.NewString(),
				Amount:      amount,
				Date:        date,
				Description: categoryFor(p.Kind),
				Type:        TypeIncome,
				Status:      StatusPlanned,
				CategoryID:  &catID,
				Category:    cat,
				CreatedAt:   s.now().UTC(),
			}
			if !dryRun {
				if err := tx.CreateTransaction(ctx, &t); err != nil {
					return fmt.Errorf("failed to create %s payment: %w", p.Kind, err)
				}
			}
			result.Created = append(result.Created, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Salary payments planned",
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("dry_run", dryRun))

	return result, nil
}

func (s *Service) ensureCategory(ctx context.Context, tx Store, name string, dryRun bool) (*Category, error) {
	cat, err := tx.FindCategory(ctx, name, TypeIncome)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to find category %s: %w", name, err)
	}

	cat = &Category{
		ID:    uuid.NewString(),
		Name:  name,
		Type:  TypeIncome,
		Color: colorIncome,
	}
	if dryRun {
		return cat, nil
	}
	if err := tx.CreateCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", name, err)
	}
	s.logger.Info("Category created", zap.String("name", name))
	return cat, nil
}

func categoryFor(kind salary.PaymentKind) string {
	if kind == salary.KindAdvance {
		return CategoryAdvance
	}
	return CategorySalary
}
