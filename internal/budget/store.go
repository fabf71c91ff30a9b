package budget

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/budget-planner/internal/salary"
)

// Store persists categories, transactions and the pay schedule
type Store interface {
	CountCategories(ctx context.Context) (int, error)
	ListCategories(ctx context.Context) ([]Category, error)

	// GetCategory returns ErrNotFound when id doesn't exist
	GetCategory(ctx context.Context, id string) (*Category, error)

	// FindCategory returns ErrNotFound when no category matches
	FindCategory(ctx context.Context, name string, typ TransactionType) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error

	// ListTransactions returns transactions ordered by date ascending
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error)
	CreateTransaction(ctx context.Context, t *Transaction) error

	// DeleteTransaction returns ErrNotFound when id doesn't exist
	DeleteTransaction(ctx context.Context, id string) error

	// FindTransaction looks up a transaction by its generation key.
	// Returns ErrNotFound when none exists.
	FindTransaction(ctx context.Context, date time.Time, amount decimal.Decimal, categoryID string) (*Transaction, error)

	// GetPayConfig returns ErrNoPayConfig when nothing has been saved yet
	GetPayConfig(ctx context.Context) (*salary.PayConfig, error)
	SavePayConfig(ctx context.Context, cfg salary.PayConfig) error

	// WithTx runs fn against a store bound to a single database transaction
	WithTx(ctx context.Context, fn func(Store) error) error
}
