package budget

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/budget-planner/pkg/dateutil"
)

// TransactionType is the direction of money flow
type TransactionType string

const (
	TypeIncome  TransactionType = "INCOME"
	TypeExpense TransactionType = "EXPENSE"
)

// Status tells whether a transaction already happened
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusCompleted Status = "COMPLETED"
)

// Names of the categories that receive generated salary payments
const (
	CategorySalary  = "Зарплата"
	CategoryAdvance = "Аванс"
)

const colorIncome = "#22c55e"

// Category groups transactions
type Category struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  TransactionType `json:"type"`
	Color string          `json:"color"`
}

// DefaultCategories are created on first use
var DefaultCategories = []Category{
	{Name: CategorySalary, Type: TypeIncome, Color: colorIncome},
	{Name: CategoryAdvance, Type: TypeIncome, Color: colorIncome},
	{Name: "Продукты", Type: TypeExpense, Color: "#f97316"},
	{Name: "Квартира", Type: TypeExpense, Color: "#3b82f6"},
	{Name: "Транспорт", Type: TypeExpense, Color: "#64748b"},
	{Name: "Развлечения", Type: TypeExpense, Color: "#a855f7"},
	{Name: "Здоровье", Type: TypeExpense, Color: "#ef4444"},
}

// Transaction is a single income or expense record
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Status      Status          `json:"status"`
	CategoryID  *string         `json:"category_id,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks the user-editable fields
func (t *Transaction) Validate() error {
	if len([]rune(strings.TrimSpace(t.Description))) < 2 {
		return &ValidationError{Field: "description", Reason: "must be at least 2 characters"}
	}
	if !t.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if t.Type != TypeIncome && t.Type != TypeExpense {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", t.Type)}
	}
	if t.Status != StatusPlanned && t.Status != StatusCompleted {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", t.Status)}
	}
	return nil
}

// TransactionFilter restricts ListTransactions to an inclusive date range
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// MonthFilter covers the whole month containing date
func MonthFilter(date time.Time) TransactionFilter {
	from := dateutil.StartOfMonth(date)
	to := dateutil.EndOfMonth(date)
	return TransactionFilter{From: &from, To: &to}
}

// Summary is the dashboard view over a set of transactions
type Summary struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
	Count        int             `json:"count"`
	Recent       []Transaction   `json:"recent"`
}

// GenerateResult reports what materializing forecasted payments did
type GenerateResult struct {
	Created []Transaction `json:"created"`
	Skipped []Transaction `json:"skipped"`
}
