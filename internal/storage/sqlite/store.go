package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/username/budget-planner/internal/budget"
	"github.com/username/budget-planner/internal/salary"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339Nano
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements budget.Store on SQLite
type Store struct {
	db     *sql.DB
	q      querier
	inTx   bool
	logger *zap.Logger
}

var _ budget.Store = (*Store)(nil)

// New opens (creating if needed) the database at dbPath and applies migrations
func New(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("Database ready", zap.String("path", dbPath))

	return &Store{
		db:     db,
		q:      db,
		logger: logger,
	}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// WithTx runs fn inside a database transaction. Nested calls reuse the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(budget.Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txStore := &Store{db: s.db, q: tx, inTx: true, logger: s.logger}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("Rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// CountCategories returns the number of stored categories
func (s *Store) CountCategories(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

// ListCategories returns categories ordered by type and name
func (s *Store) ListCategories(ctx context.Context) ([]budget.Category, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, type, color FROM categories ORDER BY type DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []budget.Category{}
	for rows.Next() {
		var c budget.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = budget.TransactionType(typ)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCategory looks a category up by id
func (s *Store) GetCategory(ctx context.Context, id string) (*budget.Category, error) {
	c := budget.Category{ID: id}
	var typ string
	err := s.q.QueryRowContext(ctx,
		`SELECT name, type, color FROM categories WHERE id = ?`, id,
	).Scan(&c.Name, &typ, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, budget.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	c.Type = budget.TransactionType(typ)
	return &c, nil
}

// FindCategory looks a category up by name and type
func (s *Store) FindCategory(ctx context.Context, name string, typ budget.TransactionType) (*budget.Category, error) {
	c := budget.Category{Type: typ}
	err := s.q.QueryRowContext(ctx,
		`SELECT id, name, color FROM categories WHERE name = ? AND type = ?`,
		name, string(typ),
	).Scan(&c.ID, &c.Name, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", name, budget.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query category: %w", err)
	}
	return &c, nil
}

// CreateCategory inserts a category
func (s *Store) CreateCategory(ctx context.Context, c *budget.Category) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, color) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Color)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

const selectTransactions = `
SELECT t.id, t.amount, t.date, t.description, t.type, t.status, t.category_id, t.created_at,
       c.name, c.type, c.color
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id`

// ListTransactions returns transactions ordered by date ascending
func (s *Store) ListTransactions(ctx context.Context, filter budget.TransactionFilter) ([]budget.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.From != nil {
		where = append(where, "t.date >= ?")
		args = append(args, filter.From.Format(dateLayout))
	}
	if filter.To != nil {
		where = append(where, "t.date <= ?")
		args = append(args, filter.To.Format(dateLayout))
	}

	query := selectTransactions
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date ASC, t.created_at ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []budget.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CreateTransaction inserts a transaction
func (s *Store) CreateTransaction(ctx context.Context, t *budget.Transaction) error {
	var categoryID sql.NullString
	if t.CategoryID != nil {
		categoryID = sql.NullString{String: *t.CategoryID, Valid: true}
	}

	_, err := s.q.ExecContext(ctx,
		`INSERT INTO transactions (id, amount, date, description, type, status, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Amount.String(),
		t.Date.Format(dateLayout),
		t.Description,
		string(t.Type),
		string(t.Status),
		categoryID,
		t.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction by id
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, budget.ErrNotFound)
	}
	return nil
}

// FindTransaction looks a transaction up by date, amount and category
func (s *Store) FindTransaction(ctx context.Context, date time.Time, amount decimal.Decimal, categoryID string) (*budget.Transaction, error) {
	rows, err := s.q.QueryContext(ctx,
		selectTransactions+` WHERE t.date = ? AND t.amount = ? AND t.category_id = ? LIMIT 1`,
		date.Format(dateLayout), amount.String(), categoryID)
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query transaction: %w", err)
		}
		return nil, budget.ErrNotFound
	}
	return scanTransaction(rows)
}

func scanTransaction(rows *sql.Rows) (*budget.Transaction, error) {
	var (
		t                          budget.Transaction
		amount, date, createdAt    string
		typ, status                string
		categoryID                 sql.NullString
		catName, catType, catColor sql.NullString
	)
	if err := rows.Scan(&t.ID, &amount, &date, &t.Description, &typ, &status, &categoryID, &createdAt,
		&catName, &catType, &catColor); err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if t.Date, err = time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	t.Type = budget.TransactionType(typ)
	t.Status = budget.Status(status)

	if categoryID.Valid {
		id := categoryID.String
		t.CategoryID = &id
		if catName.Valid {
			t.Category = &budget.Category{
				ID:    id,
				Name:  catName.String,
				Type:  budget.TransactionType(catType.String),
				Color: catColor.String,
			}
		}
	}
	return &t, nil
}

// GetPayConfig returns the single stored pay schedule
func (s *Store) GetPayConfig(ctx context.Context) (*salary.PayConfig, error) {
	var (
		payType, base         string
		advanceDay, salaryDay int
		percent, hours        sql.NullString
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT pay_type, base_amount, advance_day, salary_day, advance_percent, working_hours
		 FROM salary_config WHERE id = 1`,
	).Scan(&payType, &base, &advanceDay, &salaryDay, &percent, &hours)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, budget.ErrNoPayConfig
	}
	if err != nil {
		return nil, fmt.Errorf("query pay config: %w", err)
	}

	cfg := &salary.PayConfig{
		Type:       salary.PayType(payType),
		AdvanceDay: advanceDay,
		SalaryDay:  salaryDay,
	}
	if cfg.BaseAmount, err = decimal.NewFromString(base); err != nil {
		return nil, fmt.Errorf("parse base_amount %q: %w", base, err)
	}
	if cfg.AdvancePercent, err = nullDecimal(percent); err != nil {
		return nil, fmt.Errorf("parse advance_percent: %w", err)
	}
	if cfg.WorkingHoursPerDay, err = nullDecimal(hours); err != nil {
		return nil, fmt.Errorf("parse working_hours: %w", err)
	}
	return cfg, nil
}

// SavePayConfig replaces the stored pay schedule
func (s *Store) SavePayConfig(ctx context.Context, cfg salary.PayConfig) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO salary_config (id, pay_type, base_amount, advance_day, salary_day, advance_percent, working_hours, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   pay_type = excluded.pay_type,
		   base_amount = excluded.base_amount,
		   advance_day = excluded.advance_day,
		   salary_day = excluded.salary_day,
		   advance_percent = excluded.advance_percent,
		   working_hours = excluded.working_hours,
		   updated_at = excluded.updated_at`,
		string(cfg.Type),
		cfg.BaseAmount.String(),
		cfg.AdvanceDay,
		cfg.SalaryDay,
		decimalOrNull(cfg.AdvancePercent),
		decimalOrNull(cfg.WorkingHoursPerDay),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("upsert pay config: %w", err)
	}
	return nil
}

func nullDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func decimalOrNull(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
