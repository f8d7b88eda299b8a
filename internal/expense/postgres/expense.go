package postgres

import (
	"context"
	"fmt"

	expenseDatamodel "github.com/frahmantamala/shared-expenses/internal/core/datamodel/expense"
	"github.com/frahmantamala/shared-expenses/internal/expense"
	"gorm.io/gorm"
)

// ExpenseRepository implements expense.Store using GORM. Head-first order is
// the insertion order of row_id, newest first.
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ expense.Store = (*ExpenseRepository)(nil)

func (r *ExpenseRepository) Append(ctx context.Context, e *expense.Expense) error {
	if e == nil {
		return expense.ErrNilExpense
	}
	if err := r.db.WithContext(ctx).Create(expense.ToDataModel(e)).Error; err != nil {
		return fmt.Errorf("insert expense %s: %w", e.ID, err)
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context) ([]*expense.Expense, error) {
	var rows []*expenseDatamodel.Expense
	if err := r.db.WithContext(ctx).Order("row_id DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) Latest(ctx context.Context, n int) ([]*expense.Expense, error) {
	if n <= 0 {
		return []*expense.Expense{}, nil
	}
	var rows []*expenseDatamodel.Expense
	if err := r.db.WithContext(ctx).Order("row_id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("latest expenses: %w", err)
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
