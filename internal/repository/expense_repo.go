package repository

import (
	"context"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExpenseFilter defines filters for listing expenses.
type ExpenseFilter struct {
	CompanyID uuid.UUID
	Category  string
	From      *time.Time
	To        *time.Time
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error)
	List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error)
	Update(ctx context.Context, e *model.Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Expense, error) {
	var e model.Expense
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *expenseRepo) List(ctx context.Context, filter ExpenseFilter) ([]model.Expense, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", filter.CompanyID)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.From != nil {
		q = q.Where("expense_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("expense_date < ?", filter.To.UTC())
	}
	var out []model.Expense
	err := withReadRetry(ctx, func() error {
		return q.Order("expense_date DESC").Find(&out).Error
	})
	return out, err
}

func (r *expenseRepo) Update(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Model(e).
		Select("category", "description", "amount", "expense_date", "notes").
		Updates(e).Error
}

func (r *expenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Expense{}).Error
}
