package repository

import (
	"context"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseRow is one PURCHASE movement with the type of the purchased item.
type PurchaseRow struct {
	Quantity  int
	CostPrice decimal.NullDecimal
	ItemType  string
}

// ExpenseRow is the category and amount of one expense.
type ExpenseRow struct {
	Category string
	Amount   decimal.Decimal
}

// ReportRepository reads the raw rows behind a financial report. Every window
// is half-open: from <= t < to. Sums are left to the caller so money is added
// with decimal arithmetic, never in the database as floats.
type ReportRepository interface {
	PaidOrderAmounts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error)
	CompletedSessionCosts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error)
	Purchases(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]PurchaseRow, error)
	MaintenanceCosts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error)
	Expenses(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]ExpenseRow, error)

	Create(ctx context.Context, r *model.FinancialReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialReport, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.FinancialReport, error)
}

type reportRepo struct{ db *gorm.DB }

type amountRow struct {
	Amount decimal.Decimal
}

func amounts(rows []amountRow) []decimal.Decimal {
	out := make([]decimal.Decimal, len(rows))
	for i, r := range rows {
		out[i] = r.Amount
	}
	return out
}

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) PaidOrderAmounts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error) {
	var rows []amountRow
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.PosOrder{}).
			Select("amount").
			Where("company_id = ? AND payment_status = ? AND created_at >= ? AND created_at < ?",
				companyID, model.PaymentPaid, from.UTC(), to.UTC()).
			Scan(&rows).Error
	})
	return amounts(rows), err
}

func (r *reportRepo) CompletedSessionCosts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error) {
	var rows []amountRow
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.TableSession{}).
			Select("total_cost AS amount").
			Where("company_id = ? AND status = ? AND total_cost IS NOT NULL AND started_at >= ? AND started_at < ?",
				companyID, model.SessionCompleted, from.UTC(), to.UTC()).
			Scan(&rows).Error
	})
	return amounts(rows), err
}

func (r *reportRepo) Purchases(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]PurchaseRow, error) {
	var out []PurchaseRow
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Table("stock_movements AS sm").
			Select("sm.quantity AS quantity, sm.cost_price AS cost_price, ii.item_type AS item_type").
			Joins("JOIN inventory_items ii ON ii.id = sm.item_id").
			Where("sm.company_id = ? AND sm.type = ? AND sm.created_at >= ? AND sm.created_at < ?",
				companyID, model.MovementPurchase, from.UTC(), to.UTC()).
			Scan(&out).Error
	})
	return out, err
}

func (r *reportRepo) MaintenanceCosts(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]decimal.Decimal, error) {
	var rows []amountRow
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.TableMaintenance{}).
			Select("cost AS amount").
			Where("company_id = ? AND performed_at >= ? AND performed_at < ?", companyID, from.UTC(), to.UTC()).
			Scan(&rows).Error
	})
	return amounts(rows), err
}

func (r *reportRepo) Expenses(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]ExpenseRow, error) {
	var out []ExpenseRow
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.Expense{}).
			Select("category, amount").
			Where("company_id = ? AND expense_date >= ? AND expense_date < ?", companyID, from.UTC(), to.UTC()).
			Scan(&out).Error
	})
	return out, err
}

func (r *reportRepo) Create(ctx context.Context, rep *model.FinancialReport) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FinancialReport, error) {
	var rep model.FinancialReport
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&rep).Error
	})
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.FinancialReport, error) {
	var out []model.FinancialReport
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&out).Error
	})
	return out, err
}
