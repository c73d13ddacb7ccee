package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

type ExpenseRequest struct {
	CompanyID   *string         `json:"companyId"   validate:"omitempty,uuid"`
	Category    string          `json:"category"    validate:"required,oneof=STAFF UTILITIES MAINTENANCE SUPPLIES RENT INSURANCE MARKETING OTHER"`
	Description string          `json:"description" validate:"required,min=2,max=255"`
	Amount      decimal.Decimal `json:"amount"      validate:"gt=0"`
	ExpenseDate time.Time       `json:"expenseDate" validate:"required"`
	Notes       *string         `json:"notes"       validate:"omitempty,max=1000"`
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"companyId"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate time.Time       `json:"expenseDate"`
	Notes       *string         `json:"notes"`
	CreatedBy   string          `json:"createdBy"`
}

func NewExpenseResponse(e *model.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID.String(),
		CompanyID:   e.CompanyID.String(),
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
		ExpenseDate: e.ExpenseDate,
		Notes:       e.Notes,
		CreatedBy:   e.CreatedBy.String(),
	}
}
