package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ExpenseStaff       = "STAFF"
	ExpenseUtilities   = "UTILITIES"
	ExpenseMaintenance = "MAINTENANCE"
	ExpenseSupplies    = "SUPPLIES"
	ExpenseRent        = "RENT"
	ExpenseInsurance   = "INSURANCE"
	ExpenseMarketing   = "MARKETING"
	ExpenseOther       = "OTHER"
)

// ExpenseCategories is the closed set of accepted categories.
var ExpenseCategories = []string{
	ExpenseStaff, ExpenseUtilities, ExpenseMaintenance, ExpenseSupplies,
	ExpenseRent, ExpenseInsurance, ExpenseMarketing, ExpenseOther,
}

type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Category    string          `gorm:"type:varchar(20);not null"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ExpenseDate time.Time       `gorm:"not null;index"`
	Notes       *string
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
