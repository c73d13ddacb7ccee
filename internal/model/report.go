package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ReportDaily  = "DAILY"
	ReportCustom = "CUSTOM"
)

// FinancialReport is a persisted snapshot of a financial aggregation.
// Income and expense windows are stored because they can differ for the same
// requested dates when the company uses business hours.
type FinancialReport struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	ReportType  string    `gorm:"type:varchar(10);not null"`
	GeneratedBy uuid.UUID `gorm:"type:uuid;not null"`

	IncomeFrom  time.Time `gorm:"not null"`
	IncomeTo    time.Time `gorm:"not null"`
	ExpenseFrom time.Time `gorm:"not null"`
	ExpenseTo   time.Time `gorm:"not null"`

	SalesIncome     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TableRentIncome decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	OtherIncome     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalIncome     decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	InventoryCost   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	MaintenanceCost decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	StaffCost       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	UtilityCost     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	OtherExpenses   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TotalExpense    decimal.Decimal `gorm:"type:numeric(14,2);not null"`

	NetProfit decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	CreatedAt time.Time       `gorm:"index"`
}
