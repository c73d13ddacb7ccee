package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportQuery selects the company, report type and dates. Dates are either
// YYYY-MM-DD (interpreted in the company timezone) or RFC3339 instants.
type ReportQuery struct {
	CompanyID  *string `form:"companyId"  json:"companyId"  validate:"omitempty,uuid"`
	ReportType string  `form:"reportType" json:"reportType" validate:"required,oneof=DAILY CUSTOM"`
	StartDate  string  `form:"startDate"  json:"startDate"  validate:"required"`
	EndDate    string  `form:"endDate"    json:"endDate"`
}

type GenerateReportRequest struct {
	ReportQuery
	Name string `json:"name" validate:"required,min=1,max=120"`
}

type WindowResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type IncomeResponse struct {
	Sales     decimal.Decimal `json:"sales"`
	TableRent decimal.Decimal `json:"tableRent"`
	Other     decimal.Decimal `json:"other"`
	Total     decimal.Decimal `json:"total"`
}

type ExpenseBreakdownResponse struct {
	Inventory   decimal.Decimal `json:"inventoryCost"`
	Maintenance decimal.Decimal `json:"maintenanceCost"`
	Staff       decimal.Decimal `json:"staffCost"`
	Utilities   decimal.Decimal `json:"utilityCost"`
	Other       decimal.Decimal `json:"otherExpenses"`
	Total       decimal.Decimal `json:"total"`
}

type ReportResponse struct {
	ID            *string                  `json:"id,omitempty"`
	Name          string                   `json:"name,omitempty"`
	CompanyID     string                   `json:"companyId"`
	ReportType    string                   `json:"reportType"`
	IncomeWindow  WindowResponse           `json:"incomeWindow"`
	ExpenseWindow WindowResponse           `json:"expenseWindow"`
	Income        IncomeResponse           `json:"income"`
	Expense       ExpenseBreakdownResponse `json:"expense"`
	NetProfit     decimal.Decimal          `json:"netProfit"`
	CreatedAt     *time.Time               `json:"createdAt,omitempty"`
}

// NewReportResponse maps a report row. Live (unsaved) reports have a zero ID.
func NewReportResponse(r *model.FinancialReport) ReportResponse {
	resp := ReportResponse{
		Name:          r.Name,
		CompanyID:     r.CompanyID.String(),
		ReportType:    r.ReportType,
		IncomeWindow:  WindowResponse{From: r.IncomeFrom, To: r.IncomeTo},
		ExpenseWindow: WindowResponse{From: r.ExpenseFrom, To: r.ExpenseTo},
		Income: IncomeResponse{
			Sales:     r.SalesIncome,
			TableRent: r.TableRentIncome,
			Other:     r.OtherIncome,
			Total:     r.TotalIncome,
		},
		Expense: ExpenseBreakdownResponse{
			Inventory:   r.InventoryCost,
			Maintenance: r.MaintenanceCost,
			Staff:       r.StaffCost,
			Utilities:   r.UtilityCost,
			Other:       r.OtherExpenses,
			Total:       r.TotalExpense,
		},
		NetProfit: r.NetProfit,
	}
	if r.ID != uuid.Nil {
		id := r.ID.String()
		resp.ID = &id
		created := r.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
