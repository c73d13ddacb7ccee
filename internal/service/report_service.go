package service

import (
	"context"
	"strings"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportQuery selects what a financial report covers.
type ReportQuery struct {
	CompanyID  *uuid.UUID
	ReportType string
	StartDate  string
	EndDate    string
}

// ReportService computes income, expense and profit for a company. Live
// reads and generated reports share the same aggregation.
type ReportService interface {
	// Data computes a report without saving it; the returned row has no ID.
	Data(ctx context.Context, actor tenant.Actor, q ReportQuery) (*model.FinancialReport, error)
	Generate(ctx context.Context, actor tenant.Actor, q ReportQuery, name string) (*model.FinancialReport, error)
	Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.FinancialReport, error)
	List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.FinancialReport, error)
}

type reportService struct {
	reports   repository.ReportRepository
	companies repository.CompanyRepository
}

func NewReportService(reports repository.ReportRepository, companies repository.CompanyRepository) ReportService {
	return &reportService{reports: reports, companies: companies}
}

func (s *reportService) Data(ctx context.Context, actor tenant.Actor, q ReportQuery) (*model.FinancialReport, error) {
	return s.compute(ctx, actor, q)
}

func (s *reportService) Generate(ctx context.Context, actor tenant.Actor, q ReportQuery, name string) (*model.FinancialReport, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierror.Validationf("name is required")
	}
	rep, err := s.compute(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	rep.Name = name
	rep.GeneratedBy = actor.UserID
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	log.Info().
		Str("report_id", rep.ID.String()).
		Str("company_id", rep.CompanyID.String()).
		Str("type", rep.ReportType).
		Str("net_profit", rep.NetProfit.StringFixed(2)).
		Msg("report generated")
	return rep, nil
}

func (s *reportService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.FinancialReport, error) {
	rep, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "report")
	}
	if err := actor.Owns(rep.CompanyID, "report"); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *reportService) List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.FinancialReport, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	return s.reports.List(ctx, scoped)
}

func (s *reportService) compute(ctx context.Context, actor tenant.Actor, q ReportQuery) (*model.FinancialReport, error) {
	companyID, err := actor.ScopeCompany(q.CompanyID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}
	income, expense, err := ReportWindows(company, q.ReportType, q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}
	rep, err := s.aggregate(ctx, company.ID, income, expense)
	if err != nil {
		return nil, err
	}
	rep.ReportType = q.ReportType
	return rep, nil
}

func sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// aggregate sums income over the income window and expenses over the
// expense window.
func (s *reportService) aggregate(ctx context.Context, companyID uuid.UUID, income, expense Window) (*model.FinancialReport, error) {
	rep := &model.FinancialReport{
		CompanyID:   companyID,
		IncomeFrom:  income.From.UTC(),
		IncomeTo:    income.To.UTC(),
		ExpenseFrom: expense.From.UTC(),
		ExpenseTo:   expense.To.UTC(),
		OtherIncome: decimal.Zero,
	}

	// ── Income ───────────────────────────────────────────────────────────────
	orders, err := s.reports.PaidOrderAmounts(ctx, companyID, income.From, income.To)
	if err != nil {
		return nil, err
	}
	sessions, err := s.reports.CompletedSessionCosts(ctx, companyID, income.From, income.To)
	if err != nil {
		return nil, err
	}
	rep.SalesIncome = sum(orders)
	rep.TableRentIncome = sum(sessions)
	rep.TotalIncome = rep.SalesIncome.Add(rep.TableRentIncome).Add(rep.OtherIncome)

	// ── Expense ──────────────────────────────────────────────────────────────
	purchases, err := s.reports.Purchases(ctx, companyID, expense.From, expense.To)
	if err != nil {
		return nil, err
	}
	maintenance, err := s.reports.MaintenanceCosts(ctx, companyID, expense.From, expense.To)
	if err != nil {
		return nil, err
	}
	expenses, err := s.reports.Expenses(ctx, companyID, expense.From, expense.To)
	if err != nil {
		return nil, err
	}

	rep.InventoryCost = decimal.Zero
	rep.OtherExpenses = decimal.Zero
	for _, p := range purchases {
		if !p.CostPrice.Valid {
			continue
		}
		cost := p.CostPrice.Decimal.Mul(decimal.NewFromInt(int64(p.Quantity)))
		if p.ItemType == model.ItemTypeInternalUse {
			rep.OtherExpenses = rep.OtherExpenses.Add(cost)
		} else {
			rep.InventoryCost = rep.InventoryCost.Add(cost)
		}
	}

	rep.MaintenanceCost = sum(maintenance)
	rep.StaffCost = decimal.Zero
	rep.UtilityCost = decimal.Zero
	for _, e := range expenses {
		switch e.Category {
		case model.ExpenseMaintenance:
			rep.MaintenanceCost = rep.MaintenanceCost.Add(e.Amount)
		case model.ExpenseStaff:
			rep.StaffCost = rep.StaffCost.Add(e.Amount)
		case model.ExpenseUtilities:
			rep.UtilityCost = rep.UtilityCost.Add(e.Amount)
		default:
			rep.OtherExpenses = rep.OtherExpenses.Add(e.Amount)
		}
	}

	rep.TotalExpense = rep.InventoryCost.
		Add(rep.MaintenanceCost).
		Add(rep.StaffCost).
		Add(rep.UtilityCost).
		Add(rep.OtherExpenses)
	rep.NetProfit = rep.TotalIncome.Sub(rep.TotalExpense)
	return rep, nil
}
