package service

import (
	"context"
	"testing"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/infra"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── SQLite-backed fixture ────────────────────────────────────────────────────

type fixture struct {
	t   *testing.T
	ctx context.Context
	db  *gorm.DB
	now time.Time

	company *model.Company
	admin   tenant.Actor
	seller  tenant.Actor

	companyRepo repository.CompanyRepository
	tableRepo   repository.TableRepository
	sessionRepo repository.SessionRepository
	invRepo     repository.InventoryRepository
	orderRepo   repository.OrderRepository
	expenseRepo repository.ExpenseRepository
	reportRepo  repository.ReportRepository

	inventory InventoryService
	sessions  SessionService
	orders    OrderService
	tables    TableService
	companies CompanyService
	expenses  ExpenseService
	reports   ReportService
}

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := infra.NewSQLiteDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{t: t, ctx: context.Background(), db: db, now: t0}
	f.companyRepo = repository.NewCompanyRepository(db)
	f.tableRepo = repository.NewTableRepository(db)
	f.sessionRepo = repository.NewSessionRepository(db)
	f.invRepo = repository.NewInventoryRepository(db)
	f.orderRepo = repository.NewOrderRepository(db)
	f.expenseRepo = repository.NewExpenseRepository(db)
	f.reportRepo = repository.NewReportRepository(db)

	f.inventory = NewInventoryService(f.invRepo, nil, f.clock)
	f.sessions = NewSessionService(f.sessionRepo, f.tableRepo, f.invRepo, nil, f.clock)
	f.orders = NewOrderService(f.orderRepo, f.sessionRepo, f.invRepo, nil, f.clock)
	f.tables = NewTableService(f.tableRepo, f.companyRepo, f.clock)
	f.companies = NewCompanyService(f.companyRepo)
	f.expenses = NewExpenseService(f.expenseRepo)
	f.reports = NewReportService(f.reportRepo, f.companyRepo)

	f.company = f.newCompany("Cue Club")
	f.admin = tenant.Actor{UserID: uuid.New(), Role: model.RoleAdmin, CompanyID: f.company.ID}
	f.seller = tenant.Actor{UserID: uuid.New(), Role: model.RoleSeller, CompanyID: f.company.ID}
	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func (f *fixture) newCompany(name string) *model.Company {
	f.t.Helper()
	c := &model.Company{Name: name, Timezone: "UTC", OperatingDays: "0,1,2,3,4,5,6"}
	require.NoError(f.t, f.companyRepo.Create(f.ctx, c))
	return c
}

func (f *fixture) newTable(name string, rate *decimal.Decimal) *model.Table {
	f.t.Helper()
	tbl, err := f.tables.Create(f.ctx, f.admin, dto.CreateTableRequest{Name: name, HourlyRate: rate})
	require.NoError(f.t, err)
	return tbl
}

func (f *fixture) newItem(name string, qty int, price string) *model.InventoryItem {
	f.t.Helper()
	it, err := f.inventory.CreateItem(f.ctx, f.admin, dto.CreateItemRequest{
		Name:              name,
		Price:             dec(price),
		CriticalThreshold: 1,
		InitialQuantity:   qty,
		CostPrice:         decPtr("1.00"),
	})
	require.NoError(f.t, err)
	return it
}

func (f *fixture) startSession(tbl *model.Table) *model.TableSession {
	f.t.Helper()
	s, err := f.sessions.Start(f.ctx, f.seller, StartSessionInput{TableID: tbl.ID})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) quantity(itemID uuid.UUID) int {
	f.t.Helper()
	it, err := f.invRepo.FindItemByID(f.ctx, itemID)
	require.NoError(f.t, err)
	return it.Quantity
}

// requireLedgerConsistent checks Σ signed deltas == cached quantity.
func (f *fixture) requireLedgerConsistent(itemID uuid.UUID) {
	f.t.Helper()
	res, err := f.inventory.CheckLedger(f.ctx, f.admin, itemID)
	require.NoError(f.t, err)
	require.True(f.t, res.Consistent, "ledger sum %d != quantity %d", res.LedgerSum, res.Quantity)
}
