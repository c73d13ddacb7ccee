package service

import (
	"testing"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) enableBusinessHours(start, end string) {
	f.t.Helper()
	_, err := f.companies.UpdateBusinessHours(f.ctx, f.admin, f.company.ID, dto.BusinessHoursRequest{
		Enabled:       true,
		Timezone:      "UTC",
		Start:         start,
		End:           end,
		OperatingDays: []int{0, 1, 2, 3, 4, 5, 6},
	})
	require.NoError(f.t, err)
}

func (f *fixture) orderAt(at time.Time, item *model.InventoryItem, price string) {
	f.t.Helper()
	f.now = at
	_, err := f.orders.Create(f.ctx, f.seller, paidCash(nil, NewLine{ItemID: item.ID, Quantity: 1, UnitPrice: dec(price)}))
	require.NoError(f.t, err)
}

func (f *fixture) expenseAt(at time.Time, category, amount string) {
	f.t.Helper()
	_, err := f.expenses.Create(f.ctx, f.admin, dto.ExpenseRequest{
		Category: category, Description: "test " + category, Amount: dec(amount), ExpenseDate: at,
	})
	require.NoError(f.t, err)
}

// Scenario D: orders bucketed by the 08:00–23:00 business day, maintenance
// expenses by the calendar day.
func TestReport_IncomeAndExpenseWindowsDiffer(t *testing.T) {
	f := newFixture(t)
	f.now = utc(2026, 3, 13, 12, 0)
	item := f.newItem("Cola", 100, "1.00")
	f.enableBusinessHours("08:00", "23:00")

	f.orderAt(utc(2026, 3, 14, 7, 30), item, "100.00")  // before opening
	f.orderAt(utc(2026, 3, 14, 10, 0), item, "7.00")    // inside
	f.orderAt(utc(2026, 3, 14, 22, 59), item, "3.00")   // inside
	f.orderAt(utc(2026, 3, 14, 23, 30), item, "200.00") // after closing

	f.expenseAt(utc(2026, 3, 14, 1, 0), model.ExpenseMaintenance, "20.00")
	f.expenseAt(time.Date(2026, 3, 14, 23, 59, 59, 999e6, time.UTC), model.ExpenseMaintenance, "5.00")
	f.expenseAt(utc(2026, 3, 15, 0, 0), model.ExpenseMaintenance, "1000.00")

	rep, err := f.reports.Data(f.ctx, f.admin, ReportQuery{ReportType: model.ReportDaily, StartDate: "2026-03-14"})
	require.NoError(t, err)

	assert.True(t, dec("10.00").Equal(rep.SalesIncome), "sales %s", rep.SalesIncome)
	assert.True(t, dec("25.00").Equal(rep.MaintenanceCost), "maintenance %s", rep.MaintenanceCost)
	assert.True(t, utc(2026, 3, 14, 8, 0).Equal(rep.IncomeFrom))
	assert.True(t, utc(2026, 3, 14, 0, 0).Equal(rep.ExpenseFrom))
}

func TestReport_Breakdown(t *testing.T) {
	f := newFixture(t)
	day := utc(2026, 3, 14, 0, 0)
	f.now = day.Add(9 * time.Hour)

	// Purchases: 10 × 1.00 opening stock of a SALE item, 4 × 2.50 of an INTERNAL_USE item.
	cola := f.newItem("Cola", 10, "2.00")
	_, err := f.inventory.CreateItem(f.ctx, f.admin, dto.CreateItemRequest{
		Name: "Chalk", ItemType: model.ItemTypeInternalUse, Price: dec("0"),
		InitialQuantity: 4, CostPrice: decPtr("2.50"),
	})
	require.NoError(t, err)

	// Income: one paid order, one unpaid order, one completed and one cancelled session.
	f.orderAt(day.Add(10*time.Hour), cola, "6.00")
	f.now = day.Add(10 * time.Hour)
	_, err = f.orders.Create(f.ctx, f.seller, OrderInput{
		PaymentMethod: model.PaymentCash, PaymentStatus: model.PaymentUnpaid,
		Lines: []OrderLine{NewLine{ItemID: cola.ID, Quantity: 1, UnitPrice: dec("50.00")}},
	})
	require.NoError(t, err)

	tbl := f.newTable("T1", decPtr("10.00"))
	s := f.startSession(tbl)
	f.advance(90 * time.Minute)
	_, err = f.sessions.End(f.ctx, f.seller, s.ID)
	require.NoError(t, err)
	c := f.startSession(tbl)
	f.advance(time.Hour)
	_, err = f.sessions.Cancel(f.ctx, f.seller, c.ID)
	require.NoError(t, err)

	_, err = f.tables.AddMaintenance(f.ctx, f.admin, tbl.ID, dto.MaintenanceRequest{
		Description: "new cloth", Cost: dec("30.00"),
	})
	require.NoError(t, err)

	f.expenseAt(day.Add(12*time.Hour), model.ExpenseStaff, "40.00")
	f.expenseAt(day.Add(12*time.Hour), model.ExpenseUtilities, "15.00")
	f.expenseAt(day.Add(12*time.Hour), model.ExpenseRent, "100.00")
	f.expenseAt(day.Add(12*time.Hour), model.ExpenseMaintenance, "5.00")

	rep, err := f.reports.Data(f.ctx, f.admin, ReportQuery{ReportType: model.ReportDaily, StartDate: "2026-03-14"})
	require.NoError(t, err)

	check := func(name, want string, got interface{ String() string }) {
		assert.Equal(t, dec(want).String(), got.String(), name)
	}
	check("sales", "6", rep.SalesIncome)
	check("table rent", "15", rep.TableRentIncome)
	check("other income", "0", rep.OtherIncome)
	check("total income", "21", rep.TotalIncome)
	check("inventory", "10", rep.InventoryCost)
	check("maintenance", "35", rep.MaintenanceCost)
	check("staff", "40", rep.StaffCost)
	check("utilities", "15", rep.UtilityCost)
	check("other", "110", rep.OtherExpenses)
	check("total expense", "210", rep.TotalExpense)
	check("net", "-189", rep.NetProfit)
}

func TestReport_GenerateMatchesLiveData(t *testing.T) {
	f := newFixture(t)
	f.now = utc(2026, 3, 14, 11, 0)
	item := f.newItem("Cola", 10, "2.00")
	f.orderAt(utc(2026, 3, 14, 12, 0), item, "9.99")
	f.expenseAt(utc(2026, 3, 14, 13, 0), model.ExpenseOther, "0.99")

	q := ReportQuery{ReportType: model.ReportCustom, StartDate: "2026-03-14", EndDate: "2026-03-14"}
	live, err := f.reports.Data(f.ctx, f.admin, q)
	require.NoError(t, err)
	saved, err := f.reports.Generate(f.ctx, f.admin, q, "Saturday")
	require.NoError(t, err)

	stored, err := f.reports.Get(f.ctx, f.admin, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Saturday", stored.Name)
	assert.True(t, live.TotalIncome.Equal(stored.TotalIncome))
	assert.True(t, live.TotalExpense.Equal(stored.TotalExpense))
	assert.True(t, live.NetProfit.Equal(stored.NetProfit))

	list, err := f.reports.List(f.ctx, f.admin, nil)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
