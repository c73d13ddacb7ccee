package service

import (
	"testing"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedDelta(t *testing.T) {
	cases := []struct {
		typ     string
		qty     int
		want    int
		wantErr bool
	}{
		{model.MovementPurchase, 5, 5, false},
		{model.MovementReturn, 2, 2, false},
		{model.MovementSale, 3, -3, false},
		{model.MovementTransfer, 1, -1, false},
		{model.MovementAdjustment, -4, -4, false},
		{model.MovementAdjustment, 4, 4, false},
		{model.MovementAdjustment, 0, 0, true},
		{model.MovementSale, 0, 0, true},
		{model.MovementPurchase, -1, 0, true},
		{"GIFT", 1, 0, true},
	}
	for _, tc := range cases {
		got, err := signedDelta(tc.typ, tc.qty)
		if tc.wantErr {
			assert.ErrorIs(t, err, apierror.ErrValidation, "%s %d", tc.typ, tc.qty)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s %d", tc.typ, tc.qty)
	}
}

func TestCreateItem_InitialQuantityGoesThroughLedger(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("Cola", 12, "2.50")

	assert.Equal(t, 12, it.Quantity)
	movements, total, err := f.inventory.ListMovements(f.ctx, f.admin, nil, repository.MovementFilter{ItemID: &it.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, model.MovementPurchase, movements[0].Type)
	assert.Equal(t, 12, movements[0].Delta)
	f.requireLedgerConsistent(it.ID)
}

func TestRecordMovement_AppliesSignedEffects(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("Chips", 10, "1.00")

	steps := []struct {
		typ  string
		qty  int
		want int
	}{
		{model.MovementSale, 3, 7},
		{model.MovementReturn, 1, 8},
		{model.MovementTransfer, 2, 6},
		{model.MovementAdjustment, -1, 5},
		{model.MovementPurchase, 5, 10},
	}
	for _, s := range steps {
		mv, err := f.inventory.RecordMovement(f.ctx, f.admin, dto.StockMovementRequest{
			ItemID: it.ID.String(), Type: s.typ, Quantity: s.qty,
		})
		require.NoError(t, err, s.typ)
		assert.Equal(t, s.want, mv.QuantityAfter, s.typ)
		assert.Equal(t, s.want, f.quantity(it.ID), s.typ)
	}
	f.requireLedgerConsistent(it.ID)
}

func TestRecordMovement_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("Beer", 2, "3.00")

	_, err := f.inventory.RecordMovement(f.ctx, f.admin, dto.StockMovementRequest{
		ItemID: it.ID.String(), Type: model.MovementSale, Quantity: 3,
	})
	require.ErrorIs(t, err, apierror.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "2 available")
	n, ok := apierror.AvailableQuantity(err)
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, err = f.inventory.RecordMovement(f.ctx, f.admin, dto.StockMovementRequest{
		ItemID: it.ID.String(), Type: model.MovementAdjustment, Quantity: -5,
	})
	require.ErrorIs(t, err, apierror.ErrInsufficientStock)

	assert.Equal(t, 2, f.quantity(it.ID))
	_, total, err := f.inventory.ListMovements(f.ctx, f.admin, nil, repository.MovementFilter{ItemID: &it.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "only the opening purchase is recorded")
	f.requireLedgerConsistent(it.ID)
}

func TestRecordMovement_RejectsSaleOfInactiveItem(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("Old cigar", 4, "9.00")
	inactive := false
	_, err := f.inventory.UpdateItem(f.ctx, f.admin, it.ID, dto.UpdateItemRequest{Active: &inactive})
	require.NoError(t, err)

	_, err = f.inventory.RecordMovement(f.ctx, f.admin, dto.StockMovementRequest{
		ItemID: it.ID.String(), Type: model.MovementSale, Quantity: 1,
	})
	assert.ErrorIs(t, err, apierror.ErrValidation)

	// Write-offs stay possible.
	_, err = f.inventory.RecordMovement(f.ctx, f.admin, dto.StockMovementRequest{
		ItemID: it.ID.String(), Type: model.MovementAdjustment, Quantity: -4,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.quantity(it.ID))
}

func TestInventory_TenantScope(t *testing.T) {
	f := newFixture(t)
	it := f.newItem("Water", 3, "1.00")

	other := f.newCompany("Other Hall")
	outsider := tenant.Actor{UserID: uuid.New(), Role: model.RoleAdmin, CompanyID: other.ID}

	_, err := f.inventory.GetItem(f.ctx, outsider, it.ID)
	assert.ErrorIs(t, err, apierror.ErrNotFound)

	_, err = f.inventory.RecordMovement(f.ctx, outsider, dto.StockMovementRequest{
		ItemID: it.ID.String(), Type: model.MovementSale, Quantity: 1,
	})
	assert.ErrorIs(t, err, apierror.ErrNotFound)
	assert.Equal(t, 3, f.quantity(it.ID))

	_, err = f.inventory.ListItems(f.ctx, outsider, &f.company.ID, repository.ItemFilter{})
	assert.ErrorIs(t, err, apierror.ErrForbidden)

	root := tenant.Actor{UserID: uuid.New(), Role: model.RoleSuperAdmin, CompanyID: other.ID}
	items, err := f.inventory.ListItems(f.ctx, root, &f.company.ID, repository.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestLowStock(t *testing.T) {
	f := newFixture(t)
	low := f.newItem("Limes", 1, "0.50")
	f.newItem("Ice", 40, "0.10")

	items, err := f.inventory.LowStock(f.ctx, f.admin, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ID)
}
