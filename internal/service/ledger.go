package service

import (
	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/metrics"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ledgerEntry is one movement to apply. Quantity is as recorded: positive
// for every type except ADJUSTMENT, whose sign is the correction direction.
type ledgerEntry struct {
	ItemID    uuid.UUID
	Type      string
	Quantity  int
	CostPrice *decimal.Decimal
	Reason    *string
	Reference *string
	CreatedBy *uuid.UUID
}

// signedDelta maps a movement to its effect on on-hand quantity.
// PURCHASE/RETURN add, SALE/TRANSFER subtract, ADJUSTMENT is a signed delta.
func signedDelta(movementType string, quantity int) (int, error) {
	switch movementType {
	case model.MovementPurchase, model.MovementReturn:
		if quantity <= 0 {
			return 0, apierror.Validationf("%s quantity must be a positive integer", movementType)
		}
		return quantity, nil
	case model.MovementSale, model.MovementTransfer:
		if quantity <= 0 {
			return 0, apierror.Validationf("%s quantity must be a positive integer", movementType)
		}
		return -quantity, nil
	case model.MovementAdjustment:
		if quantity == 0 {
			return 0, apierror.Validationf("ADJUSTMENT quantity must be non-zero")
		}
		return quantity, nil
	default:
		return 0, apierror.Validationf("unknown movement type %q", movementType)
	}
}

// stockLedger applies movements inside a caller-owned transaction. The item
// row is locked, checked and updated in one step so concurrent deductions of
// the same item serialize and can never overdraw it.
type stockLedger struct {
	repo repository.InventoryRepository
	now  Clock
}

// apply records e against an item of companyID and returns the movement and
// the event to publish once the transaction commits.
func (l *stockLedger) apply(tx *gorm.DB, companyID uuid.UUID, e ledgerEntry) (*model.StockMovement, worker.StockEvent, error) {
	delta, err := signedDelta(e.Type, e.Quantity)
	if err != nil {
		return nil, worker.StockEvent{}, err
	}

	item, err := l.repo.FindItemForUpdateTx(tx, e.ItemID)
	if err != nil {
		return nil, worker.StockEvent{}, notFound(err, "inventory item")
	}
	if item.CompanyID != companyID {
		return nil, worker.StockEvent{}, apierror.NotFound("inventory item")
	}
	if delta < 0 && e.Type != model.MovementAdjustment && !item.Active {
		return nil, worker.StockEvent{}, apierror.Validationf("%s is inactive", item.Name)
	}

	after := item.Quantity + delta
	if after < 0 {
		metrics.InsufficientStockTotal.Inc()
		return nil, worker.StockEvent{}, apierror.InsufficientStock(item.Name, item.Quantity)
	}
	ok, err := l.repo.ApplyDeltaTx(tx, item.ID, delta)
	if err != nil {
		return nil, worker.StockEvent{}, err
	}
	if !ok {
		// Only reachable without row locks; the guarded UPDATE still refused.
		metrics.InsufficientStockTotal.Inc()
		return nil, worker.StockEvent{}, apierror.InsufficientStock(item.Name, item.Quantity)
	}

	now := l.now()
	mv := &model.StockMovement{
		ItemID:         item.ID,
		CompanyID:      item.CompanyID,
		Type:           e.Type,
		Quantity:       e.Quantity,
		Delta:          delta,
		QuantityBefore: item.Quantity,
		QuantityAfter:  after,
		CostPrice:      e.CostPrice,
		Reason:         e.Reason,
		Reference:      e.Reference,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      now,
	}
	if err := l.repo.CreateMovementTx(tx, mv); err != nil {
		return nil, worker.StockEvent{}, err
	}

	ev := worker.StockEvent{
		CompanyID:         item.CompanyID,
		ItemID:            item.ID,
		ItemName:          item.Name,
		MovementType:      e.Type,
		Delta:             delta,
		QuantityBefore:    item.Quantity,
		Quantity:          after,
		CriticalThreshold: item.CriticalThreshold,
		At:                now,
	}
	return mv, ev, nil
}

func strPtr(s string) *string { return &s }

func sessionRef(id uuid.UUID) *string { return strPtr("session:" + id.String()) }

func orderRef(id uuid.UUID) *string { return strPtr("order:" + id.String()) }
