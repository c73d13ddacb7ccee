package service

import (
	"bytes"
	"context"
	"sort"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/metrics"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLine is a checkout line: either a TrackedLine, which settles stock
// already deducted during the session, or a NewLine, which is deducted now.
type OrderLine interface {
	orderLine()
}

// TrackedLine settles one of the session's tracked items. When
// TrackedItemID is uuid.Nil the tracked row is looked up by ItemID.
type TrackedLine struct {
	TrackedItemID uuid.UUID
	ItemID        uuid.UUID
	Quantity      int
	UnitPrice     decimal.Decimal
}

// NewLine sells an item that was not tracked.
type NewLine struct {
	ItemID    uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

func (TrackedLine) orderLine() {}
func (NewLine) orderLine()     {}

type OrderInput struct {
	CompanyID     *uuid.UUID
	SessionID     *uuid.UUID
	PaymentMethod string
	PaymentStatus string
	Lines         []OrderLine
}

// OrderService assembles checkouts into immutable POS orders.
type OrderService interface {
	Create(ctx context.Context, actor tenant.Actor, in OrderInput) (*model.PosOrder, error)
	Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.PosOrder, error)
	List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.OrderFilter) ([]model.PosOrder, int64, error)
	UpdatePayment(ctx context.Context, actor tenant.Actor, id uuid.UUID, method, status *string) (*model.PosOrder, error)
	// Delete voids an order and returns its new-line stock.
	Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error
}

type orderService struct {
	orders    repository.OrderRepository
	sessions  repository.SessionRepository
	inventory repository.InventoryRepository
	ledger    *stockLedger
	notifier  StockNotifier
	now       Clock
}

func NewOrderService(
	orders repository.OrderRepository,
	sessions repository.SessionRepository,
	inventory repository.InventoryRepository,
	notifier StockNotifier,
	now Clock,
) OrderService {
	if now == nil {
		now = utcNow
	}
	return &orderService{
		orders:    orders,
		sessions:  sessions,
		inventory: inventory,
		ledger:    &stockLedger{repo: inventory, now: now},
		notifier:  notifierOrNoop(notifier),
		now:       now,
	}
}

var (
	paymentMethods  = map[string]bool{model.PaymentCash: true, model.PaymentQR: true, model.PaymentCreditCard: true}
	paymentStatuses = map[string]bool{model.PaymentPaid: true, model.PaymentUnpaid: true}
)

func lineAmount(qty int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

func validateLine(qty int, price decimal.Decimal) error {
	if qty <= 0 {
		return apierror.Validationf("quantity must be a positive integer")
	}
	if price.IsNegative() {
		return apierror.Validationf("unitPrice must not be negative")
	}
	return nil
}

func uuidLess(a, b uuid.UUID) bool { return bytes.Compare(a[:], b[:]) < 0 }

// ── Create ───────────────────────────────────────────────────────────────────

func (s *orderService) Create(ctx context.Context, actor tenant.Actor, in OrderInput) (*model.PosOrder, error) {
	if !paymentMethods[in.PaymentMethod] {
		return nil, apierror.Validationf("unknown payment method %q", in.PaymentMethod)
	}
	if !paymentStatuses[in.PaymentStatus] {
		return nil, apierror.Validationf("unknown payment status %q", in.PaymentStatus)
	}
	companyID, err := actor.ScopeCompany(in.CompanyID)
	if err != nil {
		return nil, err
	}

	var (
		trackedLines []TrackedLine
		newLines     []NewLine
	)
	for _, l := range in.Lines {
		switch v := l.(type) {
		case TrackedLine:
			if err := validateLine(v.Quantity, v.UnitPrice); err != nil {
				return nil, err
			}
			trackedLines = append(trackedLines, v)
		case NewLine:
			if err := validateLine(v.Quantity, v.UnitPrice); err != nil {
				return nil, err
			}
			newLines = append(newLines, v)
		}
	}
	if len(trackedLines) > 0 && in.SessionID == nil {
		return nil, apierror.Validationf("tracked lines require a tableSessionId")
	}
	sort.SliceStable(newLines, func(i, j int) bool { return uuidLess(newLines[i].ItemID, newLines[j].ItemID) })

	order := &model.PosOrder{
		ID:             uuid.New(),
		CompanyID:      companyID,
		TableSessionID: in.SessionID,
		StaffID:        actor.UserID,
		Amount:         decimal.Zero,
		PaymentMethod:  in.PaymentMethod,
		PaymentStatus:  in.PaymentStatus,
		CreatedAt:      s.now(),
	}

	var events []worker.StockEvent
	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		var session *model.TableSession
		if in.SessionID != nil {
			found, err := s.sessions.FindByIDForUpdateTx(tx, *in.SessionID)
			if err != nil {
				return notFound(err, "session")
			}
			if found.CompanyID != companyID {
				return apierror.NotFound("session")
			}
			session = found
		}

		settled, err := s.settleTracked(tx, session, trackedLines)
		if err != nil {
			return err
		}
		order.Items = append(order.Items, settled...)

		for _, l := range newLines {
			_, ev, err := s.ledger.apply(tx, companyID, ledgerEntry{
				ItemID:    l.ItemID,
				Type:      model.MovementSale,
				Quantity:  l.Quantity,
				Reference: orderRef(order.ID),
				CreatedBy: &actor.UserID,
			})
			if err != nil {
				return err
			}
			events = append(events, ev)
			order.Items = append(order.Items, model.PosOrderItem{
				ItemID:    l.ItemID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}

		for _, it := range order.Items {
			order.Amount = order.Amount.Add(lineAmount(it.Quantity, it.UnitPrice))
		}
		if len(order.Items) == 0 {
			if session == nil || session.TotalCost == nil || !session.TotalCost.IsPositive() {
				return apierror.Validationf("nothing to charge")
			}
			billed, err := s.orders.HasTimeOnlyOrderTx(tx, session.ID)
			if err != nil {
				return err
			}
			if billed {
				return apierror.Conflictf("session time is already billed by an order")
			}
		}

		if err := s.orders.CreateTx(tx, order); err != nil {
			if isDuplicate(err) {
				return apierror.Conflictf("tracked item is already settled by an order")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishStock(ctx, s.notifier, events)
	metrics.OrdersCreatedTotal.WithLabelValues(order.PaymentMethod).Inc()

	log.Info().
		Str("order_id", order.ID.String()).
		Str("amount", order.Amount.StringFixed(2)).
		Int("lines", len(order.Items)).
		Str("payment_status", order.PaymentStatus).
		Msg("order created")
	return s.orders.FindByID(ctx, order.ID)
}

// settleTracked resolves tracked lines against the session's tracked items.
// Each tracked item is settled once and in full.
func (s *orderService) settleTracked(tx *gorm.DB, session *model.TableSession, lines []TrackedLine) ([]model.PosOrderItem, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	resolved := make([]*model.TrackedItem, len(lines))
	for i, l := range lines {
		var (
			tracked *model.TrackedItem
			err     error
		)
		if l.TrackedItemID != uuid.Nil {
			tracked, err = s.sessions.FindTrackedForUpdateTx(tx, l.TrackedItemID)
			if err != nil {
				return nil, notFound(err, "tracked item")
			}
		} else {
			tracked, err = s.sessions.FindOpenTrackedTx(tx, session.ID, l.ItemID)
			if err != nil {
				return nil, err
			}
			if tracked == nil {
				return nil, apierror.Validationf("item %s has no unsettled tracked quantity in this session", l.ItemID)
			}
		}
		if tracked.TableSessionID != session.ID {
			return nil, apierror.Validationf("tracked item %s belongs to another session", tracked.ID)
		}
		resolved[i] = tracked
	}

	seen := make(map[uuid.UUID]bool, len(lines))
	out := make([]model.PosOrderItem, 0, len(lines))
	for i, l := range lines {
		tracked := resolved[i]
		if seen[tracked.ID] {
			return nil, apierror.Validationf("tracked item %s appears twice", tracked.ID)
		}
		seen[tracked.ID] = true

		if l.ItemID != uuid.Nil && l.ItemID != tracked.ItemID {
			return nil, apierror.Validationf("tracked item %s is for another item", tracked.ID)
		}
		if l.Quantity != tracked.Quantity {
			return nil, apierror.Validationf("tracked quantity is %d, order line has %d", tracked.Quantity, l.Quantity)
		}
		done, err := s.sessions.TrackedSettledTx(tx, tracked.ID)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, apierror.Conflictf("tracked item is already settled by an order")
		}

		id := tracked.ID
		out = append(out, model.PosOrderItem{
			ItemID:        tracked.ItemID,
			TrackedItemID: &id,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
		})
	}
	return out, nil
}

// ── Read / update ────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.PosOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if err := actor.Owns(order.CompanyID, "order"); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.OrderFilter) ([]model.PosOrder, int64, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, 0, err
	}
	filter.CompanyID = scoped
	return s.orders.List(ctx, filter)
}

// UpdatePayment changes only the supplied payment fields under a row lock.
func (s *orderService) UpdatePayment(ctx context.Context, actor tenant.Actor, id uuid.UUID, method, status *string) (*model.PosOrder, error) {
	if method == nil && status == nil {
		return nil, apierror.Validationf("paymentMethod or paymentStatus is required")
	}
	fields := make(map[string]any, 2)
	if method != nil {
		if !paymentMethods[*method] {
			return nil, apierror.Validationf("unknown payment method %q", *method)
		}
		fields["payment_method"] = *method
	}
	if status != nil {
		if !paymentStatuses[*status] {
			return nil, apierror.Validationf("unknown payment status %q", *status)
		}
		fields["payment_status"] = *status
	}

	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if err := actor.Owns(order.CompanyID, "order"); err != nil {
			return err
		}
		return s.orders.UpdatePaymentTx(tx, id, fields)
	})
	if err != nil {
		return nil, err
	}
	return s.orders.FindByID(ctx, id)
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *orderService) Delete(ctx context.Context, actor tenant.Actor, id uuid.UUID) error {
	var events []worker.StockEvent
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if err := actor.Owns(order.CompanyID, "order"); err != nil {
			return err
		}

		lines := append([]model.PosOrderItem(nil), order.Items...)
		sort.SliceStable(lines, func(i, j int) bool { return uuidLess(lines[i].ItemID, lines[j].ItemID) })
		for _, it := range lines {
			// Tracked lines belong to the session's tab; deleting the order
			// only releases them for settlement again.
			if it.IsTracked() {
				continue
			}
			_, ev, err := s.ledger.apply(tx, order.CompanyID, ledgerEntry{
				ItemID:    it.ItemID,
				Type:      model.MovementReturn,
				Quantity:  it.Quantity,
				Reason:    strPtr("order deleted"),
				Reference: orderRef(order.ID),
				CreatedBy: &actor.UserID,
			})
			if err != nil {
				return err
			}
			events = append(events, ev)
		}
		return s.orders.DeleteTx(tx, order.ID)
	})
	if err != nil {
		return err
	}
	publishStock(ctx, s.notifier, events)

	log.Info().
		Str("order_id", id.String()).
		Int("restored_lines", len(events)).
		Msg("order deleted")
	return nil
}
