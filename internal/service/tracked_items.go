package service

import (
	"bytes"
	"context"
	"sort"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// lockSession locks a session row of the actor's scope.
func (s *sessionService) lockSession(tx *gorm.DB, actor tenant.Actor, id uuid.UUID) (*model.TableSession, error) {
	session, err := s.sessions.FindByIDForUpdateTx(tx, id)
	if err != nil {
		return nil, notFound(err, "session")
	}
	if err := actor.Owns(session.CompanyID, "session"); err != nil {
		return nil, err
	}
	return session, nil
}

func sortByItemID(lines []TrackLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ItemID[:], lines[j].ItemID[:]) < 0
	})
}

// TrackItems deducts every line from stock and merges it into the session's
// unsettled tracked row for the item, opening a new row when an order has
// already billed the previous one. The batch is all-or-nothing.
func (s *sessionService) TrackItems(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID, lines []TrackLine) ([]model.TrackedItem, error) {
	if len(lines) == 0 {
		return nil, apierror.Validationf("at least one item is required")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, apierror.Validationf("quantity must be a positive integer")
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, apierror.Validationf("unitPrice must not be negative")
		}
	}
	ordered := append([]TrackLine(nil), lines...)
	sortByItemID(ordered)

	var (
		out    []model.TrackedItem
		events []worker.StockEvent
	)
	err := runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		session, err := s.lockSession(tx, actor, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionActive {
			return apierror.Conflictf("session is %s, not ACTIVE", session.Status)
		}

		for _, l := range ordered {
			tracked, err := s.sessions.FindOpenTrackedTx(tx, session.ID, l.ItemID)
			if err != nil {
				return err
			}

			item, err := s.inventory.FindItemForUpdateTx(tx, l.ItemID)
			if err != nil {
				return notFound(err, "inventory item")
			}
			price := item.Price
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}

			_, ev, err := s.ledger.apply(tx, session.CompanyID, ledgerEntry{
				ItemID:    l.ItemID,
				Type:      model.MovementSale,
				Quantity:  l.Quantity,
				Reason:    strPtr("tracked in session"),
				Reference: sessionRef(session.ID),
				CreatedBy: &actor.UserID,
			})
			if err != nil {
				return err
			}
			events = append(events, ev)

			if tracked == nil {
				tracked = &model.TrackedItem{TableSessionID: session.ID, ItemID: l.ItemID}
			}
			tracked.Quantity += l.Quantity
			tracked.UnitPrice = price
			if err := s.sessions.SaveTrackedTx(tx, tracked); err != nil {
				return err
			}
		}

		out, err = s.sessions.ListTrackedTx(tx, session.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	publishStock(ctx, s.notifier, events)

	log.Info().
		Str("session_id", sessionID.String()).
		Int("lines", len(lines)).
		Msg("items tracked")
	return out, nil
}

func (s *sessionService) ListTracked(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID) ([]model.TrackedItem, error) {
	if _, err := s.find(ctx, actor, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.ListTracked(ctx, sessionID)
}

// UpdateTrackedQuantity applies the difference between the new and the
// tracked quantity to stock: more is a further SALE, less is a RETURN.
func (s *sessionService) UpdateTrackedQuantity(ctx context.Context, actor tenant.Actor, sessionID, trackedID uuid.UUID, quantity int) (*model.TrackedItem, error) {
	if quantity < 0 {
		return nil, apierror.Validationf("quantity must not be negative")
	}

	var (
		result *model.TrackedItem
		events []worker.StockEvent
	)
	err := runTx(ctx, s.sessions.DB(), func(tx *gorm.DB) error {
		session, err := s.lockSession(tx, actor, sessionID)
		if err != nil {
			return err
		}
		if session.Status != model.SessionActive {
			return apierror.Conflictf("session is %s, not ACTIVE", session.Status)
		}

		tracked, err := s.sessions.FindTrackedForUpdateTx(tx, trackedID)
		if err != nil {
			return notFound(err, "tracked item")
		}
		if tracked.TableSessionID != session.ID {
			return apierror.NotFound("tracked item")
		}
		settled, err := s.sessions.TrackedSettledTx(tx, tracked.ID)
		if err != nil {
			return err
		}
		if settled {
			return apierror.Conflictf("tracked item is already settled by an order")
		}

		delta := quantity - tracked.Quantity
		if delta != 0 {
			entry := ledgerEntry{
				ItemID:    tracked.ItemID,
				Type:      model.MovementSale,
				Quantity:  delta,
				Reason:    strPtr("tracked quantity increased"),
				Reference: sessionRef(session.ID),
				CreatedBy: &actor.UserID,
			}
			if delta < 0 {
				entry.Type = model.MovementReturn
				entry.Quantity = -delta
				entry.Reason = strPtr("tracked quantity decreased")
			}
			_, ev, err := s.ledger.apply(tx, session.CompanyID, entry)
			if err != nil {
				return err
			}
			events = append(events, ev)
		}

		if quantity == 0 {
			return s.sessions.DeleteTrackedTx(tx, tracked.ID)
		}
		tracked.Quantity = quantity
		if err := s.sessions.SaveTrackedTx(tx, tracked); err != nil {
			return err
		}
		result = tracked
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishStock(ctx, s.notifier, events)
	return result, nil
}

func (s *sessionService) RemoveTracked(ctx context.Context, actor tenant.Actor, sessionID, trackedID uuid.UUID) error {
	_, err := s.UpdateTrackedQuantity(ctx, actor, sessionID, trackedID, 0)
	return err
}

// Availability is the cart view for a session: an item already tracked here
// can be re-added up to on-hand plus what this session holds, since the
// tracked units were deducted already.
func (s *sessionService) Availability(ctx context.Context, actor tenant.Actor, sessionID uuid.UUID) ([]dto.AvailabilityResponse, error) {
	session, err := s.find(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}
	items, err := s.inventory.ListItems(ctx, repository.ItemFilter{CompanyID: session.CompanyID})
	if err != nil {
		return nil, err
	}

	settled, err := s.sessions.SettledTrackedIDs(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	// Billed rows are off the tab; only open rows count toward the cart.
	trackedQty := make(map[uuid.UUID]int, len(session.TrackedItems))
	for _, t := range session.TrackedItems {
		if !settled[t.ID] {
			trackedQty[t.ItemID] += t.Quantity
		}
	}

	out := make([]dto.AvailabilityResponse, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	add := func(it *model.InventoryItem) {
		seen[it.ID] = true
		tracked := trackedQty[it.ID]
		out = append(out, dto.AvailabilityResponse{
			ItemID:             it.ID.String(),
			Name:               it.Name,
			Price:              it.Price,
			OnHand:             it.Quantity,
			Tracked:            tracked,
			EffectiveAvailable: EffectiveAvailable(it.Quantity, tracked),
		})
	}
	for i := range items {
		add(&items[i])
	}
	// Tracked items that were deactivated since are still part of the tab.
	for _, t := range session.TrackedItems {
		if !seen[t.ItemID] && !settled[t.ID] && t.Item != nil {
			add(t.Item)
		}
	}
	return out, nil
}

// EffectiveAvailable is how many units of an item a session's cart may hold:
// what is on hand plus what the session already tracks.
func EffectiveAvailable(onHand, trackedInSession int) int {
	return onHand + trackedInSession
}
