package service

import (
	"context"
	"strings"

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

// InventoryService owns the inventory catalogue and the stock ledger.
type InventoryService interface {
	CreateItem(ctx context.Context, actor tenant.Actor, req dto.CreateItemRequest) (*model.InventoryItem, error)
	UpdateItem(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.UpdateItemRequest) (*model.InventoryItem, error)
	GetItem(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.InventoryItem, error)
	ListItems(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.ItemFilter) ([]model.InventoryItem, error)
	LowStock(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.InventoryItem, error)

	RecordMovement(ctx context.Context, actor tenant.Actor, req dto.StockMovementRequest) (*model.StockMovement, error)
	ListMovements(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.MovementFilter) ([]model.StockMovement, int64, error)
	CheckLedger(ctx context.Context, actor tenant.Actor, itemID uuid.UUID) (*dto.LedgerCheckResponse, error)

	CreateCategory(ctx context.Context, actor tenant.Actor, req dto.CategoryRequest) (*model.InventoryCategory, error)
	ListCategories(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.InventoryCategory, error)
}

type inventoryService struct {
	repo     repository.InventoryRepository
	ledger   *stockLedger
	notifier StockNotifier
}

func NewInventoryService(repo repository.InventoryRepository, notifier StockNotifier, now Clock) InventoryService {
	if now == nil {
		now = utcNow
	}
	return &inventoryService{
		repo:     repo,
		ledger:   &stockLedger{repo: repo, now: now},
		notifier: notifierOrNoop(notifier),
	}
}

func parseOptionalUUID(s *string, field string) (*uuid.UUID, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, apierror.Validationf("%s is not a valid UUID", field)
	}
	return &id, nil
}

func (s *inventoryService) resolveCategory(ctx context.Context, companyID uuid.UUID, raw *string) (*uuid.UUID, error) {
	catID, err := parseOptionalUUID(raw, "categoryId")
	if err != nil || catID == nil {
		return nil, err
	}
	cat, err := s.repo.FindCategoryByID(ctx, *catID)
	if err != nil {
		return nil, notFound(err, "category")
	}
	if cat.CompanyID != companyID {
		return nil, apierror.NotFound("category")
	}
	return catID, nil
}

// ── Catalogue ────────────────────────────────────────────────────────────────

func (s *inventoryService) CreateItem(ctx context.Context, actor tenant.Actor, req dto.CreateItemRequest) (*model.InventoryItem, error) {
	reqCompany, err := parseOptionalUUID(req.CompanyID, "companyId")
	if err != nil {
		return nil, err
	}
	companyID, err := actor.ScopeCompany(reqCompany)
	if err != nil {
		return nil, err
	}
	catID, err := s.resolveCategory(ctx, companyID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if req.InitialQuantity < 0 {
		return nil, apierror.Validationf("initialQuantity must not be negative")
	}

	itemType := req.ItemType
	if itemType == "" {
		itemType = model.ItemTypeSale
	}
	item := &model.InventoryItem{
		CompanyID:         companyID,
		CategoryID:        catID,
		Name:              strings.TrimSpace(req.Name),
		SKU:               req.SKU,
		Quantity:          0,
		CriticalThreshold: req.CriticalThreshold,
		Price:             req.Price,
		Active:            true,
		ItemType:          itemType,
	}

	var events []worker.StockEvent
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateItemTx(tx, item); err != nil {
			return err
		}
		if req.InitialQuantity == 0 {
			return nil
		}
		// Opening stock enters through the ledger so Σ deltas == quantity from row one.
		_, ev, err := s.ledger.apply(tx, companyID, ledgerEntry{
			ItemID:    item.ID,
			Type:      model.MovementPurchase,
			Quantity:  req.InitialQuantity,
			CostPrice: req.CostPrice,
			Reason:    strPtr("initial stock"),
			CreatedBy: &actor.UserID,
		})
		if err != nil {
			return err
		}
		item.Quantity = ev.Quantity
		events = append(events, ev)
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishStock(ctx, s.notifier, events)
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.UpdateItemRequest) (*model.InventoryItem, error) {
	item, err := s.GetItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		catID, err := s.resolveCategory(ctx, item.CompanyID, req.CategoryID)
		if err != nil {
			return nil, err
		}
		item.CategoryID = catID
		item.Category = nil
	}
	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		item.SKU = req.SKU
	}
	if req.CriticalThreshold != nil {
		item.CriticalThreshold = *req.CriticalThreshold
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.ItemType != nil {
		item.ItemType = *req.ItemType
	}
	if req.Active != nil {
		item.Active = *req.Active
	}
	if err := s.repo.UpdateItemDetails(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) GetItem(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.InventoryItem, error) {
	item, err := s.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "inventory item")
	}
	if err := actor.Owns(item.CompanyID, "inventory item"); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *inventoryService) ListItems(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.ItemFilter) ([]model.InventoryItem, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	filter.CompanyID = scoped
	return s.repo.ListItems(ctx, filter)
}

func (s *inventoryService) LowStock(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.InventoryItem, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListLowStock(ctx, scoped)
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (s *inventoryService) RecordMovement(ctx context.Context, actor tenant.Actor, req dto.StockMovementRequest) (*model.StockMovement, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apierror.Validationf("itemId is not a valid UUID")
	}
	item, err := s.GetItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}

	var (
		mv *model.StockMovement
		ev worker.StockEvent
	)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		mv, ev, err = s.ledger.apply(tx, item.CompanyID, ledgerEntry{
			ItemID:    itemID,
			Type:      req.Type,
			Quantity:  req.Quantity,
			CostPrice: req.CostPrice,
			Reason:    req.Reason,
			Reference: req.Reference,
			CreatedBy: &actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	publishStock(ctx, s.notifier, []worker.StockEvent{ev})

	log.Info().
		Str("item_id", itemID.String()).
		Str("type", mv.Type).
		Int("delta", mv.Delta).
		Int("quantity_after", mv.QuantityAfter).
		Msg("stock movement recorded")
	return mv, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID, filter repository.MovementFilter) ([]model.StockMovement, int64, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, 0, err
	}
	filter.CompanyID = scoped
	return s.repo.ListMovements(ctx, filter)
}

// CheckLedger recomputes Σ signed deltas for an item and compares it with
// the cached quantity.
func (s *inventoryService) CheckLedger(ctx context.Context, actor tenant.Actor, itemID uuid.UUID) (*dto.LedgerCheckResponse, error) {
	item, err := s.GetItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	sum, count, err := s.repo.SumDeltas(ctx, itemID)
	if err != nil {
		return nil, err
	}
	consistent := sum == int64(item.Quantity)
	if !consistent {
		log.Error().
			Str("item_id", itemID.String()).
			Int("quantity", item.Quantity).
			Int64("ledger_sum", sum).
			Msg("stock ledger drift detected")
	}
	return &dto.LedgerCheckResponse{
		ItemID:     itemID.String(),
		Quantity:   item.Quantity,
		LedgerSum:  sum,
		Movements:  count,
		Consistent: consistent,
	}, nil
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *inventoryService) CreateCategory(ctx context.Context, actor tenant.Actor, req dto.CategoryRequest) (*model.InventoryCategory, error) {
	reqCompany, err := parseOptionalUUID(req.CompanyID, "companyId")
	if err != nil {
		return nil, err
	}
	companyID, err := actor.ScopeCompany(reqCompany)
	if err != nil {
		return nil, err
	}
	cat := &model.InventoryCategory{CompanyID: companyID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		if isDuplicate(err) {
			return nil, apierror.Conflictf("category %q already exists", cat.Name)
		}
		return nil, err
	}
	return cat, nil
}

func (s *inventoryService) ListCategories(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.InventoryCategory, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCategories(ctx, scoped)
}
