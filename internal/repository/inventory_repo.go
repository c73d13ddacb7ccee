package repository

import (
	"context"
	"strings"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ItemFilter defines filters for listing inventory items.
type ItemFilter struct {
	CompanyID  uuid.UUID
	CategoryID *uuid.UUID
	ItemType   string
	Search     string
	// Active: "false" = inactive only, "all" = both, anything else = active only
	Active string
}

// MovementFilter defines filters for listing stock movements.
type MovementFilter struct {
	CompanyID uuid.UUID
	ItemID    *uuid.UUID
	Type      string
	Page      int
	Limit     int
}

type InventoryRepository interface {
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]model.InventoryItem, error)
	ListLowStock(ctx context.Context, companyID uuid.UUID) ([]model.InventoryItem, error)
	// UpdateItemDetails writes descriptive fields only. Quantity is never
	// touched here; it moves through ApplyDeltaTx.
	UpdateItemDetails(ctx context.Context, item *model.InventoryItem) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
	SumDeltas(ctx context.Context, itemID uuid.UUID) (int64, int64, error)

	CreateCategory(ctx context.Context, c *model.InventoryCategory) error
	FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.InventoryCategory, error)
	ListCategories(ctx context.Context, companyID uuid.UUID) ([]model.InventoryCategory, error)

	// Used inside transactions: callers must pass the tx instance
	CreateItemTx(tx *gorm.DB, item *model.InventoryItem) error
	FindItemForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error)
	// ApplyDeltaTx adds delta to the item's quantity unless the result would be
	// negative, in which case it reports false and changes nothing.
	ApplyDeltaTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error)
	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.InventoryItem, error) {
	var it model.InventoryItem
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&it).Error
	})
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *inventoryRepo) ListItems(ctx context.Context, filter ItemFilter) ([]model.InventoryItem, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryItem{}).Where("company_id = ?", filter.CompanyID)

	switch filter.Active {
	case "false":
		q = q.Where("active = ?", false)
	case "all":
		// no filter
	default:
		q = q.Where("active = ?", true)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ItemType != "" {
		q = q.Where("item_type = ?", filter.ItemType)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}

	var out []model.InventoryItem
	err := withReadRetry(ctx, func() error {
		return q.Preload("Category").Order("name").Find(&out).Error
	})
	return out, err
}

func (r *inventoryRepo) ListLowStock(ctx context.Context, companyID uuid.UUID) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("company_id = ? AND active = ? AND quantity <= critical_threshold", companyID, true).
			Order("quantity ASC, name").Find(&out).Error
	})
	return out, err
}

func (r *inventoryRepo) UpdateItemDetails(ctx context.Context, item *model.InventoryItem) error {
	return r.db.WithContext(ctx).Model(item).Omit(clause.Associations).
		Select("name", "sku", "category_id", "critical_threshold", "price", "active", "item_type").
		Updates(item).Error
}

func (r *inventoryRepo) ListMovements(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMovement{}).Where("company_id = ?", filter.CompanyID)
	if filter.ItemID != nil {
		q = q.Where("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	var out []model.StockMovement
	offset, limit := paginate(filter.Page, filter.Limit)
	err := withReadRetry(ctx, func() error {
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Preload("Item").Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	})
	return out, total, err
}

// SumDeltas returns the sum of signed deltas and the movement count for an item.
func (r *inventoryRepo) SumDeltas(ctx context.Context, itemID uuid.UUID) (int64, int64, error) {
	var row struct {
		Total int64
		Count int64
	}
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.StockMovement{}).
			Select("COALESCE(SUM(delta), 0) AS total, COUNT(*) AS count").
			Where("item_id = ?", itemID).
			Scan(&row).Error
	})
	return row.Total, row.Count, err
}

func (r *inventoryRepo) CreateCategory(ctx context.Context, c *model.InventoryCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *inventoryRepo) FindCategoryByID(ctx context.Context, id uuid.UUID) (*model.InventoryCategory, error) {
	var c model.InventoryCategory
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *inventoryRepo) ListCategories(ctx context.Context, companyID uuid.UUID) ([]model.InventoryCategory, error) {
	var out []model.InventoryCategory
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&out).Error
	})
	return out, err
}

func (r *inventoryRepo) CreateItemTx(tx *gorm.DB, item *model.InventoryItem) error {
	return tx.Omit("Category").Create(item).Error
}

func (r *inventoryRepo) FindItemForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.InventoryItem, error) {
	var it model.InventoryItem
	if err := forUpdate(tx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *inventoryRepo) ApplyDeltaTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.InventoryItem{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *inventoryRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Omit("Item").Create(m).Error
}
