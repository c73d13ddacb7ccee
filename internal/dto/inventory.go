package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateItemRequest struct {
	CompanyID         *string         `json:"companyId"         validate:"omitempty,uuid"`
	CategoryID        *string         `json:"categoryId"        validate:"omitempty,uuid"`
	Name              string          `json:"name"              validate:"required,min=1,max=120"`
	SKU               *string         `json:"sku"               validate:"omitempty,max=60"`
	CriticalThreshold int             `json:"criticalThreshold" validate:"min=0"`
	Price             decimal.Decimal `json:"price"             validate:"min=0"`
	ItemType          string          `json:"itemType"          validate:"omitempty,oneof=SALE INTERNAL_USE"`
	// InitialQuantity is booked as a PURCHASE movement in the same transaction.
	InitialQuantity int              `json:"initialQuantity" validate:"min=0"`
	CostPrice       *decimal.Decimal `json:"costPrice"       validate:"omitempty,min=0"`
}

// UpdateItemRequest edits descriptive fields. Quantity changes go through
// stock movements only.
type UpdateItemRequest struct {
	CategoryID        *string          `json:"categoryId"        validate:"omitempty,uuid"`
	Name              *string          `json:"name"              validate:"omitempty,min=1,max=120"`
	SKU               *string          `json:"sku"               validate:"omitempty,max=60"`
	CriticalThreshold *int             `json:"criticalThreshold" validate:"omitempty,min=0"`
	Price             *decimal.Decimal `json:"price"             validate:"omitempty,min=0"`
	ItemType          *string          `json:"itemType"          validate:"omitempty,oneof=SALE INTERNAL_USE"`
	Active            *bool            `json:"active"`
}

// StockMovementRequest records one ledger entry. Quantity is positive except
// for ADJUSTMENT, where its sign is the direction of the correction.
type StockMovementRequest struct {
	ItemID    string           `json:"itemId"    validate:"required,uuid"`
	Type      string           `json:"type"      validate:"required,oneof=PURCHASE SALE ADJUSTMENT RETURN TRANSFER"`
	Quantity  int              `json:"quantity"  validate:"required"`
	CostPrice *decimal.Decimal `json:"costPrice" validate:"omitempty,min=0"`
	Reason    *string          `json:"reason"    validate:"omitempty,max=255"`
	Reference *string          `json:"reference" validate:"omitempty,max=120"`
}

type CategoryRequest struct {
	CompanyID *string `json:"companyId" validate:"omitempty,uuid"`
	Name      string  `json:"name"      validate:"required,min=1,max=80"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemResponse struct {
	ID                string          `json:"id"`
	CompanyID         string          `json:"companyId"`
	CategoryID        *string         `json:"categoryId"`
	CategoryName      string          `json:"categoryName,omitempty"`
	Name              string          `json:"name"`
	SKU               *string         `json:"sku"`
	Quantity          int             `json:"quantity"`
	CriticalThreshold int             `json:"criticalThreshold"`
	Price             decimal.Decimal `json:"price"`
	Active            bool            `json:"active"`
	ItemType          string          `json:"itemType"`
	LowStock          bool            `json:"lowStock"`
}

func NewItemResponse(it *model.InventoryItem) ItemResponse {
	resp := ItemResponse{
		ID:                it.ID.String(),
		CompanyID:         it.CompanyID.String(),
		Name:              it.Name,
		SKU:               it.SKU,
		Quantity:          it.Quantity,
		CriticalThreshold: it.CriticalThreshold,
		Price:             it.Price,
		Active:            it.Active,
		ItemType:          it.ItemType,
		LowStock:          it.Quantity <= it.CriticalThreshold,
	}
	if it.CategoryID != nil {
		id := it.CategoryID.String()
		resp.CategoryID = &id
	}
	if it.Category != nil {
		resp.CategoryName = it.Category.Name
	}
	return resp
}

func NewItemsResponse(items []model.InventoryItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewItemResponse(&items[i]))
	}
	return out
}

type MovementResponse struct {
	ID             string           `json:"id"`
	ItemID         string           `json:"itemId"`
	ItemName       string           `json:"itemName,omitempty"`
	Type           string           `json:"type"`
	Quantity       int              `json:"quantity"`
	Delta          int              `json:"delta"`
	QuantityBefore int              `json:"quantityBefore"`
	QuantityAfter  int              `json:"quantityAfter"`
	CostPrice      *decimal.Decimal `json:"costPrice"`
	Reason         *string          `json:"reason"`
	Reference      *string          `json:"reference"`
	CreatedAt      time.Time        `json:"createdAt"`
}

func NewMovementResponse(m *model.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:             m.ID.String(),
		ItemID:         m.ItemID.String(),
		Type:           m.Type,
		Quantity:       m.Quantity,
		Delta:          m.Delta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		CostPrice:      m.CostPrice,
		Reason:         m.Reason,
		Reference:      m.Reference,
		CreatedAt:      m.CreatedAt,
	}
	if m.Item != nil {
		resp.ItemName = m.Item.Name
	}
	return resp
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// LedgerCheckResponse compares the cached quantity with the movement ledger.
type LedgerCheckResponse struct {
	ItemID     string `json:"itemId"`
	Quantity   int    `json:"quantity"`
	LedgerSum  int64  `json:"ledgerSum"`
	Movements  int64  `json:"movements"`
	Consistent bool   `json:"consistent"`
}

type CategoryResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"companyId"`
	Name      string `json:"name"`
}

func NewCategoryResponse(c *model.InventoryCategory) CategoryResponse {
	return CategoryResponse{ID: c.ID.String(), CompanyID: c.CompanyID.String(), Name: c.Name}
}
