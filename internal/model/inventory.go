package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item types. INTERNAL_USE purchases are reported as other expenses, not inventory cost.
const (
	ItemTypeSale        = "SALE"
	ItemTypeInternalUse = "INTERNAL_USE"
)

// Stock movement types.
const (
	MovementPurchase   = "PURCHASE"
	MovementSale       = "SALE"
	MovementAdjustment = "ADJUSTMENT"
	MovementReturn     = "RETURN"
	MovementTransfer   = "TRANSFER"
)

type InventoryCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_category_company_name"`
	Name      string    `gorm:"not null;uniqueIndex:idx_category_company_name"`
	CreatedAt time.Time
}

// InventoryItem is a stocked good. Quantity is a materialized cache of the
// sum of its stock movement deltas and is only written by the ledger.
type InventoryItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID        *uuid.UUID      `gorm:"type:uuid;index"`
	Name              string          `gorm:"not null"`
	SKU               *string         `gorm:"column:sku"`
	Quantity          int             `gorm:"not null;default:0;check:chk_inventory_items_quantity,quantity >= 0"`
	CriticalThreshold int             `gorm:"not null;default:0"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Active            bool            `gorm:"not null;default:true"`
	ItemType          string          `gorm:"type:varchar(20);not null;default:'SALE'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Category *InventoryCategory `gorm:"foreignKey:CategoryID"`
}

// StockMovement is an append-only ledger entry.
//
// Quantity is the amount as recorded by the caller (positive for every type
// except ADJUSTMENT, which carries its own sign). Delta is the signed effect
// on the item: PURCHASE/RETURN positive, SALE/TRANSFER negative.
type StockMovement struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ItemID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	CompanyID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type           string           `gorm:"type:varchar(20);not null;index"`
	Quantity       int              `gorm:"not null"`
	Delta          int              `gorm:"not null"`
	QuantityBefore int              `gorm:"not null"`
	QuantityAfter  int              `gorm:"not null"`
	CostPrice      *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Reason         *string
	Reference      *string    `gorm:"index"` // "session:<id>" | "order:<id>" | free text
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time  `gorm:"index"`

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}
