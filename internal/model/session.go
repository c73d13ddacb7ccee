package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session statuses. ACTIVE is the only mutable state.
const (
	SessionActive    = "ACTIVE"
	SessionCompleted = "COMPLETED"
	SessionCancelled = "CANCELLED"
)

// TableSession is one rental occupancy of a table. TotalCost stays nil until
// the session is ended and is never set for cancelled sessions.
//
// At most one ACTIVE session per table is enforced by the partial unique
// index idx_table_sessions_one_active (see infra.Migrate).
type TableSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TableID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index"`
	StaffID   *uuid.UUID `gorm:"type:uuid"`
	StartedAt time.Time  `gorm:"not null;index"`
	EndedAt   *time.Time
	Status    string           `gorm:"type:varchar(20);not null;index"`
	TotalCost *decimal.Decimal `gorm:"type:numeric(12,2)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Table        *Table        `gorm:"foreignKey:TableID"`
	TrackedItems []TrackedItem `gorm:"foreignKey:TableSessionID"`
}

// TrackedItem is inventory consumed during a session before checkout. Its
// quantity has already been deducted from the item through a SALE movement.
// Repeated tracking merges into the session's unsettled row for the item;
// once an order settles that row, the next tracking call opens a new one.
type TrackedItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TableSessionID uuid.UUID       `gorm:"type:uuid;not null;index:idx_tracked_session_item_lookup"`
	ItemID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_tracked_session_item_lookup"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}
