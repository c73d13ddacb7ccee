package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table statuses.
const (
	TableStatusAvailable   = "AVAILABLE"
	TableStatusOccupied    = "OCCUPIED"
	TableStatusReserved    = "RESERVED"
	TableStatusMaintenance = "MAINTENANCE"
)

// Table is a billiard table. Status OCCUPIED is owned by the session engine.
type Table struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CompanyID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name       string           `gorm:"not null"`
	HourlyRate *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Status     string           `gorm:"type:varchar(20);not null;default:'AVAILABLE'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableMaintenance is a maintenance event on a table with its cost.
// CompanyID is denormalized for report queries.
type TableMaintenance struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TableID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CompanyID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"not null"`
	Cost        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PerformedAt time.Time       `gorm:"not null;index"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time
}
