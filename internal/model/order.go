package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentCash       = "CASH"
	PaymentQR         = "QR"
	PaymentCreditCard = "CREDIT_CARD"

	PaymentPaid   = "PAID"
	PaymentUnpaid = "UNPAID"
)

// PosOrder is a finalized sale. Amount is the sum of its line subtotals and
// never includes the session's time cost. Only the payment fields change
// after creation.
type PosOrder struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TableSessionID *uuid.UUID      `gorm:"type:uuid;index"`
	StaffID        uuid.UUID       `gorm:"type:uuid;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentMethod  string          `gorm:"type:varchar(20);not null"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time

	Items []PosOrderItem `gorm:"foreignKey:OrderID"`
}

// PosOrderItem is an order line. TrackedItemID is set when the line settles a
// session's tracked item; such lines were deducted at tracking time and are
// never deducted or restored by the order.
type PosOrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID        uuid.UUID       `gorm:"type:uuid;not null"`
	TrackedItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2);not null"`

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

// IsTracked reports whether the line was sourced from a tracked item.
func (i PosOrderItem) IsTracked() bool { return i.TrackedItemID != nil }
