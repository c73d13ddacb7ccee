package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// OrderLineRequest is one cart line. Lines flagged isTrackedItem settle a
// tracked item of the session (by trackedItemId, or by itemId when omitted)
// and are not deducted again.
type OrderLineRequest struct {
	ItemID        string          `json:"itemId"        validate:"omitempty,uuid"`
	TrackedItemID *string         `json:"trackedItemId" validate:"omitempty,uuid"`
	Quantity      int             `json:"quantity"      validate:"required,gt=0"`
	UnitPrice     decimal.Decimal `json:"unitPrice"     validate:"min=0"`
	IsTrackedItem bool            `json:"isTrackedItem"`
}

type CreateOrderRequest struct {
	CompanyID      *string            `json:"companyId"      validate:"omitempty,uuid"`
	TableSessionID *string            `json:"tableSessionId" validate:"omitempty,uuid"`
	PaymentMethod  string             `json:"paymentMethod"  validate:"required,oneof=CASH QR CREDIT_CARD"`
	PaymentStatus  string             `json:"paymentStatus"  validate:"required,oneof=PAID UNPAID"`
	Items          []OrderLineRequest `json:"items"          validate:"dive"`
}

type UpdateOrderRequest struct {
	PaymentMethod *string `json:"paymentMethod" validate:"omitempty,oneof=CASH QR CREDIT_CARD"`
	PaymentStatus *string `json:"paymentStatus" validate:"omitempty,oneof=PAID UNPAID"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"itemId"`
	ItemName      string          `json:"itemName,omitempty"`
	TrackedItemID *string         `json:"trackedItemId"`
	IsTrackedItem bool            `json:"isTrackedItem"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	CompanyID      string              `json:"companyId"`
	TableSessionID *string             `json:"tableSessionId"`
	StaffID        string              `json:"staffId"`
	Amount         decimal.Decimal     `json:"amount"`
	PaymentMethod  string              `json:"paymentMethod"`
	PaymentStatus  string              `json:"paymentStatus"`
	CreatedAt      time.Time           `json:"createdAt"`
	Items          []OrderItemResponse `json:"orderItems"`
}

func NewOrderResponse(o *model.PosOrder) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID.String(),
		CompanyID:     o.CompanyID.String(),
		StaffID:       o.StaffID.String(),
		Amount:        o.Amount,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		Items:         make([]OrderItemResponse, 0, len(o.Items)),
	}
	if o.TableSessionID != nil {
		id := o.TableSessionID.String()
		resp.TableSessionID = &id
	}
	for _, it := range o.Items {
		line := OrderItemResponse{
			ID:            it.ID.String(),
			ItemID:        it.ItemID.String(),
			IsTrackedItem: it.IsTracked(),
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Subtotal:      it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
		if it.TrackedItemID != nil {
			id := it.TrackedItemID.String()
			line.TrackedItemID = &id
		}
		if it.Item != nil {
			line.ItemName = it.Item.Name
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
