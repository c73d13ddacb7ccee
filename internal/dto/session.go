package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type StartSessionRequest struct {
	TableID   string     `json:"tableId"   validate:"required,uuid"`
	StaffID   *string    `json:"staffId"   validate:"omitempty,uuid"`
	StartedAt *time.Time `json:"startedAt"`
}

type TrackItemLine struct {
	ItemID    string           `json:"itemId"    validate:"required,uuid"`
	Quantity  int              `json:"quantity"  validate:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"omitempty,min=0"`
}

type TrackItemsRequest struct {
	Items []TrackItemLine `json:"items" validate:"required,min=1,dive"`
}

type UpdateTrackedItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TrackedItemResponse struct {
	ID        string          `json:"id"`
	ItemID    string          `json:"itemId"`
	ItemName  string          `json:"itemName,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func NewTrackedItemResponse(t *model.TrackedItem) TrackedItemResponse {
	resp := TrackedItemResponse{
		ID:        t.ID.String(),
		ItemID:    t.ItemID.String(),
		Quantity:  t.Quantity,
		UnitPrice: t.UnitPrice,
		Subtotal:  t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity))),
	}
	if t.Item != nil {
		resp.ItemName = t.Item.Name
	}
	return resp
}

func NewTrackedItemsResponse(items []model.TrackedItem) []TrackedItemResponse {
	out := make([]TrackedItemResponse, 0, len(items))
	for i := range items {
		out = append(out, NewTrackedItemResponse(&items[i]))
	}
	return out
}

type SessionResponse struct {
	ID           string                `json:"id"`
	TableID      string                `json:"tableId"`
	TableName    string                `json:"tableName,omitempty"`
	CompanyID    string                `json:"companyId"`
	StaffID      *string               `json:"staffId"`
	StartedAt    time.Time             `json:"startedAt"`
	EndedAt      *time.Time            `json:"endedAt"`
	Status       string                `json:"status"`
	TotalCost    *decimal.Decimal      `json:"totalCost"`
	RunningCost  *decimal.Decimal      `json:"runningCost,omitempty"`
	TrackedItems []TrackedItemResponse `json:"trackedItems,omitempty"`
}

// NewSessionResponse maps a session. running is the live cost preview of an
// ACTIVE session and nil otherwise.
func NewSessionResponse(s *model.TableSession, running *decimal.Decimal) SessionResponse {
	resp := SessionResponse{
		ID:           s.ID.String(),
		TableID:      s.TableID.String(),
		CompanyID:    s.CompanyID.String(),
		StartedAt:    s.StartedAt,
		EndedAt:      s.EndedAt,
		Status:       s.Status,
		TotalCost:    s.TotalCost,
		RunningCost:  running,
		TrackedItems: NewTrackedItemsResponse(s.TrackedItems),
	}
	if s.StaffID != nil {
		id := s.StaffID.String()
		resp.StaffID = &id
	}
	if s.Table != nil {
		resp.TableName = s.Table.Name
	}
	return resp
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
}

// AvailabilityResponse is the cart view of one item for an in-progress session.
type AvailabilityResponse struct {
	ItemID             string          `json:"itemId"`
	Name               string          `json:"name"`
	Price              decimal.Decimal `json:"price"`
	OnHand             int             `json:"onHand"`
	Tracked            int             `json:"tracked"`
	EffectiveAvailable int             `json:"effectiveAvailable"`
}
