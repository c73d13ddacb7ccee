package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateTableRequest struct {
	CompanyID  *string          `json:"companyId"  validate:"omitempty,uuid"`
	Name       string           `json:"name"       validate:"required,min=1,max=80"`
	HourlyRate *decimal.Decimal `json:"hourlyRate" validate:"omitempty,min=0"`
}

type UpdateTableRequest struct {
	Name       *string          `json:"name"       validate:"omitempty,min=1,max=80"`
	HourlyRate *decimal.Decimal `json:"hourlyRate" validate:"omitempty,min=0"`
	Status     *string          `json:"status"     validate:"omitempty,oneof=AVAILABLE RESERVED MAINTENANCE"`
}

type MaintenanceRequest struct {
	Description string          `json:"description" validate:"required,min=2"`
	Cost        decimal.Decimal `json:"cost"        validate:"min=0"`
	PerformedAt *time.Time      `json:"performedAt"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type TableResponse struct {
	ID         string           `json:"id"`
	CompanyID  string           `json:"companyId"`
	Name       string           `json:"name"`
	HourlyRate *decimal.Decimal `json:"hourlyRate"`
	Status     string           `json:"status"`
}

func NewTableResponse(t *model.Table) TableResponse {
	return TableResponse{
		ID:         t.ID.String(),
		CompanyID:  t.CompanyID.String(),
		Name:       t.Name,
		HourlyRate: t.HourlyRate,
		Status:     t.Status,
	}
}

type MaintenanceResponse struct {
	ID          string          `json:"id"`
	TableID     string          `json:"tableId"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	PerformedAt time.Time       `json:"performedAt"`
}

func NewMaintenanceResponse(m *model.TableMaintenance) MaintenanceResponse {
	return MaintenanceResponse{
		ID:          m.ID.String(),
		TableID:     m.TableID.String(),
		Description: m.Description,
		Cost:        m.Cost,
		PerformedAt: m.PerformedAt,
	}
}
