package dto

import (
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCompanyRequest struct {
	Name              string           `json:"name"              validate:"required,min=2,max=120"`
	DefaultHourlyRate *decimal.Decimal `json:"defaultHourlyRate" validate:"omitempty,min=0"`
	Timezone          string           `json:"timezone"`
}

type DayScheduleRequest struct {
	Weekday int    `json:"weekday" validate:"min=0,max=6"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Closed  bool   `json:"closed"`
}

// BusinessHoursRequest replaces the company's business-hours configuration.
type BusinessHoursRequest struct {
	Enabled           bool                 `json:"enabled"`
	UsePerDaySchedule bool                 `json:"usePerDaySchedule"`
	Timezone          string               `json:"timezone"`
	Start             string               `json:"start"`
	End               string               `json:"end"`
	OperatingDays     []int                `json:"operatingDays" validate:"dive,min=0,max=6"`
	DaySchedules      []DayScheduleRequest `json:"daySchedules"  validate:"dive"`
	DefaultHourlyRate *decimal.Decimal     `json:"defaultHourlyRate" validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DayScheduleResponse struct {
	Weekday int    `json:"weekday"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Closed  bool   `json:"closed"`
}

type CompanyResponse struct {
	ID                   string                `json:"id"`
	Name                 string                `json:"name"`
	DefaultHourlyRate    *decimal.Decimal      `json:"defaultHourlyRate"`
	Timezone             string                `json:"timezone"`
	BusinessHoursEnabled bool                  `json:"businessHoursEnabled"`
	UsePerDaySchedule    bool                  `json:"usePerDaySchedule"`
	BusinessDayStart     string                `json:"businessDayStart"`
	BusinessDayEnd       string                `json:"businessDayEnd"`
	OperatingDays        string                `json:"operatingDays"`
	DaySchedules         []DayScheduleResponse `json:"daySchedules"`
	CreatedAt            time.Time             `json:"createdAt"`
}

func NewCompanyResponse(c *model.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:                   c.ID.String(),
		Name:                 c.Name,
		DefaultHourlyRate:    c.DefaultHourlyRate,
		Timezone:             c.Timezone,
		BusinessHoursEnabled: c.BusinessHoursEnabled,
		UsePerDaySchedule:    c.UsePerDaySchedule,
		BusinessDayStart:     c.BusinessDayStart,
		BusinessDayEnd:       c.BusinessDayEnd,
		OperatingDays:        c.OperatingDays,
		DaySchedules:         []DayScheduleResponse{},
		CreatedAt:            c.CreatedAt,
	}
	for _, d := range c.DaySchedules {
		resp.DaySchedules = append(resp.DaySchedules, DayScheduleResponse{
			Weekday: d.Weekday, Start: d.Start, End: d.End, Closed: d.Closed,
		})
	}
	return resp
}
