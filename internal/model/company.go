package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Company is the tenant boundary. Every table, item, order and expense
// belongs to exactly one company.
//
// Business hours: when BusinessHoursEnabled is false, income is bucketed by
// calendar day. Otherwise UsePerDaySchedule selects between the general window
// (BusinessDayStart/End + OperatingDays) and the DaySchedules rows.
type Company struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	Name              string           `gorm:"not null"`
	DefaultHourlyRate *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Timezone          string           `gorm:"not null;default:'UTC'"`

	BusinessHoursEnabled bool   `gorm:"not null;default:false"`
	UsePerDaySchedule    bool   `gorm:"not null;default:false"`
	BusinessDayStart     string `gorm:"type:varchar(5)"`  // "HH:MM"
	BusinessDayEnd       string `gorm:"type:varchar(5)"`  // "HH:MM", <= start means next day
	OperatingDays        string `gorm:"type:varchar(20)"` // "0,1,2,3,4,5,6" (0 = Sunday)

	CreatedAt time.Time
	UpdatedAt time.Time

	DaySchedules []CompanyDaySchedule `gorm:"foreignKey:CompanyID"`
}

// CompanyDaySchedule is one weekday entry of a per-day business schedule.
type CompanyDaySchedule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_weekday"`
	Weekday   int       `gorm:"not null;uniqueIndex:idx_company_weekday"` // 0 = Sunday
	Start     string    `gorm:"type:varchar(5);not null"`
	End       string    `gorm:"type:varchar(5);not null"`
	Closed    bool      `gorm:"not null;default:false"`
}
