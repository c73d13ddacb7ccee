package repository

import (
	"context"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	// UpdateBusinessHours saves the company row and replaces its weekday schedule.
	UpdateBusinessHours(ctx context.Context, c *model.Company, schedules []model.CompanyDaySchedule) error
}

type companyRepo struct{ db *gorm.DB }

func NewCompanyRepository(db *gorm.DB) CompanyRepository { return &companyRepo{db: db} }

func (r *companyRepo) Create(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var c model.Company
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("DaySchedules", func(db *gorm.DB) *gorm.DB { return db.Order("weekday") }).
			Where("id = ?", id).First(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *companyRepo) List(ctx context.Context) ([]model.Company, error) {
	var out []model.Company
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Order("name").Find(&out).Error
	})
	return out, err
}

func (r *companyRepo) UpdateBusinessHours(ctx context.Context, c *model.Company, schedules []model.CompanyDaySchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(c).Omit(clause.Associations).Select(
			"timezone", "business_hours_enabled", "use_per_day_schedule",
			"business_day_start", "business_day_end", "operating_days", "default_hourly_rate",
		).Updates(c).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", c.ID).Delete(&model.CompanyDaySchedule{}).Error; err != nil {
			return err
		}
		for i := range schedules {
			schedules[i].CompanyID = c.ID
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		c.DaySchedules = schedules
		return nil
	})
}
