package service

import (
	"context"
	"strings"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
)

type CompanyService interface {
	Create(ctx context.Context, actor tenant.Actor, req dto.CreateCompanyRequest) (*model.Company, error)
	List(ctx context.Context, actor tenant.Actor) ([]model.Company, error)
	Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.Company, error)
	UpdateBusinessHours(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.BusinessHoursRequest) (*model.Company, error)
}

type companyService struct {
	repo repository.CompanyRepository
}

func NewCompanyService(repo repository.CompanyRepository) CompanyService {
	return &companyService{repo: repo}
}

func (s *companyService) Create(ctx context.Context, actor tenant.Actor, req dto.CreateCompanyRequest) (*model.Company, error) {
	if err := actor.Require(model.RoleSuperAdmin); err != nil {
		return nil, err
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := LoadLocation(tz); err != nil {
		return nil, err
	}
	c := &model.Company{
		Name:              strings.TrimSpace(req.Name),
		DefaultHourlyRate: req.DefaultHourlyRate,
		Timezone:          tz,
		OperatingDays:     "0,1,2,3,4,5,6",
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *companyService) List(ctx context.Context, actor tenant.Actor) ([]model.Company, error) {
	if err := actor.Require(model.RoleSuperAdmin); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *companyService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.Company, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	if err := actor.Owns(c.ID, "company"); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateBusinessHours replaces the business-hours configuration. Schedules
// are validated even when disabled so a later toggle cannot enable bad data.
func (s *companyService) UpdateBusinessHours(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.BusinessHoursRequest) (*model.Company, error) {
	c, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	tz := req.Timezone
	if tz == "" {
		tz = c.Timezone
	}
	if _, err := LoadLocation(tz); err != nil {
		return nil, err
	}
	if req.Enabled && !req.UsePerDaySchedule && (req.Start == "" || req.End == "") {
		return nil, apierror.Validationf("start and end are required")
	}
	for _, v := range []string{req.Start, req.End} {
		if v == "" {
			continue
		}
		if _, _, err := ParseClock(v); err != nil {
			return nil, err
		}
	}
	for _, d := range req.OperatingDays {
		if d < 0 || d > 6 {
			return nil, apierror.Validationf("operating day %d is not a weekday (0-6)", d)
		}
	}

	seen := make(map[int]bool, len(req.DaySchedules))
	schedules := make([]model.CompanyDaySchedule, 0, len(req.DaySchedules))
	for _, d := range req.DaySchedules {
		if d.Weekday < 0 || d.Weekday > 6 {
			return nil, apierror.Validationf("weekday %d is not a weekday (0-6)", d.Weekday)
		}
		if seen[d.Weekday] {
			return nil, apierror.Validationf("weekday %d is listed twice", d.Weekday)
		}
		seen[d.Weekday] = true
		if !d.Closed {
			if _, _, err := ParseClock(d.Start); err != nil {
				return nil, err
			}
			if _, _, err := ParseClock(d.End); err != nil {
				return nil, err
			}
		}
		schedules = append(schedules, model.CompanyDaySchedule{
			Weekday: d.Weekday, Start: d.Start, End: d.End, Closed: d.Closed,
		})
	}
	if req.Enabled && req.UsePerDaySchedule && len(schedules) == 0 {
		return nil, apierror.Validationf("daySchedules are required for a per-day schedule")
	}

	c.Timezone = tz
	c.BusinessHoursEnabled = req.Enabled
	c.UsePerDaySchedule = req.UsePerDaySchedule
	c.BusinessDayStart = req.Start
	c.BusinessDayEnd = req.End
	c.OperatingDays = FormatOperatingDays(req.OperatingDays)
	if req.DefaultHourlyRate != nil {
		c.DefaultHourlyRate = req.DefaultHourlyRate
	}
	if err := s.repo.UpdateBusinessHours(ctx, c, schedules); err != nil {
		return nil, err
	}
	return c, nil
}
