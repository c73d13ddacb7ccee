package service

import (
	"context"
	"strings"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/apierror"
	"github.com/boring-ventures/billar-sub000/internal/dto"
	"github.com/boring-ventures/billar-sub000/internal/model"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableService interface {
	Create(ctx context.Context, actor tenant.Actor, req dto.CreateTableRequest) (*model.Table, error)
	List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.Table, error)
	Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.Table, error)
	Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.UpdateTableRequest) (*model.Table, error)

	AddMaintenance(ctx context.Context, actor tenant.Actor, tableID uuid.UUID, req dto.MaintenanceRequest) (*model.TableMaintenance, error)
	ListMaintenance(ctx context.Context, actor tenant.Actor, tableID uuid.UUID) ([]model.TableMaintenance, error)
}

type tableService struct {
	tables    repository.TableRepository
	companies repository.CompanyRepository
	now       Clock
}

func NewTableService(tables repository.TableRepository, companies repository.CompanyRepository, now Clock) TableService {
	if now == nil {
		now = utcNow
	}
	return &tableService{tables: tables, companies: companies, now: now}
}

// Create falls back to the company's default hourly rate.
func (s *tableService) Create(ctx context.Context, actor tenant.Actor, req dto.CreateTableRequest) (*model.Table, error) {
	reqCompany, err := parseOptionalUUID(req.CompanyID, "companyId")
	if err != nil {
		return nil, err
	}
	companyID, err := actor.ScopeCompany(reqCompany)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}

	rate := req.HourlyRate
	if rate == nil {
		rate = company.DefaultHourlyRate
	}
	t := &model.Table{
		CompanyID:  companyID,
		Name:       strings.TrimSpace(req.Name),
		HourlyRate: rate,
		Status:     model.TableStatusAvailable,
	}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tableService) List(ctx context.Context, actor tenant.Actor, companyID *uuid.UUID) ([]model.Table, error) {
	scoped, err := actor.ScopeCompany(companyID)
	if err != nil {
		return nil, err
	}
	return s.tables.List(ctx, scoped)
}

func (s *tableService) Get(ctx context.Context, actor tenant.Actor, id uuid.UUID) (*model.Table, error) {
	t, err := s.tables.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "table")
	}
	if err := actor.Owns(t.CompanyID, "table"); err != nil {
		return nil, err
	}
	return t, nil
}

// Update edits name and rate, and sets a manual status. OCCUPIED belongs to
// the session engine: it can be neither set nor left by hand.
func (s *tableService) Update(ctx context.Context, actor tenant.Actor, id uuid.UUID, req dto.UpdateTableRequest) (*model.Table, error) {
	var table *model.Table
	err := runTx(ctx, s.tables.DB(), func(tx *gorm.DB) error {
		t, err := s.tables.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err, "table")
		}
		if err := actor.Owns(t.CompanyID, "table"); err != nil {
			return err
		}
		if req.Name != nil {
			t.Name = strings.TrimSpace(*req.Name)
		}
		if req.HourlyRate != nil {
			t.HourlyRate = req.HourlyRate
		}
		if req.Status != nil && *req.Status != t.Status {
			switch *req.Status {
			case model.TableStatusAvailable, model.TableStatusReserved, model.TableStatusMaintenance:
			default:
				return apierror.Validationf("status %s cannot be set manually", *req.Status)
			}
			if t.Status == model.TableStatusOccupied {
				return apierror.Conflictf("table %s has an active session", t.Name)
			}
			t.Status = *req.Status
		}
		table = t
		return s.tables.UpdateDetailsTx(tx, t)
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (s *tableService) AddMaintenance(ctx context.Context, actor tenant.Actor, tableID uuid.UUID, req dto.MaintenanceRequest) (*model.TableMaintenance, error) {
	t, err := s.Get(ctx, actor, tableID)
	if err != nil {
		return nil, err
	}
	if req.Cost.IsNegative() {
		return nil, apierror.Validationf("cost must not be negative")
	}
	performedAt := s.now()
	if req.PerformedAt != nil {
		performedAt = req.PerformedAt.UTC()
	}
	m := &model.TableMaintenance{
		TableID:     t.ID,
		CompanyID:   t.CompanyID,
		Description: strings.TrimSpace(req.Description),
		Cost:        req.Cost,
		PerformedAt: performedAt.Truncate(time.Millisecond),
		CreatedBy:   &actor.UserID,
	}
	if err := s.tables.CreateMaintenance(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *tableService) ListMaintenance(ctx context.Context, actor tenant.Actor, tableID uuid.UUID) ([]model.TableMaintenance, error) {
	if _, err := s.Get(ctx, actor, tableID); err != nil {
		return nil, err
	}
	return s.tables.ListMaintenance(ctx, tableID)
}
