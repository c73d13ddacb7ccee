package repository

import (
	"context"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, t *model.Table) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error)
	List(ctx context.Context, companyID uuid.UUID) ([]model.Table, error)
	// UpdateDetailsTx writes name, hourly rate and status.
	UpdateDetailsTx(tx *gorm.DB, t *model.Table) error

	// Used inside transactions: callers must pass the tx instance
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Table, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	CreateMaintenance(ctx context.Context, m *model.TableMaintenance) error
	ListMaintenance(ctx context.Context, tableID uuid.UUID) ([]model.TableMaintenance, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepository(db *gorm.DB) TableRepository { return &tableRepo{db: db} }

func (r *tableRepo) DB() *gorm.DB { return r.db }

func (r *tableRepo) Create(ctx context.Context, t *model.Table) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	var t model.Table
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) List(ctx context.Context, companyID uuid.UUID) ([]model.Table, error) {
	var out []model.Table
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name").Find(&out).Error
	})
	return out, err
}

func (r *tableRepo) UpdateDetailsTx(tx *gorm.DB, t *model.Table) error {
	return tx.Model(t).Select("name", "hourly_rate", "status").Updates(t).Error
}

func (r *tableRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Table, error) {
	var t model.Table
	if err := forUpdate(tx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tableRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Table{}).Where("id = ?", id).Update("status", status).Error
}

func (r *tableRepo) CreateMaintenance(ctx context.Context, m *model.TableMaintenance) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *tableRepo) ListMaintenance(ctx context.Context, tableID uuid.UUID) ([]model.TableMaintenance, error) {
	var out []model.TableMaintenance
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("table_id = ?", tableID).Order("performed_at DESC").Find(&out).Error
	})
	return out, err
}
