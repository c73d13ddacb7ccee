package repository

import (
	"context"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter defines filters for listing POS orders.
type OrderFilter struct {
	CompanyID     uuid.UUID
	SessionID     *uuid.UUID
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PosOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]model.PosOrder, int64, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, o *model.PosOrder) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PosOrder, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	// UpdatePaymentTx writes only the supplied payment columns.
	UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	// HasTimeOnlyOrderTx reports whether the session already has an order without lines.
	HasTimeOnlyOrderTx(tx *gorm.DB, sessionID uuid.UUID) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PosOrder, error) {
	var o model.PosOrder
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Preload("Items.Item").Where("id = ?", id).First(&o).Error
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.PosOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PosOrder{}).Where("company_id = ?", filter.CompanyID)
	if filter.SessionID != nil {
		q = q.Where("table_session_id = ?", *filter.SessionID)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", filter.To.UTC())
	}

	var total int64
	var out []model.PosOrder
	offset, limit := paginate(filter.Page, filter.Limit)
	err := withReadRetry(ctx, func() error {
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	})
	return out, total, err
}

func (r *orderRepo) UpdatePaymentTx(tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	return tx.Model(&model.PosOrder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) HasTimeOnlyOrderTx(tx *gorm.DB, sessionID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.PosOrder{}).
		Where("table_session_id = ?", sessionID).
		Where("NOT EXISTS (SELECT 1 FROM pos_order_items oi WHERE oi.order_id = pos_orders.id)").
		Count(&n).Error
	return n > 0, err
}

// CreateTx inserts the order and its lines.
func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.PosOrder) error {
	return tx.Omit("Items.Item").Create(o).Error
}

func (r *orderRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.PosOrder, error) {
	var o model.PosOrder
	if err := forUpdate(tx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", id).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("order_id = ?", id).Delete(&model.PosOrderItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&model.PosOrder{}).Error
}
