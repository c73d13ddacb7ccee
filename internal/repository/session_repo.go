package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SessionFilter defines filters for listing table sessions.
type SessionFilter struct {
	CompanyID uuid.UUID
	TableID   *uuid.UUID
	Status    string
	Page      int
	Limit     int
}

type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.TableSession, error)
	List(ctx context.Context, filter SessionFilter) ([]model.TableSession, int64, error)
	ListTracked(ctx context.Context, sessionID uuid.UUID) ([]model.TrackedItem, error)

	// Used inside transactions: callers must pass the tx instance
	CreateTx(tx *gorm.DB, s *model.TableSession) error
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.TableSession, error)
	// CloseTx moves an ACTIVE session to status. It reports false when the
	// session was no longer ACTIVE, which means another caller closed it first.
	CloseTx(tx *gorm.DB, id uuid.UUID, status string, endedAt time.Time, totalCost *decimal.Decimal) (bool, error)

	// FindOpenTrackedTx returns the oldest row for the item that no order
	// settles yet, or nil, nil when there is none.
	FindOpenTrackedTx(tx *gorm.DB, sessionID, itemID uuid.UUID) (*model.TrackedItem, error)
	FindTrackedForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.TrackedItem, error)
	SaveTrackedTx(tx *gorm.DB, t *model.TrackedItem) error
	DeleteTrackedTx(tx *gorm.DB, id uuid.UUID) error
	ListTrackedTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.TrackedItem, error)
	// TrackedSettledTx reports whether an order line already settles the tracked item.
	TrackedSettledTx(tx *gorm.DB, trackedID uuid.UUID) (bool, error)
	// SettledTrackedIDs lists the session's tracked rows already billed by an order.
	SettledTrackedIDs(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) DB() *gorm.DB { return r.db }

func (r *sessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.TableSession, error) {
	var s model.TableSession
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).
			Preload("Table").
			Preload("TrackedItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") }).
			Preload("TrackedItems.Item").
			Where("id = ?", id).First(&s).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) List(ctx context.Context, filter SessionFilter) ([]model.TableSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.TableSession{}).
		Where("company_id = ?", filter.CompanyID)
	if filter.TableID != nil {
		q = q.Where("table_id = ?", *filter.TableID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	var out []model.TableSession
	offset, limit := paginate(filter.Page, filter.Limit)
	err := withReadRetry(ctx, func() error {
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Preload("Table").Order("started_at DESC").Offset(offset).Limit(limit).Find(&out).Error
	})
	return out, total, err
}

func (r *sessionRepo) ListTracked(ctx context.Context, sessionID uuid.UUID) ([]model.TrackedItem, error) {
	var out []model.TrackedItem
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Preload("Item").
			Where("table_session_id = ?", sessionID).Order("created_at").Find(&out).Error
	})
	return out, err
}

func (r *sessionRepo) CreateTx(tx *gorm.DB, s *model.TableSession) error {
	return tx.Omit("Table", "TrackedItems").Create(s).Error
}

func (r *sessionRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.TableSession, error) {
	var s model.TableSession
	if err := forUpdate(tx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepo) CloseTx(tx *gorm.DB, id uuid.UUID, status string, endedAt time.Time, totalCost *decimal.Decimal) (bool, error) {
	res := tx.Model(&model.TableSession{}).
		Where("id = ? AND status = ?", id, model.SessionActive).
		Updates(map[string]any{
			"status":     status,
			"ended_at":   endedAt,
			"total_cost": totalCost,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *sessionRepo) FindOpenTrackedTx(tx *gorm.DB, sessionID, itemID uuid.UUID) (*model.TrackedItem, error) {
	var t model.TrackedItem
	err := forUpdate(tx).
		Where("table_session_id = ? AND item_id = ?", sessionID, itemID).
		Where("NOT EXISTS (SELECT 1 FROM pos_order_items oi WHERE oi.tracked_item_id = tracked_items.id)").
		Order("created_at").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *sessionRepo) FindTrackedForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.TrackedItem, error) {
	var t model.TrackedItem
	if err := forUpdate(tx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *sessionRepo) SaveTrackedTx(tx *gorm.DB, t *model.TrackedItem) error {
	return tx.Omit("Item").Save(t).Error
}

func (r *sessionRepo) DeleteTrackedTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Where("id = ?", id).Delete(&model.TrackedItem{}).Error
}

func (r *sessionRepo) ListTrackedTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.TrackedItem, error) {
	var out []model.TrackedItem
	err := tx.Preload("Item").Where("table_session_id = ?", sessionID).Order("created_at").Find(&out).Error
	return out, err
}

func (r *sessionRepo) TrackedSettledTx(tx *gorm.DB, trackedID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Model(&model.PosOrderItem{}).Where("tracked_item_id = ?", trackedID).Count(&n).Error
	return n > 0, err
}

func (r *sessionRepo) SettledTrackedIDs(ctx context.Context, sessionID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.PosOrderItem{}).
			Joins("JOIN tracked_items ti ON ti.id = pos_order_items.tracked_item_id").
			Where("ti.table_session_id = ?", sessionID).
			Pluck("pos_order_items.tracked_item_id", &ids).Error
	})
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
