package repository

import (
	"context"

	"github.com/boring-ventures/billar-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// ListAlertEmails returns the e-mail addresses of active users of a company
	// holding one of the given roles.
	ListAlertEmails(ctx context.Context, companyID uuid.UUID, roles ...string) ([]string, error)
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("username = ? AND active = ?", username, true).First(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListAlertEmails(ctx context.Context, companyID uuid.UUID, roles ...string) ([]string, error) {
	var emails []string
	err := withReadRetry(ctx, func() error {
		return r.db.WithContext(ctx).Model(&model.User{}).
			Where("company_id = ? AND active = ? AND role IN ? AND email IS NOT NULL AND email <> ''", companyID, true, roles).
			Pluck("email", &emails).Error
	})
	return emails, err
}
