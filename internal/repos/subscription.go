package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type SubscriptionRepo interface {
	// GetByUserID returns nil without error when the user has never purchased.
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserSubscription, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.UserSubscription) error
	Update(ctx context.Context, tx *gorm.DB, row *types.UserSubscription) error
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

func (r *subscriptionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *subscriptionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserSubscription, error) {
	var row types.UserSubscription
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *subscriptionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserSubscription) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *subscriptionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.UserSubscription) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}
