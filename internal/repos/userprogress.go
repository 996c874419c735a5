package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type UserProgressRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProgress, error)
	GetWithActiveCourse(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProgress, error)
	Create(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error
	SetActiveCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) error

	// Guarded mutations. Each returns the number of rows affected; zero means
	// the guard rejected the update, so callers can map that to a gating
	// error without racing a separate read.
	AddPoints(ctx context.Context, tx *gorm.DB, userID string, delta int) (int64, error)
	DebitPoints(ctx context.Context, tx *gorm.DB, userID string, cost int) (int64, error)
	DecrementHeart(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	HealHeart(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
	RefillHeart(ctx context.Context, tx *gorm.DB, userID string, cost int) (int64, error)

	TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UserProgress, error)
}

type userProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressRepo {
	return &userProgressRepo{db: db, log: baseLog.With("repo", "UserProgressRepo")}
}

func (r *userProgressRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userProgressRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProgress, error) {
	var row types.UserProgress
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userProgressRepo) GetWithActiveCourse(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProgress, error) {
	var row types.UserProgress
	err := r.conn(tx).WithContext(ctx).
		Preload("ActiveCourse").
		Where("user_id = ?", userID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userProgressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserProgress) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *userProgressRepo) SetActiveCourse(ctx context.Context, tx *gorm.DB, userID string, courseID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ?", userID).
		Update("active_course_id", courseID).Error
}

func (r *userProgressRepo) AddPoints(ctx context.Context, tx *gorm.DB, userID string, delta int) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *userProgressRepo) DebitPoints(ctx context.Context, tx *gorm.DB, userID string, cost int) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND points >= ?", userID, cost).
		UpdateColumn("points", gorm.Expr("points - ?", cost))
	return res.RowsAffected, res.Error
}

func (r *userProgressRepo) DecrementHeart(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND hearts > 0", userID).
		UpdateColumn("hearts", gorm.Expr("hearts - 1"))
	return res.RowsAffected, res.Error
}

func (r *userProgressRepo) HealHeart(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND hearts < ?", userID, types.MaxHearts).
		UpdateColumn("hearts", gorm.Expr("hearts + 1"))
	return res.RowsAffected, res.Error
}

func (r *userProgressRepo) RefillHeart(ctx context.Context, tx *gorm.DB, userID string, cost int) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.UserProgress{}).
		Where("user_id = ? AND hearts < ? AND points >= ?", userID, types.MaxHearts, cost).
		UpdateColumns(map[string]interface{}{
			"hearts": gorm.Expr("hearts + 1"),
			"points": gorm.Expr("points - ?", cost),
		})
	return res.RowsAffected, res.Error
}

func (r *userProgressRepo) TopByPoints(ctx context.Context, tx *gorm.DB, limit int) ([]*types.UserProgress, error) {
	var rows []*types.UserProgress
	if limit <= 0 {
		return rows, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Order("points DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
