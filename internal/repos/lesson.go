package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type LessonRepo interface {
	// GetByIDDeep loads a lesson with its ordered challenges and their
	// options, nil when the lesson does not exist.
	GetByIDDeep(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error)
	// GetLanguageCode resolves the language of the course a lesson belongs
	// to. Returns "" when the lesson is orphaned.
	GetLanguageCode(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (string, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *lessonRepo) GetByIDDeep(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error) {
	var row types.Lesson
	err := r.conn(tx).WithContext(ctx).
		Preload("Challenges", orderedByPosition).
		Preload("Challenges.Options").
		Preload("Unit.Course").
		Where("id = ?", id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *lessonRepo) GetLanguageCode(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (string, error) {
	var row types.Lesson
	err := r.conn(tx).WithContext(ctx).
		Preload("Unit.Course").
		Where("id = ?", lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if row.Unit == nil || row.Unit.Course == nil {
		return "", nil
	}
	return row.Unit.Course.LanguageCode, nil
}
