package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type CourseRepo interface {
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error)
	// GetUnitsDeep loads the ordered unit -> lesson -> challenge tree for a
	// course. Challenge options are not loaded here; lesson play goes through
	// LessonRepo.
	GetUnitsDeep(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Unit, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func orderedByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *courseRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var rows []*types.Course
	if err := r.conn(tx).WithContext(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	var row types.Course
	err := r.conn(tx).WithContext(ctx).
		Preload("Units", orderedByPosition).
		Preload("Units.Lessons", orderedByPosition).
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

func (r *courseRepo) GetUnitsDeep(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Unit, error) {
	var rows []*types.Unit
	err := r.conn(tx).WithContext(ctx).
		Preload("Lessons", orderedByPosition).
		Preload("Lessons.Challenges", orderedByPosition).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
