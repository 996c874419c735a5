package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type AudioCacheRepo interface {
	// Get returns nil without error on a cache miss.
	Get(ctx context.Context, tx *gorm.DB, text, languageCode string) (*types.AudioCacheEntry, error)
	// Insert writes the entry unless the (text, language_code) key already
	// exists; a concurrent duplicate is silently dropped so the first write
	// wins. Callers re-read after inserting to observe the winning row.
	Insert(ctx context.Context, tx *gorm.DB, row *types.AudioCacheEntry) error
}

type audioCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudioCacheRepo(db *gorm.DB, baseLog *logger.Logger) AudioCacheRepo {
	return &audioCacheRepo{db: db, log: baseLog.With("repo", "AudioCacheRepo")}
}

func (r *audioCacheRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *audioCacheRepo) Get(ctx context.Context, tx *gorm.DB, text, languageCode string) (*types.AudioCacheEntry, error) {
	var row types.AudioCacheEntry
	err := r.conn(tx).WithContext(ctx).
		Where("text = ? AND language_code = ?", text, languageCode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *audioCacheRepo) Insert(ctx context.Context, tx *gorm.DB, row *types.AudioCacheEntry) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "text"}, {Name: "language_code"}},
			DoNothing: true,
		}).
		Create(row).Error
}
