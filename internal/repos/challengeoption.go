package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

// OptionPendingAudio pairs an option text with the language of the course it
// belongs to, for the offline audio backfill job.
type OptionPendingAudio struct {
	OptionID     uuid.UUID
	Text         string
	LanguageCode string
}

type ChallengeOptionRepo interface {
	GetChallenge(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) (*types.Challenge, error)
	// BackfillAudioSrc points every option with this exact text and no audio
	// yet at the given URL. Best-effort denormalization; the audio cache row
	// is the source of truth.
	BackfillAudioSrc(ctx context.Context, tx *gorm.DB, text, url string) (int64, error)
	// ListPendingAudio enumerates options that still lack an audio pointer,
	// joined up to their course for the language code.
	ListPendingAudio(ctx context.Context, tx *gorm.DB) ([]OptionPendingAudio, error)
}

type challengeOptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeOptionRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeOptionRepo {
	return &challengeOptionRepo{db: db, log: baseLog.With("repo", "ChallengeOptionRepo")}
}

func (r *challengeOptionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *challengeOptionRepo) GetChallenge(ctx context.Context, tx *gorm.DB, challengeID uuid.UUID) (*types.Challenge, error) {
	var row types.Challenge
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", challengeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *challengeOptionRepo) BackfillAudioSrc(ctx context.Context, tx *gorm.DB, text, url string) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&types.ChallengeOption{}).
		Where("text = ? AND audio_src IS NULL", text).
		Update("audio_src", url)
	return res.RowsAffected, res.Error
}

func (r *challengeOptionRepo) ListPendingAudio(ctx context.Context, tx *gorm.DB) ([]OptionPendingAudio, error) {
	var rows []OptionPendingAudio
	err := r.conn(tx).WithContext(ctx).
		Table("challenge_option").
		Select("challenge_option.id AS option_id, challenge_option.text AS text, course.language_code AS language_code").
		Joins("JOIN challenge ON challenge.id = challenge_option.challenge_id").
		Joins("JOIN lesson ON lesson.id = challenge.lesson_id").
		Joins("JOIN unit ON unit.id = lesson.unit_id").
		Joins("JOIN course ON course.id = unit.course_id").
		Where("challenge_option.audio_src IS NULL AND challenge_option.text <> ''").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
