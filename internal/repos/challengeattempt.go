package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/types"
)

type ChallengeAttemptRepo interface {
	// Append inserts a new attempt event. Rows are never updated in place.
	Append(ctx context.Context, tx *gorm.DB, row *types.ChallengeAttempt) error
	GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID string, challengeID uuid.UUID) ([]*types.ChallengeAttempt, error)
	GetByUserAndChallengeIDs(ctx context.Context, tx *gorm.DB, userID string, challengeIDs []uuid.UUID) ([]*types.ChallengeAttempt, error)
}

type challengeAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeAttemptRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeAttemptRepo {
	return &challengeAttemptRepo{db: db, log: baseLog.With("repo", "ChallengeAttemptRepo")}
}

func (r *challengeAttemptRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *challengeAttemptRepo) Append(ctx context.Context, tx *gorm.DB, row *types.ChallengeAttempt) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *challengeAttemptRepo) GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID string, challengeID uuid.UUID) ([]*types.ChallengeAttempt, error) {
	var rows []*types.ChallengeAttempt
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *challengeAttemptRepo) GetByUserAndChallengeIDs(ctx context.Context, tx *gorm.DB, userID string, challengeIDs []uuid.UUID) ([]*types.ChallengeAttempt, error) {
	var rows []*types.ChallengeAttempt
	if len(challengeIDs) == 0 {
		return rows, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND challenge_id IN ?", userID, challengeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
