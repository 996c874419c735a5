package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/cache"
	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/types"
)

// AttemptResult reports the learner's balances after an economy mutation.
type AttemptResult struct {
	Hearts int `json:"hearts"`
	Points int `json:"points"`
}

// EconomyService owns every hearts/points mutation. All multi-step writes
// run in one transaction with guarded updates, so balances cannot go
// negative when two devices race the same account.
type EconomyService interface {
	ApplyCorrectAnswer(ctx context.Context, userID string, challengeID uuid.UUID) (*AttemptResult, error)
	ApplyWrongAnswer(ctx context.Context, userID string, challengeID uuid.UUID) (*AttemptResult, error)
	RefillHearts(ctx context.Context, userID string) (*AttemptResult, error)
}

type economyService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.UserProgressRepo
	attemptRepo  repos.ChallengeAttemptRepo
	subRepo      repos.SubscriptionRepo
	optionRepo   repos.ChallengeOptionRepo
	queryCache   cache.QueryCache

	now func() time.Time
}

func NewEconomyService(
	db *gorm.DB,
	log *logger.Logger,
	progressRepo repos.UserProgressRepo,
	attemptRepo repos.ChallengeAttemptRepo,
	subRepo repos.SubscriptionRepo,
	optionRepo repos.ChallengeOptionRepo,
	queryCache cache.QueryCache,
) EconomyService {
	if queryCache == nil {
		queryCache = cache.NewNoop()
	}
	return &economyService{
		db:           db,
		log:          log.With("service", "EconomyService"),
		progressRepo: progressRepo,
		attemptRepo:  attemptRepo,
		subRepo:      subRepo,
		optionRepo:   optionRepo,
		queryCache:   queryCache,
		now:          time.Now,
	}
}

func (s *economyService) ApplyCorrectAnswer(ctx context.Context, userID string, challengeID uuid.UUID) (*AttemptResult, error) {
	var result AttemptResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserProgressNotFound
		}
		if err != nil {
			return err
		}

		challenge, err := s.optionRepo.GetChallenge(ctx, tx, challengeID)
		if err != nil {
			return err
		}
		if challenge == nil {
			return ErrChallengeNotFound
		}

		attempts, err := s.attemptRepo.GetByUserAndChallenge(ctx, tx, userID, challengeID)
		if err != nil {
			return err
		}
		// A correct answer on an already-done challenge is a practice
		// replay: it heals a heart instead of awarding points again.
		practice := challengeDone(attempts)

		if !practice && progress.Hearts == 0 {
			active, err := s.subscriptionActive(ctx, tx, userID)
			if err != nil {
				return err
			}
			if !active {
				return ErrInsufficientHearts
			}
		}

		outcome := "first_completion"
		if practice {
			outcome = "practice"
		}
		attempt := &types.ChallengeAttempt{
			UserID:      userID,
			ChallengeID: challengeID,
			Completed:   true,
			Metadata:    datatypes.JSON([]byte(`{"outcome":"` + outcome + `"}`)),
		}
		if err := s.attemptRepo.Append(ctx, tx, attempt); err != nil {
			return err
		}

		if practice {
			// Heal is capped at MaxHearts by the guard; a no-op at full
			// hearts is fine.
			if _, err := s.progressRepo.HealHeart(ctx, tx, userID); err != nil {
				return err
			}
		} else {
			if _, err := s.progressRepo.AddPoints(ctx, tx, userID, ChallengePointReward); err != nil {
				return err
			}
		}

		updated, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		result = AttemptResult{Hearts: updated.Hearts, Points: updated.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return &result, nil
}

func (s *economyService) ApplyWrongAnswer(ctx context.Context, userID string, challengeID uuid.UUID) (*AttemptResult, error) {
	var result AttemptResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		progress, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserProgressNotFound
		}
		if err != nil {
			return err
		}

		active, err := s.subscriptionActive(ctx, tx, userID)
		if err != nil {
			return err
		}
		if active {
			result = AttemptResult{Hearts: progress.Hearts, Points: progress.Points}
			return nil
		}

		affected, err := s.progressRepo.DecrementHeart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientHearts
		}

		updated, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		result = AttemptResult{Hearts: updated.Hearts, Points: updated.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return &result, nil
}

func (s *economyService) RefillHearts(ctx context.Context, userID string) (*AttemptResult, error) {
	var result AttemptResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.progressRepo.RefillHeart(ctx, tx, userID, PointsToRefillHeart)
		if err != nil {
			return err
		}
		if affected == 0 {
			// The guard rejected the update; re-read to tell the caller why.
			progress, err := s.progressRepo.GetByUserID(ctx, tx, userID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserProgressNotFound
			}
			if err != nil {
				return err
			}
			if progress.Hearts >= types.MaxHearts {
				return ErrHeartsAlreadyFull
			}
			return ErrInsufficientPoints
		}

		updated, err := s.progressRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}
		result = AttemptResult{Hearts: updated.Hearts, Points: updated.Points}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return &result, nil
}

func (s *economyService) subscriptionActive(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	sub, err := s.subRepo.GetByUserID(ctx, tx, userID)
	if err != nil {
		return false, err
	}
	return sub.ActiveAt(s.now()), nil
}

func (s *economyService) invalidate(ctx context.Context, userID string) {
	if err := s.queryCache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("query cache invalidation failed", "user_id", userID, "error", err)
	}
}
