package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lingovia/lingovia-backend/internal/cache"
	"github.com/lingovia/lingovia-backend/internal/platform/logger"
	"github.com/lingovia/lingovia-backend/internal/repos"
	"github.com/lingovia/lingovia-backend/internal/types"
)

// SubscriptionStatus is the read-side view of a user's subscription.
type SubscriptionStatus struct {
	Plan      types.SubscriptionPlan `json:"plan"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	IsActive  bool                   `json:"is_active"`
}

type SubscriptionService interface {
	// Purchase debits the plan's points cost and upserts the single
	// subscription row for the user. Purchases extend an unexpired
	// subscription rather than resetting it.
	Purchase(ctx context.Context, userID string, plan types.SubscriptionPlan) (*SubscriptionStatus, error)
	// Get returns nil when the user never purchased.
	Get(ctx context.Context, userID string) (*SubscriptionStatus, error)
}

type subscriptionService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.UserProgressRepo
	subRepo      repos.SubscriptionRepo
	queryCache   cache.QueryCache

	now func() time.Time
}

func NewSubscriptionService(
	db *gorm.DB,
	log *logger.Logger,
	progressRepo repos.UserProgressRepo,
	subRepo repos.SubscriptionRepo,
	queryCache cache.QueryCache,
) SubscriptionService {
	if queryCache == nil {
		queryCache = cache.NewNoop()
	}
	return &subscriptionService{
		db:           db,
		log:          log.With("service", "SubscriptionService"),
		progressRepo: progressRepo,
		subRepo:      subRepo,
		queryCache:   queryCache,
		now:          time.Now,
	}
}

func (s *subscriptionService) Purchase(ctx context.Context, userID string, plan types.SubscriptionPlan) (*SubscriptionStatus, error) {
	def, ok := subscriptionPlans[plan]
	if !ok {
		return nil, ErrInvalidPlan
	}

	var status SubscriptionStatus

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.progressRepo.GetByUserID(ctx, tx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserProgressNotFound
			}
			return err
		}

		now := s.now()
		existing, err := s.subRepo.GetByUserID(ctx, tx, userID)
		if err != nil {
			return err
		}

		// Timed tiers cannot stack on top of the perpetual tier; treat the
		// purchase as a no-op instead of eating the learner's points.
		if existing != nil && existing.Plan == types.PlanLifetime && existing.ActiveAt(now) {
			status = SubscriptionStatus{Plan: existing.Plan, ExpiresAt: existing.ExpiresAt, IsActive: true}
			return nil
		}

		// Points gate: the debit is guarded, so a concurrent spend cannot
		// push the balance negative.
		affected, err := s.progressRepo.DebitPoints(ctx, tx, userID, def.PointsCost)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientPoints
		}

		expiresAt := computeExpiry(existing, def, now)

		if existing != nil {
			existing.Plan = def.Plan
			existing.PointsCost = def.PointsCost
			existing.ExpiresAt = expiresAt
			existing.UpdatedAt = now
			if err := s.subRepo.Update(ctx, tx, existing); err != nil {
				return err
			}
		} else {
			row := &types.UserSubscription{
				UserID:     userID,
				Plan:       def.Plan,
				PointsCost: def.PointsCost,
				ExpiresAt:  expiresAt,
			}
			if err := s.subRepo.Create(ctx, tx, row); err != nil {
				return err
			}
		}

		status = SubscriptionStatus{Plan: def.Plan, ExpiresAt: expiresAt, IsActive: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.queryCache.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn("query cache invalidation failed", "user_id", userID, "error", err)
	}
	return &status, nil
}

// computeExpiry extends from the later of (existing expiry, now) so stacked
// purchases add time on top instead of resetting. The perpetual tier has no
// expiry at all.
func computeExpiry(existing *types.UserSubscription, def PlanDefinition, now time.Time) *time.Time {
	if def.Duration == 0 {
		return nil
	}
	start := now
	if existing != nil && existing.ExpiresAt != nil && existing.ExpiresAt.After(now) {
		start = *existing.ExpiresAt
	}
	t := start.Add(def.Duration)
	return &t
}

func (s *subscriptionService) Get(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.subRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return &SubscriptionStatus{
		Plan:      sub.Plan,
		ExpiresAt: sub.ExpiresAt,
		IsActive:  sub.ActiveAt(s.now()),
	}, nil
}
