package services

import (
	"time"

	"github.com/lingovia/lingovia-backend/internal/types"
)

const (
	// PointsToRefillHeart is the cost of one heart in the shop.
	PointsToRefillHeart = 10
	// ChallengePointReward is granted once per first completion of a challenge.
	ChallengePointReward = 10
)

// PlanDefinition describes a purchasable subscription tier. A zero Duration
// means the perpetual tier.
type PlanDefinition struct {
	Plan       types.SubscriptionPlan
	PointsCost int
	Duration   time.Duration
}

var subscriptionPlans = map[types.SubscriptionPlan]PlanDefinition{
	types.PlanMonthly:  {Plan: types.PlanMonthly, PointsCost: 5000, Duration: 30 * 24 * time.Hour},
	types.PlanYearly:   {Plan: types.PlanYearly, PointsCost: 30000, Duration: 365 * 24 * time.Hour},
	types.PlanLifetime: {Plan: types.PlanLifetime, PointsCost: 99999, Duration: 0},
}
