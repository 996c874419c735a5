package types

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan string

const (
	PlanMonthly  SubscriptionPlan = "MONTHLY"
	PlanYearly   SubscriptionPlan = "YEARLY"
	PlanLifetime SubscriptionPlan = "LIFETIME"
)

// UserSubscription is one row per user. Repeat purchases update the row
// (extension), they never insert a second one.
type UserSubscription struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string           `gorm:"not null;uniqueIndex;column:user_id" json:"user_id"`
	Plan       SubscriptionPlan `gorm:"not null;column:plan" json:"plan"`
	PointsCost int              `gorm:"not null;column:points_cost" json:"points_cost"`
	ExpiresAt  *time.Time       `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt  time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"not null" json:"updated_at"`
}

func (UserSubscription) TableName() string { return "user_subscription" }

// ActiveAt reports whether the subscription is active at the given instant.
// A nil ExpiresAt means the perpetual tier.
func (s *UserSubscription) ActiveAt(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.ExpiresAt == nil {
		return s.Plan == PlanLifetime
	}
	return s.ExpiresAt.After(now)
}
