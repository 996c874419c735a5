package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChallengeAttempt is an append-only event log of challenge outcomes. A
// challenge counts as done for a user when at least one attempt row exists
// and every row has Completed set. Rows are never updated in place; correct
// re-attempts append new rows.
type ChallengeAttempt struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string         `gorm:"not null;index:idx_attempt_user_challenge;column:user_id" json:"user_id"`
	ChallengeID uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_user_challenge" json:"challenge_id"`
	Challenge   *Challenge     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	Completed   bool           `gorm:"not null;default:false;column:completed" json:"completed"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (ChallengeAttempt) TableName() string { return "challenge_attempt" }
