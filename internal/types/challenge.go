package types

import (
	"time"

	"github.com/google/uuid"
)

type ChallengeType string

const (
	ChallengeTypeSelect ChallengeType = "SELECT"
	ChallengeTypeAssist ChallengeType = "ASSIST"
)

type Challenge struct {
	ID        uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_challenge_lesson_order,unique" json:"lesson_id"`
	Lesson    *Lesson            `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Type      ChallengeType      `gorm:"not null;column:type" json:"type"`
	Question  string             `gorm:"not null;column:question" json:"question"`
	Order     int                `gorm:"not null;column:position;index:idx_challenge_lesson_order,unique" json:"order"`
	Options   []*ChallengeOption `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"options,omitempty"`
	CreatedAt time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time          `gorm:"not null" json:"updated_at"`
}

func (Challenge) TableName() string { return "challenge" }

type ChallengeOption struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"challenge_id"`
	Challenge   *Challenge `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChallengeID;references:ID" json:"challenge,omitempty"`
	Text        string     `gorm:"not null;column:text" json:"text"`
	Correct     bool       `gorm:"not null;column:correct" json:"correct"`
	ImgSrc      *string    `gorm:"column:img_src" json:"img_src,omitempty"`
	AudioSrc    *string    `gorm:"column:audio_src" json:"audio_src,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (ChallengeOption) TableName() string { return "challenge_option" }
