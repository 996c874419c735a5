package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxHearts     = 5
	DefaultHearts = 5
)

// UserProgress is the single durable row per learner: hearts, points and the
// active course. UserID comes from the external identity provider, so it is
// a plain string key rather than one of our own uuids.
type UserProgress struct {
	UserID         string     `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserName       string     `gorm:"not null;default:'User';column:user_name" json:"user_name"`
	UserImgSrc     string     `gorm:"not null;default:'/mascot.svg';column:user_img_src" json:"user_img_src"`
	ActiveCourseID *uuid.UUID `gorm:"type:uuid;column:active_course_id" json:"active_course_id,omitempty"`
	ActiveCourse   *Course    `gorm:"constraint:OnDelete:SET NULL;foreignKey:ActiveCourseID;references:ID" json:"active_course,omitempty"`
	Hearts         int        `gorm:"not null;default:5;column:hearts" json:"hearts"`
	Points         int        `gorm:"not null;default:0;column:points" json:"points"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }
