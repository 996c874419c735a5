package types

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"not null;column:title" json:"title"`
	ImgSrc       string    `gorm:"not null;column:img_src" json:"img_src"`
	LanguageCode string    `gorm:"not null;column:language_code" json:"language_code"`
	Units        []*Unit   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"units,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

type Unit struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index:idx_unit_course_order,unique" json:"course_id"`
	Course      *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"not null;column:description" json:"description"`
	Order       int       `gorm:"not null;column:position;index:idx_unit_course_order,unique" json:"order"`
	Lessons     []*Lesson `gorm:"constraint:OnDelete:CASCADE;foreignKey:UnitID;references:ID" json:"lessons,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Unit) TableName() string { return "unit" }

type Lesson struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID      uuid.UUID    `gorm:"type:uuid;not null;index:idx_lesson_unit_order,unique" json:"unit_id"`
	Unit        *Unit        `gorm:"constraint:OnDelete:CASCADE;foreignKey:UnitID;references:ID" json:"unit,omitempty"`
	Title       string       `gorm:"not null;column:title" json:"title"`
	Description string       `gorm:"not null;column:description" json:"description"`
	Order       int          `gorm:"not null;column:position;index:idx_lesson_unit_order,unique" json:"order"`
	Challenges  []*Challenge `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"challenges,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
