package models

import (
	"time"

	"gorm.io/datatypes"
)

// Course groups an ordered set of lessons for one cohort track.
type Course struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Groups      datatypes.JSONSlice[string] `gorm:"type:json" json:"groups"`
	ProOnly     bool                        `gorm:"not null;default:false" json:"pro_only"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Lessons     []Lesson                    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"lessons,omitempty"`
}

// QuizQuestion is one multiple-choice question inside a lesson quiz or a
// weekly test. CorrectIndex points into Options.
type QuizQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Marks        int      `json:"marks"`
}

// Lesson is a single learning unit with rich-text body and an optional quiz.
// XPReward is fixed at authoring time; it must not change once submissions
// have been graded against it.
type Lesson struct {
	ID        uint                              `gorm:"primaryKey" json:"id"`
	CourseID  uint                              `gorm:"not null;index" json:"course_id"`
	Title     string                            `gorm:"size:255;not null" json:"title"`
	Body      string                            `gorm:"type:text" json:"body"`
	Position  int                               `gorm:"not null;default:0" json:"position"`
	XPReward  int                               `gorm:"not null;default:0" json:"xp_reward"`
	Quiz      datatypes.JSONSlice[QuizQuestion] `gorm:"type:json" json:"quiz"`
	CreatedAt time.Time                         `json:"created_at"`
	UpdatedAt time.Time                         `json:"updated_at"`
}
