package models

import (
	"time"

	"gorm.io/datatypes"
)

// Contest is a scheduled free-form competition graded by rubric rather than
// an answer key. Entries are human-evaluated before ranks are assigned.
type Contest struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	Title              string                      `gorm:"size:255;not null" json:"title"`
	Description        string                      `gorm:"type:text" json:"description"`
	Rubric             string                      `gorm:"type:text" json:"rubric"`
	Prizes             datatypes.JSONSlice[string] `gorm:"type:json" json:"prizes"`
	Groups             datatypes.JSONSlice[string] `gorm:"type:json" json:"groups"`
	ProOnly            bool                        `gorm:"not null;default:false" json:"pro_only"`
	LiveAt             *time.Time                  `json:"live_at"`
	ExpiresAt          *time.Time                  `json:"expires_at"`
	IsResultsPublished bool                        `gorm:"not null;default:false" json:"is_results_published"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

// StatusAt derives the contest's lifecycle phase from its schedule.
func (c Contest) StatusAt(now time.Time) string {
	return scheduleStatus(c.LiveAt, c.ExpiresAt, c.IsResultsPublished, now)
}

// IsOpen reports whether entries are currently accepted.
func (c Contest) IsOpen(now time.Time) bool {
	return c.StatusAt(now) == ItemStatusLive
}

// ContestEntry is a learner's single entry into a contest. Marks stay nil
// until an evaluator grades the entry against the rubric.
type ContestEntry struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_contest_entries_user_contest" json:"user_id"`
	ContestID   uint       `gorm:"not null;uniqueIndex:idx_contest_entries_user_contest;index" json:"contest_id"`
	Entry       string     `gorm:"type:text" json:"entry"`
	Marks       *float64   `json:"marks"`
	Feedback    string     `gorm:"type:text" json:"feedback"`
	Rank        *int       `json:"rank"`
	EvaluatedBy *uint      `json:"evaluated_by"`
	EvaluatedAt *time.Time `json:"evaluated_at"`
	SubmittedAt time.Time  `json:"submitted_at"`
}

// IsEvaluated reports whether the entry has been graded.
func (e ContestEntry) IsEvaluated() bool {
	return e.Marks != nil
}
