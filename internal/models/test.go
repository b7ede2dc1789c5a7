package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation phases shared by weekly tests and contests. The terminal
// "completed" phase is only reached through an explicit publish action,
// never by time alone.
const (
	ItemStatusUpcoming   = "upcoming"
	ItemStatusLive       = "live"
	ItemStatusEvaluation = "evaluation"
	ItemStatusCompleted  = "completed"
)

// WeeklyTest is a scheduled single-attempt multiple-choice assessment.
type WeeklyTest struct {
	ID                 uint                              `gorm:"primaryKey" json:"id"`
	Title              string                            `gorm:"size:255;not null" json:"title"`
	Description        string                            `gorm:"type:text" json:"description"`
	Groups             datatypes.JSONSlice[string]       `gorm:"type:json" json:"groups"`
	ProOnly            bool                              `gorm:"not null;default:false" json:"pro_only"`
	Questions          datatypes.JSONSlice[QuizQuestion] `gorm:"type:json" json:"questions"`
	DurationMinutes    int                               `gorm:"not null;default:0" json:"duration_minutes"`
	LiveAt             *time.Time                        `json:"live_at"`
	ExpiresAt          *time.Time                        `json:"expires_at"`
	IsResultsPublished bool                              `gorm:"not null;default:false" json:"is_results_published"`
	CreatedAt          time.Time                         `json:"created_at"`
	UpdatedAt          time.Time                         `json:"updated_at"`
}

// StatusAt derives the test's lifecycle phase from its schedule. Publishing
// is the only way to reach "completed".
func (t WeeklyTest) StatusAt(now time.Time) string {
	return scheduleStatus(t.LiveAt, t.ExpiresAt, t.IsResultsPublished, now)
}

// IsOpen reports whether submissions are currently accepted.
func (t WeeklyTest) IsOpen(now time.Time) bool {
	return t.StatusAt(now) == ItemStatusLive
}

func scheduleStatus(liveAt, expiresAt *time.Time, published bool, now time.Time) string {
	if published {
		return ItemStatusCompleted
	}
	if liveAt != nil && now.Before(*liveAt) {
		return ItemStatusUpcoming
	}
	if expiresAt != nil && !now.Before(*expiresAt) {
		return ItemStatusEvaluation
	}
	return ItemStatusLive
}
