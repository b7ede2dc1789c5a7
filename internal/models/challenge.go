package models

import (
	"time"

	"gorm.io/datatypes"
)

// Challenge difficulty buckets, used for points defaults and leaderboard
// bucket counters.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// CodingChallenge is an admin-authored programming exercise judged against
// an ordered set of test cases. Points are fixed at authoring time.
type CodingChallenge struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Prompt           string                      `gorm:"type:text" json:"prompt"`
	Difficulty       string                      `gorm:"size:16;not null;default:easy" json:"difficulty"`
	Points           int                         `gorm:"not null;default:0" json:"points"`
	Groups           datatypes.JSONSlice[string] `gorm:"type:json" json:"groups"`
	ProOnly          bool                        `gorm:"not null;default:false" json:"pro_only"`
	LiveAt           *time.Time                  `json:"live_at"`
	ExpiresAt        *time.Time                  `json:"expires_at"`
	TotalSubmissions int                         `gorm:"not null;default:0" json:"total_submissions"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	TestCases        []ChallengeTestCase         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases,omitempty"`
}

// IsOpen reports whether the challenge accepts submissions at the given
// instant. A nil window means always open.
func (c CodingChallenge) IsOpen(now time.Time) bool {
	if c.LiveAt != nil && now.Before(*c.LiveAt) {
		return false
	}
	if c.ExpiresAt != nil && !now.Before(*c.ExpiresAt) {
		return false
	}
	return true
}

// ChallengeTestCase is one judge input/output pair. Hidden cases are judged
// but never returned to learners.
type ChallengeTestCase struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	CodingChallengeID uint      `gorm:"not null;index" json:"coding_challenge_id"`
	Position          int       `gorm:"not null;default:0" json:"position"`
	Input             string    `gorm:"type:text" json:"input"`
	ExpectedOutput    string    `gorm:"type:text" json:"expected_output"`
	Hidden            bool      `gorm:"not null;default:false" json:"hidden"`
	CreatedAt         time.Time `json:"created_at"`
}
