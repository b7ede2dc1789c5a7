package dto

import (
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// AchievementResponse is one unlocked achievement.
type AchievementResponse struct {
	Code       string    `json:"code"`
	XPBonus    int       `json:"xp_bonus"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// StreakResponse reports the state of a user's daily streak.
type StreakResponse struct {
	Date        string `json:"date"`
	StreakCount int    `json:"streak_count"`
	Continued   bool   `json:"continued"`
}

// ProfileResponse is the learner's own dashboard: identity, XP, level,
// streak and unlocks.
type ProfileResponse struct {
	UserID           uint                  `json:"user_id"`
	Name             string                `json:"name"`
	Group            string                `json:"group"`
	XP               int                   `json:"xp"`
	Level            int                   `json:"level"`
	IsPro            bool                  `json:"is_pro"`
	ProExpiresAt     *time.Time            `json:"pro_expires_at,omitempty"`
	CurrentStreak    int                   `json:"current_streak"`
	ChallengesSolved int                   `json:"challenges_solved"`
	LessonsCompleted int                   `json:"lessons_completed"`
	Achievements     []AchievementResponse `json:"achievements"`
}

// NewAchievementResponses maps achievement models.
func NewAchievementResponses(achievements []models.Achievement) []AchievementResponse {
	responses := make([]AchievementResponse, 0, len(achievements))
	for _, achievement := range achievements {
		responses = append(responses, AchievementResponse{
			Code:       achievement.Code,
			XPBonus:    achievement.XPBonus,
			UnlockedAt: achievement.UnlockedAt,
		})
	}
	return responses
}
