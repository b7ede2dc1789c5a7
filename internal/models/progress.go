package models

import "time"

// Item kinds a Progress row can track.
const (
	ItemTypeLesson    = "lesson"
	ItemTypeChallenge = "challenge"
	ItemTypeTest      = "test"
	ItemTypeContest   = "contest"
)

// Progress is the per-(user, item) aggregate: attempt count and the first
// successful outcome. Exactly one row exists per pair regardless of how many
// submissions the user makes. BestSubmissionID is a weak reference resolved
// by lookup, never a cascading association.
type Progress struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"not null;uniqueIndex:idx_progress_user_item" json:"user_id"`
	ItemType         string     `gorm:"size:16;not null;uniqueIndex:idx_progress_user_item" json:"item_type"`
	ItemID           uint       `gorm:"not null;uniqueIndex:idx_progress_user_item" json:"item_id"`
	Attempts         int        `gorm:"not null;default:0" json:"attempts"`
	Solved           bool       `gorm:"not null;default:false" json:"solved"`
	BestSubmissionID *uint      `json:"best_submission_id"`
	BestScore        int        `gorm:"not null;default:0" json:"best_score"`
	SolvedAt         *time.Time `json:"solved_at"`
	LastAttemptAt    time.Time  `json:"last_attempt_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DailyStreak is one calendar day of engagement. Date is a "YYYY-MM-DD"
// string; StreakCount continues from the immediately preceding day's row or
// resets to 1 when that day is missing.
type DailyStreak struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_daily_streaks_user_date" json:"user_id"`
	Date        string    `gorm:"size:10;not null;uniqueIndex:idx_daily_streaks_user_date" json:"date"`
	StreakCount int       `gorm:"not null;default:1" json:"streak_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Achievement codes the progress tracker can unlock.
const (
	AchievementFirstLesson    = "first_lesson"
	AchievementFirstChallenge = "first_challenge"
	AchievementStreakWeek     = "streak_7"
	AchievementCourseComplete = "course_complete"
)

// Achievement is a one-time unlock per (user, code) with its XP bonus.
type Achievement struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_achievements_user_code" json:"user_id"`
	Code       string    `gorm:"size:64;not null;uniqueIndex:idx_achievements_user_code" json:"code"`
	XPBonus    int       `gorm:"not null;default:0" json:"xp_bonus"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
