package models

import "time"

// LeaderboardEntry is the rolling tally for one (user, period) pair. Periods
// are the keys produced by the scoring package: "all-time", "weekly-<y>-W<ww>"
// and "monthly-<y>-<mm>". Totals are incremented on first-time solves only,
// so the sum over a period must always be recomputable from Progress rows.
type LeaderboardEntry struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_leaderboard_user_period" json:"user_id"`
	Period       string    `gorm:"size:32;not null;uniqueIndex:idx_leaderboard_user_period;index" json:"period"`
	TotalPoints  int       `gorm:"not null;default:0" json:"total_points"`
	TotalXP      int       `gorm:"not null;default:0" json:"total_xp"`
	TotalSolved  int       `gorm:"not null;default:0" json:"total_solved"`
	EasySolved   int       `gorm:"not null;default:0" json:"easy_solved"`
	MediumSolved int       `gorm:"not null;default:0" json:"medium_solved"`
	HardSolved   int       `gorm:"not null;default:0" json:"hard_solved"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AddSolve folds one first-time solve into the tally.
func (e *LeaderboardEntry) AddSolve(points, xp int, difficulty string) {
	e.TotalPoints += points
	e.TotalXP += xp
	e.TotalSolved++
	switch difficulty {
	case DifficultyEasy:
		e.EasySolved++
	case DifficultyMedium:
		e.MediumSolved++
	case DifficultyHard:
		e.HardSolved++
	}
}
