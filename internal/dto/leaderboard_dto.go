package dto

import "github.com/noah-isme/kidlearn-api/internal/models"

// LeaderboardRowResponse is one row of a points leaderboard for a period.
type LeaderboardRowResponse struct {
	Rank         int  `json:"rank"`
	UserID       uint `json:"user_id"`
	TotalPoints  int  `json:"total_points"`
	TotalXP      int  `json:"total_xp"`
	TotalSolved  int  `json:"total_solved"`
	EasySolved   int  `json:"easy_solved"`
	MediumSolved int  `json:"medium_solved"`
	HardSolved   int  `json:"hard_solved"`
}

// LeaderboardResponse is a bounded top-N for one period.
type LeaderboardResponse struct {
	Period string                   `json:"period"`
	Rows   []LeaderboardRowResponse `json:"rows"`
}

// NewLeaderboardResponse maps sorted entries to ranked rows.
func NewLeaderboardResponse(period string, entries []models.LeaderboardEntry) LeaderboardResponse {
	response := LeaderboardResponse{Period: period, Rows: make([]LeaderboardRowResponse, 0, len(entries))}
	for i, entry := range entries {
		response.Rows = append(response.Rows, LeaderboardRowResponse{
			Rank:         i + 1,
			UserID:       entry.UserID,
			TotalPoints:  entry.TotalPoints,
			TotalXP:      entry.TotalXP,
			TotalSolved:  entry.TotalSolved,
			EasySolved:   entry.EasySolved,
			MediumSolved: entry.MediumSolved,
			HardSolved:   entry.HardSolved,
		})
	}
	return response
}

// XPLeaderboardRowResponse is one row of the raw-XP leaderboard computed by
// scanning users at query time.
type XPLeaderboardRowResponse struct {
	Rank   int    `json:"rank"`
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
	Group  string `json:"group"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// XPLeaderboardResponse is a bounded XP top-N, optionally per group.
type XPLeaderboardResponse struct {
	Group string                     `json:"group,omitempty"`
	Rows  []XPLeaderboardRowResponse `json:"rows"`
}

// NewXPLeaderboardResponse maps XP-sorted users to ranked rows.
func NewXPLeaderboardResponse(group string, users []models.User) XPLeaderboardResponse {
	response := XPLeaderboardResponse{Group: group, Rows: make([]XPLeaderboardRowResponse, 0, len(users))}
	for i, user := range users {
		response.Rows = append(response.Rows, XPLeaderboardRowResponse{
			Rank:   i + 1,
			UserID: user.ID,
			Name:   user.Name,
			Group:  user.Group,
			XP:     user.XP,
			Level:  user.Level(),
		})
	}
	return response
}
