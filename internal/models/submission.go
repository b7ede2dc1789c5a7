package models

import (
	"time"

	"gorm.io/datatypes"
)

// ChallengeSubmission statuses. A submission is created pending, may be
// marked running while the external judge works, and settles into exactly
// one terminal status.
const (
	SubmissionStatusPending           = "pending"
	SubmissionStatusRunning           = "running"
	SubmissionStatusAccepted          = "accepted"
	SubmissionStatusWrongAnswer       = "wrong_answer"
	SubmissionStatusTimeLimitExceeded = "time_limit_exceeded"
	SubmissionStatusRuntimeError      = "runtime_error"
	SubmissionStatusCompileError      = "compile_error"
)

// TestCaseResult is the judge's verdict for one test case, persisted with
// the submission for review.
type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
	TimeTakenMs    int64  `json:"time_taken_ms"`
	MemoryKB       int64  `json:"memory_kb"`
	Error          string `json:"error,omitempty"`
}

// ChallengeSubmission is a single attempt at a coding challenge. Many rows
// may exist per (user, challenge); the aggregate outcome lives on Progress.
type ChallengeSubmission struct {
	ID           uint                                `gorm:"primaryKey" json:"id"`
	UserID       uint                                `gorm:"not null;index:idx_challenge_subs_user_item" json:"user_id"`
	ChallengeID  uint                                `gorm:"not null;index:idx_challenge_subs_user_item;index" json:"challenge_id"`
	Language     string                              `gorm:"size:32;not null" json:"language"`
	Code         string                              `gorm:"type:text" json:"code"`
	Status       string                              `gorm:"size:32;not null" json:"status"`
	PassedCount  int                                 `gorm:"not null;default:0" json:"passed_count"`
	TotalCount   int                                 `gorm:"not null;default:0" json:"total_count"`
	PointsEarned int                                 `gorm:"not null;default:0" json:"points_earned"`
	XPEarned     int                                 `gorm:"not null;default:0" json:"xp_earned"`
	TestResults  datatypes.JSONSlice[TestCaseResult] `gorm:"type:json" json:"test_results"`
	SubmittedAt  time.Time                           `json:"submitted_at"`
	CompletedAt  *time.Time                          `json:"completed_at"`
}

// IsTerminal reports whether the submission already holds an official
// verdict. Result recording must happen at most once per submission.
func (s ChallengeSubmission) IsTerminal() bool {
	switch s.Status {
	case SubmissionStatusPending, SubmissionStatusRunning:
		return false
	}
	return true
}

// TestSubmission is a learner's single permitted attempt at a weekly test.
// Score fields stay hidden from the learner until results are published.
type TestSubmission struct {
	ID               uint                     `gorm:"primaryKey" json:"id"`
	UserID           uint                     `gorm:"not null;uniqueIndex:idx_test_subs_user_test" json:"user_id"`
	TestID           uint                     `gorm:"not null;uniqueIndex:idx_test_subs_user_test;index" json:"test_id"`
	Answers          datatypes.JSONSlice[int] `gorm:"type:json" json:"answers"`
	Score            int                      `gorm:"not null;default:0" json:"score"`
	Percentage       int                      `gorm:"not null;default:0" json:"percentage"`
	XPEarned         int                      `gorm:"not null;default:0" json:"xp_earned"`
	Rank             *int                     `json:"rank"`
	TimeTakenSeconds int                      `gorm:"not null;default:0" json:"time_taken_seconds"`
	SubmittedAt      time.Time                `json:"submitted_at"`
}
