package dto

import (
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// TestSubmissionRequest is the payload for a weekly test attempt.
type TestSubmissionRequest struct {
	TestID           uint  `json:"test_id" validate:"required"`
	Answers          []int `json:"answers" validate:"required"`
	TimeTakenSeconds int   `json:"time_taken_seconds" validate:"gte=0"`
}

// TestSubmitResponse acknowledges a test submission. AlreadySubmitted is the
// expected steady-state answer to a duplicate attempt, referencing the
// original submission. Scores are never included here.
type TestSubmitResponse struct {
	SubmissionID     uint      `json:"submission_id"`
	AlreadySubmitted bool      `json:"already_submitted"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// TestQuestionResponse is the learner-facing view of a test question: the
// correct index and marks are stripped.
type TestQuestionResponse struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// TestResponse is the learner-facing view of a weekly test.
type TestResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Status          string                 `json:"status"`
	DurationMinutes int                    `json:"duration_minutes"`
	LiveAt          *time.Time             `json:"live_at,omitempty"`
	ExpiresAt       *time.Time             `json:"expires_at,omitempty"`
	Questions       []TestQuestionResponse `json:"questions,omitempty"`
}

// NewTestResponse maps a weekly test. Questions are only attached while the
// test is live; the answer key never leaves the server.
func NewTestResponse(test models.WeeklyTest, now time.Time) TestResponse {
	response := TestResponse{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		Status:          test.StatusAt(now),
		DurationMinutes: test.DurationMinutes,
		LiveAt:          test.LiveAt,
		ExpiresAt:       test.ExpiresAt,
	}

	if response.Status == models.ItemStatusLive {
		for _, question := range test.Questions {
			response.Questions = append(response.Questions, TestQuestionResponse{
				Prompt:  question.Prompt,
				Options: question.Options,
			})
		}
	}

	return response
}

// TestResultResponse is a learner's own result. Before publish only the
// confirmation fields are populated; score, percentage and rank appear once
// results are published.
type TestResultResponse struct {
	SubmissionID uint      `json:"submission_id"`
	TestID       uint      `json:"test_id"`
	Submitted    bool      `json:"submitted"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Score        *int      `json:"score,omitempty"`
	Percentage   *int      `json:"percentage,omitempty"`
	XPEarned     *int      `json:"xp_earned,omitempty"`
	Rank         *int      `json:"rank,omitempty"`
}

// NewTestResultResponse maps a submission, withholding score fields until
// results are published.
func NewTestResultResponse(submission models.TestSubmission, published bool) TestResultResponse {
	response := TestResultResponse{
		SubmissionID: submission.ID,
		TestID:       submission.TestID,
		Submitted:    true,
		SubmittedAt:  submission.SubmittedAt,
	}

	if published {
		score := submission.Score
		percentage := submission.Percentage
		xp := submission.XPEarned
		response.Score = &score
		response.Percentage = &percentage
		response.XPEarned = &xp
		response.Rank = submission.Rank
	}

	return response
}
