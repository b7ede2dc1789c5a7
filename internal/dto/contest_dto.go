package dto

import (
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ContestEntryRequest is the payload for entering a contest.
type ContestEntryRequest struct {
	ContestID uint   `json:"contest_id" validate:"required"`
	Entry     string `json:"entry" validate:"required,max=65536"`
}

// EvaluateEntryRequest carries an evaluator's rubric marks for one entry.
type EvaluateEntryRequest struct {
	Marks    float64 `json:"marks" validate:"gte=0,lte=100"`
	Feedback string  `json:"feedback" validate:"max=4096"`
}

// ContestResponse is the learner-facing view of a contest.
type ContestResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Rubric      string     `json:"rubric"`
	Prizes      []string   `json:"prizes,omitempty"`
	Status      string     `json:"status"`
	ProOnly     bool       `json:"pro_only"`
	LiveAt      *time.Time `json:"live_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// NewContestResponse maps a contest model.
func NewContestResponse(contest models.Contest, now time.Time) ContestResponse {
	return ContestResponse{
		ID:          contest.ID,
		Title:       contest.Title,
		Description: contest.Description,
		Rubric:      contest.Rubric,
		Prizes:      contest.Prizes,
		Status:      contest.StatusAt(now),
		ProOnly:     contest.ProOnly,
		LiveAt:      contest.LiveAt,
		ExpiresAt:   contest.ExpiresAt,
	}
}

// ContestResultResponse is a learner's own contest outcome. Marks, feedback
// and rank stay hidden until results are published.
type ContestResultResponse struct {
	EntryID     uint      `json:"entry_id"`
	ContestID   uint      `json:"contest_id"`
	Submitted   bool      `json:"submitted"`
	SubmittedAt time.Time `json:"submitted_at"`
	Marks       *float64  `json:"marks,omitempty"`
	Feedback    string    `json:"feedback,omitempty"`
	Rank        *int      `json:"rank,omitempty"`
}

// NewContestResultResponse maps an entry, withholding evaluation fields
// until results are published.
func NewContestResultResponse(entry models.ContestEntry, published bool) ContestResultResponse {
	response := ContestResultResponse{
		EntryID:     entry.ID,
		ContestID:   entry.ContestID,
		Submitted:   true,
		SubmittedAt: entry.SubmittedAt,
	}

	if published {
		response.Marks = entry.Marks
		response.Feedback = entry.Feedback
		response.Rank = entry.Rank
	}

	return response
}
