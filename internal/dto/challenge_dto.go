package dto

import (
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// ChallengeSubmissionRequest is the payload for submitting code to a
// coding challenge.
type ChallengeSubmissionRequest struct {
	ChallengeID uint   `json:"challenge_id" validate:"required"`
	Language    string `json:"language" validate:"required,oneof=python javascript go scratch"`
	Code        string `json:"code" validate:"required,max=65536"`
}

// JudgeResultRequest is the judge callback payload recording the official
// verdict for a pending submission.
type JudgeResultRequest struct {
	SubmissionID uint                    `json:"submission_id" validate:"required"`
	Results      []models.TestCaseResult `json:"results" validate:"required,min=1"`
}

// ChallengeSubmissionResponse is the learner-facing view of one submission.
type ChallengeSubmissionResponse struct {
	ID           uint                    `json:"id"`
	ChallengeID  uint                    `json:"challenge_id"`
	Language     string                  `json:"language"`
	Status       string                  `json:"status"`
	PassedCount  int                     `json:"passed_count"`
	TotalCount   int                     `json:"total_count"`
	PointsEarned int                     `json:"points_earned"`
	XPEarned     int                     `json:"xp_earned"`
	TestResults  []models.TestCaseResult `json:"test_results,omitempty"`
	SubmittedAt  time.Time               `json:"submitted_at"`
	CompletedAt  *time.Time              `json:"completed_at,omitempty"`
}

// NewChallengeSubmissionResponse maps a submission model. Hidden test case
// verdicts are stripped unless includeHidden is set (admin view).
func NewChallengeSubmissionResponse(submission models.ChallengeSubmission, hiddenInputs map[string]bool, includeHidden bool) ChallengeSubmissionResponse {
	response := ChallengeSubmissionResponse{
		ID:           submission.ID,
		ChallengeID:  submission.ChallengeID,
		Language:     submission.Language,
		Status:       submission.Status,
		PassedCount:  submission.PassedCount,
		TotalCount:   submission.TotalCount,
		PointsEarned: submission.PointsEarned,
		XPEarned:     submission.XPEarned,
		SubmittedAt:  submission.SubmittedAt,
		CompletedAt:  submission.CompletedAt,
	}

	for _, result := range submission.TestResults {
		if !includeHidden && hiddenInputs[result.Input] {
			continue
		}
		response.TestResults = append(response.TestResults, result)
	}

	return response
}

// TestCaseResponse is the learner-facing view of a visible test case.
type TestCaseResponse struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// ChallengeResponse is the learner-facing view of a coding challenge.
// Hidden test cases are never included.
type ChallengeResponse struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Prompt           string             `json:"prompt"`
	Difficulty       string             `json:"difficulty"`
	Points           int                `json:"points"`
	ProOnly          bool               `json:"pro_only"`
	LiveAt           *time.Time         `json:"live_at,omitempty"`
	ExpiresAt        *time.Time         `json:"expires_at,omitempty"`
	TotalSubmissions int                `json:"total_submissions"`
	VisibleTestCases []TestCaseResponse `json:"visible_test_cases,omitempty"`
}

// ChallengeListResponse is a paginated challenge listing.
type ChallengeListResponse struct {
	Challenges []ChallengeResponse `json:"challenges"`
	Total      int64               `json:"total"`
}

// NewChallengeResponse maps a challenge model, exposing only visible cases.
func NewChallengeResponse(challenge models.CodingChallenge) ChallengeResponse {
	response := ChallengeResponse{
		ID:               challenge.ID,
		Title:            challenge.Title,
		Prompt:           challenge.Prompt,
		Difficulty:       challenge.Difficulty,
		Points:           challenge.Points,
		ProOnly:          challenge.ProOnly,
		LiveAt:           challenge.LiveAt,
		ExpiresAt:        challenge.ExpiresAt,
		TotalSubmissions: challenge.TotalSubmissions,
	}

	for _, testCase := range challenge.TestCases {
		if testCase.Hidden {
			continue
		}
		response.VisibleTestCases = append(response.VisibleTestCases, TestCaseResponse{
			Input:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
	}

	return response
}
