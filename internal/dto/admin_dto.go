package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// CourseCreateRequest is the admin payload for authoring a course.
type CourseCreateRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Description string   `json:"description" validate:"max=4096"`
	Groups      []string `json:"groups" validate:"required,min=1,dive,oneof=junior explorer master"`
	ProOnly     bool     `json:"pro_only"`
}

// LessonCreateRequest is the admin payload for authoring a lesson.
type LessonCreateRequest struct {
	CourseID uint                  `json:"course_id" validate:"required"`
	Title    string                `json:"title" validate:"required,max=255"`
	Body     string                `json:"body"`
	Position int                   `json:"position" validate:"gte=0"`
	XPReward int                   `json:"xp_reward" validate:"gte=0,lte=1000"`
	Quiz     []models.QuizQuestion `json:"quiz" validate:"dive"`
}

// TestCaseInput is one authored test case for a coding challenge.
type TestCaseInput struct {
	Input          string `json:"input" validate:"required"`
	ExpectedOutput string `json:"expected_output" validate:"required"`
	Hidden         bool   `json:"hidden"`
}

// ChallengeCreateRequest is the admin payload for authoring a coding
// challenge.
type ChallengeCreateRequest struct {
	Title      string          `json:"title" validate:"required,max=255"`
	Prompt     string          `json:"prompt" validate:"required"`
	Difficulty string          `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points     int             `json:"points" validate:"required,gte=1,lte=1000"`
	Groups     []string        `json:"groups" validate:"required,min=1,dive,oneof=junior explorer master"`
	ProOnly    bool            `json:"pro_only"`
	LiveAt     *time.Time      `json:"live_at"`
	ExpiresAt  *time.Time      `json:"expires_at"`
	TestCases  []TestCaseInput `json:"test_cases" validate:"required,min=1,dive"`
}

// TestCreateRequest is the admin payload for authoring a weekly test.
type TestCreateRequest struct {
	Title           string                `json:"title" validate:"required,max=255"`
	Description     string                `json:"description" validate:"max=4096"`
	Groups          []string              `json:"groups" validate:"required,min=1,dive,oneof=junior explorer master"`
	ProOnly         bool                  `json:"pro_only"`
	Questions       []models.QuizQuestion `json:"questions" validate:"required,min=1,dive"`
	DurationMinutes int                   `json:"duration_minutes" validate:"gte=0"`
	LiveAt          *time.Time            `json:"live_at"`
	ExpiresAt       *time.Time            `json:"expires_at"`
}

// ContestCreateRequest is the admin payload for authoring a contest.
type ContestCreateRequest struct {
	Title       string     `json:"title" validate:"required,max=255"`
	Description string     `json:"description" validate:"max=4096"`
	Rubric      string     `json:"rubric" validate:"required"`
	Prizes      []string   `json:"prizes"`
	Groups      []string   `json:"groups" validate:"required,min=1,dive,oneof=junior explorer master"`
	ProOnly     bool       `json:"pro_only"`
	LiveAt      *time.Time `json:"live_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// AccessCodeCreateRequest is the admin payload for minting a PRO voucher.
type AccessCodeCreateRequest struct {
	DurationDays   int        `json:"duration_days" validate:"required,gte=1,lte=3650"`
	MaxRedemptions int        `json:"max_redemptions" validate:"required,gte=1"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// AccessCodeResponse is the admin view of a voucher.
type AccessCodeResponse struct {
	ID             uint       `json:"id"`
	Code           string     `json:"code"`
	DurationDays   int        `json:"duration_days"`
	MaxRedemptions int        `json:"max_redemptions"`
	Redemptions    int        `json:"redemptions"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewAccessCodeResponse maps an access code model.
func NewAccessCodeResponse(code models.AccessCode) AccessCodeResponse {
	return AccessCodeResponse{
		ID:             code.ID,
		Code:           code.Code,
		DurationDays:   code.DurationDays,
		MaxRedemptions: code.MaxRedemptions,
		Redemptions:    code.Redemptions,
		ExpiresAt:      code.ExpiresAt,
		CreatedAt:      code.CreatedAt,
	}
}

// RankAssignmentResponse reports the outcome of a ranking pass.
type RankAssignmentResponse struct {
	ItemType string `json:"item_type"`
	ItemID   uint   `json:"item_id"`
	Ranked   int    `json:"ranked"`
}

// PublishResponse reports the outcome of a publish action.
type PublishResponse struct {
	ItemType  string `json:"item_type"`
	ItemID    uint   `json:"item_id"`
	Ranked    int    `json:"ranked"`
	Published bool   `json:"published"`
}

// QuestionSetImportRequest carries a raw JSON document of quiz questions to
// validate and attach to a weekly test or lesson in one step.
type QuestionSetImportRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
}

// QuestionSetImportResponse reports the outcome of an import.
type QuestionSetImportResponse struct {
	Imported  int                   `json:"imported"`
	Questions []models.QuizQuestion `json:"questions"`
}

// LessonDraftRequest asks the AI generator for a lesson draft.
type LessonDraftRequest struct {
	Topic         string `json:"topic" validate:"required,max=255"`
	Group         string `json:"group" validate:"required,oneof=junior explorer master"`
	QuestionCount int    `json:"question_count" validate:"gte=0,lte=20"`
	Notes         string `json:"notes" validate:"max=2048"`
}

// LessonDraftResponse is the generated draft, for an author to review and
// edit before anything is persisted.
type LessonDraftResponse struct {
	Title string                `json:"title"`
	Body  string                `json:"body"`
	Quiz  []models.QuizQuestion `json:"quiz"`
}
