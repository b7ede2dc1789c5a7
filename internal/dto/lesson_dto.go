package dto

import (
	"time"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

// CompleteQuizRequest is the payload for finishing a lesson quiz.
type CompleteQuizRequest struct {
	Answers []int `json:"answers" validate:"required"`
}

// QuizCompletionResponse reports the outcome of a lesson quiz attempt.
// XPEarned is the delta actually credited, which is zero when the attempt
// did not beat the previous best score.
type QuizCompletionResponse struct {
	LessonID   uint `json:"lesson_id"`
	Score      int  `json:"score"`
	Percentage int  `json:"percentage"`
	BestScore  int  `json:"best_score"`
	Improved   bool `json:"improved"`
	XPEarned   int  `json:"xp_earned"`
}

// LessonQuestionResponse is the learner-facing view of a quiz question.
type LessonQuestionResponse struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// LessonResponse is the learner-facing view of a lesson.
type LessonResponse struct {
	ID       uint                     `json:"id"`
	CourseID uint                     `json:"course_id"`
	Title    string                   `json:"title"`
	Body     string                   `json:"body"`
	Position int                      `json:"position"`
	XPReward int                      `json:"xp_reward"`
	Quiz     []LessonQuestionResponse `json:"quiz,omitempty"`
}

// NewLessonResponse maps a lesson, stripping answer keys from the quiz.
func NewLessonResponse(lesson models.Lesson) LessonResponse {
	response := LessonResponse{
		ID:       lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Body:     lesson.Body,
		Position: lesson.Position,
		XPReward: lesson.XPReward,
	}

	for _, question := range lesson.Quiz {
		response.Quiz = append(response.Quiz, LessonQuestionResponse{
			Prompt:  question.Prompt,
			Options: question.Options,
		})
	}

	return response
}

// CourseResponse is the learner-facing view of a course.
type CourseResponse struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ProOnly     bool             `json:"pro_only"`
	CreatedAt   time.Time        `json:"created_at"`
	Lessons     []LessonResponse `json:"lessons,omitempty"`
}

// NewCourseResponse maps a course and its lessons.
func NewCourseResponse(course models.Course) CourseResponse {
	response := CourseResponse{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		ProOnly:     course.ProOnly,
		CreatedAt:   course.CreatedAt,
	}

	for _, lesson := range course.Lessons {
		response.Lessons = append(response.Lessons, NewLessonResponse(lesson))
	}

	return response
}
