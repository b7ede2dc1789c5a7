package ai

import "context"

// DraftInput describes the lesson an author wants generated.
type DraftInput struct {
	Topic         string
	Group         string
	QuestionCount int
	Notes         string
}

// DraftQuestion is one generated multiple-choice question.
type DraftQuestion struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Marks        int      `json:"marks"`
}

// DraftResult is the generated lesson draft. It is a starting point for a
// human author, never published as-is.
type DraftResult struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Quiz  []DraftQuestion        `json:"quiz"`
	Raw   map[string]interface{} `json:"raw,omitempty"`
}

// Generator describes an AI model capable of drafting lesson content.
type Generator interface {
	GenerateLesson(ctx context.Context, input DraftInput) (DraftResult, error)
}
