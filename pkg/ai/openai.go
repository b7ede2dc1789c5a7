package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kidlearn",
		Subsystem: "ai",
		Name:      "draft_duration_seconds",
		Help:      "Duration of AI lesson draft requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kidlearn",
		Subsystem: "ai",
		Name:      "draft_failures_total",
		Help:      "Number of AI lesson draft failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIGenerator implements Generator against the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGenerator builds a new generator using the provided configuration.
func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}

	tracer := otel.Tracer("github.com/noah-isme/kidlearn-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIGenerator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// GenerateLesson sends the draft request to OpenAI and parses the response.
func (g *OpenAIGenerator) GenerateLesson(parent context.Context, input DraftInput) (DraftResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate_lesson", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: draftSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildDraftPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftResult{}, fmt.Errorf("openai generate lesson: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseDraftResponse(content)
	if err != nil {
		aiFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return DraftResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func draftSystemPrompt() string {
	return "You write lesson drafts for a children's coding platform. Respond with a JSON object containing title, body (simpl" +
		"e HTML paragraphs only), and quiz: an array of objects with prompt, options, correct_index and marks. Keep the la" +
		"nguage friendly and age appropriate."
}

func buildDraftPrompt(input DraftInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Topic\n")
	builder.WriteString(input.Topic)
	builder.WriteString("\n\n## Age Group\n")
	builder.WriteString(input.Group)
	builder.WriteString("\n\n## Question Count\n")
	builder.WriteString(strconv.Itoa(input.QuestionCount))
	if input.Notes != "" {
		builder.WriteString("\n\n## Notes\n")
		builder.WriteString(input.Notes)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseDraftResponse(content string) (DraftResult, error) {
	var data DraftResult
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return DraftResult{}, fmt.Errorf("parse draft json: %w", err)
	}

	if data.Title == "" {
		return DraftResult{}, fmt.Errorf("draft missing title")
	}

	for i, question := range data.Quiz {
		if question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) {
			return DraftResult{}, fmt.Errorf("draft question %d has correct_index out of range", i)
		}
		if question.Marks <= 0 {
			data.Quiz[i].Marks = 1
		}
	}

	return data, nil
}
