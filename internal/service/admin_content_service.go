package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/pkg/ai"
)

// ErrRewardLocked indicates an author tried to change reward-bearing fields
// of an item that already has graded activity against it. Changing the
// stakes after the fact would make earlier grants unexplainable.
var ErrRewardLocked = errors.New("reward fields locked after grading")

// ErrDraftsDisabled indicates no AI generator is configured.
var ErrDraftsDisabled = errors.New("lesson drafts are not enabled")

// ErrInvalidQuestionSet wraps schema violations in an imported document.
var ErrInvalidQuestionSet = errors.New("invalid question set")

// questionSetSchema validates imported question documents before they are
// attached to any lesson or test.
const questionSetSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["prompt", "options", "correct_index"],
        "properties": {
          "prompt": {"type": "string", "minLength": 1},
          "options": {"type": "array", "minItems": 2, "items": {"type": "string", "minLength": 1}},
          "correct_index": {"type": "integer", "minimum": 0},
          "marks": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

// AdminContentService covers the authoring surface: CRUD over courses,
// lessons, challenges, tests and contests, plus question imports and AI
// lesson drafts. Authored rich text is sanitised before persistence.
type AdminContentService interface {
	CreateCourse(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	UpdateCourse(ctx context.Context, id uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	DeleteCourse(ctx context.Context, id uint) error

	CreateLesson(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	UpdateLesson(ctx context.Context, id uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error)
	DeleteLesson(ctx context.Context, id uint) error

	CreateChallenge(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	UpdateChallenge(ctx context.Context, id uint, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error)
	DeleteChallenge(ctx context.Context, id uint) error

	CreateTest(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error)
	UpdateTest(ctx context.Context, id uint, payload dto.TestCreateRequest) (dto.TestResponse, error)
	DeleteTest(ctx context.Context, id uint) error

	CreateContest(ctx context.Context, payload dto.ContestCreateRequest) (dto.ContestResponse, error)
	UpdateContest(ctx context.Context, id uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error)
	DeleteContest(ctx context.Context, id uint) error

	ImportQuestionSet(ctx context.Context, payload dto.QuestionSetImportRequest) (dto.QuestionSetImportResponse, error)
	GenerateLessonDraft(ctx context.Context, payload dto.LessonDraftRequest) (dto.LessonDraftResponse, error)
}

type adminContentService struct {
	courses    repository.CourseRepository
	challenges repository.ChallengeRepository
	tests      repository.TestRepository
	contests   repository.ContestRepository
	progress   repository.ProgressRepository
	generator  ai.Generator
	sanitizer  *bluemonday.Policy
	schema     *jsonschema.Schema
	validator  *validator.Validate
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAdminContentService constructs the authoring service. A nil generator
// disables AI lesson drafts.
func NewAdminContentService(
	courseRepo repository.CourseRepository,
	challengeRepo repository.ChallengeRepository,
	testRepo repository.TestRepository,
	contestRepo repository.ContestRepository,
	progressRepo repository.ProgressRepository,
	generator ai.Generator,
	validate *validator.Validate,
	logger zerolog.Logger,
) AdminContentService {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("question_set.json", strings.NewReader(questionSetSchema)); err != nil {
		panic(err)
	}
	schema := compiler.MustCompile("question_set.json")

	return &adminContentService{
		courses:    courseRepo,
		challenges: challengeRepo,
		tests:      testRepo,
		contests:   contestRepo,
		progress:   progressRepo,
		generator:  generator,
		sanitizer:  bluemonday.UGCPolicy(),
		schema:     schema,
		validator:  validate,
		logger:     logger.With().Str("component", "admin_content_service").Logger(),
		now:        time.Now,
	}
}

func (s *adminContentService) CreateCourse(ctx context.Context, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Groups:      payload.Groups,
		ProOnly:     payload.ProOnly,
	}
	if err := s.courses.CreateCourse(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Msg("course created")
	return dto.NewCourseResponse(course), nil
}

func (s *adminContentService) UpdateCourse(ctx context.Context, id uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	course.Title = strings.TrimSpace(payload.Title)
	course.Description = s.sanitizer.Sanitize(payload.Description)
	course.Groups = payload.Groups
	course.ProOnly = payload.ProOnly

	if err := s.courses.UpdateCourse(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course), nil
}

func (s *adminContentService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.courses.GetCourse(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	return s.courses.DeleteCourse(ctx, id)
}

func (s *adminContentService) CreateLesson(ctx context.Context, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	if _, err := s.courses.GetCourse(ctx, payload.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrCourseNotFound
		}
		return dto.LessonResponse{}, err
	}

	lesson := models.Lesson{
		CourseID: payload.CourseID,
		Title:    strings.TrimSpace(payload.Title),
		Body:     s.sanitizer.Sanitize(payload.Body),
		Position: payload.Position,
		XPReward: payload.XPReward,
		Quiz:     payload.Quiz,
	}
	if err := s.courses.CreateLesson(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}

	s.logger.Info().Uint("lesson_id", lesson.ID).Uint("course_id", lesson.CourseID).Msg("lesson created")
	return dto.NewLessonResponse(lesson), nil
}

// UpdateLesson replaces a lesson. The XP reward and quiz answer key freeze
// once any learner has progress against the lesson.
func (s *adminContentService) UpdateLesson(ctx context.Context, id uint, payload dto.LessonCreateRequest) (dto.LessonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonResponse{}, err
	}

	lesson, err := s.courses.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LessonResponse{}, ErrLessonNotFound
		}
		return dto.LessonResponse{}, err
	}

	if payload.XPReward != lesson.XPReward || !sameQuiz(lesson.Quiz, payload.Quiz) {
		graded, err := s.progress.HasAnyForItem(ctx, models.ItemTypeLesson, id)
		if err != nil {
			return dto.LessonResponse{}, err
		}
		if graded {
			return dto.LessonResponse{}, ErrRewardLocked
		}
	}

	lesson.Title = strings.TrimSpace(payload.Title)
	lesson.Body = s.sanitizer.Sanitize(payload.Body)
	lesson.Position = payload.Position
	lesson.XPReward = payload.XPReward
	lesson.Quiz = payload.Quiz

	if err := s.courses.UpdateLesson(ctx, &lesson); err != nil {
		return dto.LessonResponse{}, err
	}
	return dto.NewLessonResponse(lesson), nil
}

func (s *adminContentService) DeleteLesson(ctx context.Context, id uint) error {
	if _, err := s.courses.GetLesson(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLessonNotFound
		}
		return err
	}
	return s.courses.DeleteLesson(ctx, id)
}

func (s *adminContentService) CreateChallenge(ctx context.Context, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge := models.CodingChallenge{
		Title:      strings.TrimSpace(payload.Title),
		Prompt:     s.sanitizer.Sanitize(payload.Prompt),
		Difficulty: payload.Difficulty,
		Points:     payload.Points,
		Groups:     payload.Groups,
		ProOnly:    payload.ProOnly,
		LiveAt:     payload.LiveAt,
		ExpiresAt:  payload.ExpiresAt,
		TestCases:  testCasesFromInput(payload.TestCases),
	}
	if err := s.challenges.Create(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}

	s.logger.Info().Uint("challenge_id", challenge.ID).Str("difficulty", challenge.Difficulty).Msg("challenge created")
	return dto.NewChallengeResponse(challenge), nil
}

// UpdateChallenge replaces a challenge. Points and test cases freeze once a
// submission has been graded against the current set; schedule, prompt and
// cohort fields stay editable.
func (s *adminContentService) UpdateChallenge(ctx context.Context, id uint, payload dto.ChallengeCreateRequest) (dto.ChallengeResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeResponse{}, err
	}

	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	newCases := testCasesFromInput(payload.TestCases)
	rewardChanged := payload.Points != challenge.Points || !sameTestCases(challenge.TestCases, newCases)
	if rewardChanged {
		graded, err := s.challenges.HasGradedSubmissions(ctx, id)
		if err != nil {
			return dto.ChallengeResponse{}, err
		}
		if graded {
			return dto.ChallengeResponse{}, ErrRewardLocked
		}
	}

	challenge.Title = strings.TrimSpace(payload.Title)
	challenge.Prompt = s.sanitizer.Sanitize(payload.Prompt)
	challenge.Difficulty = payload.Difficulty
	challenge.Points = payload.Points
	challenge.Groups = payload.Groups
	challenge.ProOnly = payload.ProOnly
	challenge.LiveAt = payload.LiveAt
	challenge.ExpiresAt = payload.ExpiresAt

	if err := s.challenges.Update(ctx, &challenge); err != nil {
		return dto.ChallengeResponse{}, err
	}
	if rewardChanged {
		if err := s.challenges.ReplaceTestCases(ctx, id, newCases); err != nil {
			return dto.ChallengeResponse{}, err
		}
		challenge.TestCases = newCases
	}

	return dto.NewChallengeResponse(challenge), nil
}

func (s *adminContentService) DeleteChallenge(ctx context.Context, id uint) error {
	if _, err := s.challenges.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeNotFound
		}
		return err
	}
	return s.challenges.Delete(ctx, id)
}

func (s *adminContentService) CreateTest(ctx context.Context, payload dto.TestCreateRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	test := models.WeeklyTest{
		Title:           strings.TrimSpace(payload.Title),
		Description:     s.sanitizer.Sanitize(payload.Description),
		Groups:          payload.Groups,
		ProOnly:         payload.ProOnly,
		Questions:       payload.Questions,
		DurationMinutes: payload.DurationMinutes,
		LiveAt:          payload.LiveAt,
		ExpiresAt:       payload.ExpiresAt,
	}
	if err := s.tests.Create(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}

	s.logger.Info().Uint("test_id", test.ID).Msg("weekly test created")
	return dto.NewTestResponse(test, s.now().UTC()), nil
}

// UpdateTest replaces a weekly test. The question set freezes once any
// submission exists, since grades were computed against it.
func (s *adminContentService) UpdateTest(ctx context.Context, id uint, payload dto.TestCreateRequest) (dto.TestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	if !sameQuiz(test.Questions, payload.Questions) {
		submissions, err := s.tests.ListSubmissions(ctx, id)
		if err != nil {
			return dto.TestResponse{}, err
		}
		if len(submissions) > 0 {
			return dto.TestResponse{}, ErrRewardLocked
		}
	}

	test.Title = strings.TrimSpace(payload.Title)
	test.Description = s.sanitizer.Sanitize(payload.Description)
	test.Groups = payload.Groups
	test.ProOnly = payload.ProOnly
	test.Questions = payload.Questions
	test.DurationMinutes = payload.DurationMinutes
	test.LiveAt = payload.LiveAt
	test.ExpiresAt = payload.ExpiresAt

	if err := s.tests.Update(ctx, &test); err != nil {
		return dto.TestResponse{}, err
	}
	return dto.NewTestResponse(test, s.now().UTC()), nil
}

func (s *adminContentService) DeleteTest(ctx context.Context, id uint) error {
	if _, err := s.tests.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTestNotFound
		}
		return err
	}
	return s.tests.Delete(ctx, id)
}

func (s *adminContentService) CreateContest(ctx context.Context, payload dto.ContestCreateRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	contest := models.Contest{
		Title:       strings.TrimSpace(payload.Title),
		Description: s.sanitizer.Sanitize(payload.Description),
		Rubric:      s.sanitizer.Sanitize(payload.Rubric),
		Prizes:      payload.Prizes,
		Groups:      payload.Groups,
		ProOnly:     payload.ProOnly,
		LiveAt:      payload.LiveAt,
		ExpiresAt:   payload.ExpiresAt,
	}
	if err := s.contests.Create(ctx, &contest); err != nil {
		return dto.ContestResponse{}, err
	}

	s.logger.Info().Uint("contest_id", contest.ID).Msg("contest created")
	return dto.NewContestResponse(contest, s.now().UTC()), nil
}

func (s *adminContentService) UpdateContest(ctx context.Context, id uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	contest.Title = strings.TrimSpace(payload.Title)
	contest.Description = s.sanitizer.Sanitize(payload.Description)
	contest.Rubric = s.sanitizer.Sanitize(payload.Rubric)
	contest.Prizes = payload.Prizes
	contest.Groups = payload.Groups
	contest.ProOnly = payload.ProOnly
	contest.LiveAt = payload.LiveAt
	contest.ExpiresAt = payload.ExpiresAt

	if err := s.contests.Update(ctx, &contest); err != nil {
		return dto.ContestResponse{}, err
	}
	return dto.NewContestResponse(contest, s.now().UTC()), nil
}

func (s *adminContentService) DeleteContest(ctx context.Context, id uint) error {
	if _, err := s.contests.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContestNotFound
		}
		return err
	}
	return s.contests.Delete(ctx, id)
}

// ImportQuestionSet validates a raw question document against the question
// set schema and returns the sanitised questions, ready to attach to a
// lesson or test create request.
func (s *adminContentService) ImportQuestionSet(ctx context.Context, payload dto.QuestionSetImportRequest) (dto.QuestionSetImportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuestionSetImportResponse{}, err
	}

	var document interface{}
	if err := json.Unmarshal(payload.Document, &document); err != nil {
		return dto.QuestionSetImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}
	if err := s.schema.Validate(document); err != nil {
		return dto.QuestionSetImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}

	var parsed struct {
		Questions []models.QuizQuestion `json:"questions"`
	}
	if err := json.Unmarshal(payload.Document, &parsed); err != nil {
		return dto.QuestionSetImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidQuestionSet, err)
	}

	for i, question := range parsed.Questions {
		if question.CorrectIndex >= len(question.Options) {
			return dto.QuestionSetImportResponse{}, fmt.Errorf("%w: question %d correct_index out of range", ErrInvalidQuestionSet, i)
		}
		parsed.Questions[i].Prompt = s.sanitizer.Sanitize(question.Prompt)
		if question.Marks <= 0 {
			parsed.Questions[i].Marks = 1
		}
	}

	return dto.QuestionSetImportResponse{
		Imported:  len(parsed.Questions),
		Questions: parsed.Questions,
	}, nil
}

// GenerateLessonDraft asks the configured AI generator for a lesson draft.
// Output is sanitised like any authored content and never persisted here.
func (s *adminContentService) GenerateLessonDraft(ctx context.Context, payload dto.LessonDraftRequest) (dto.LessonDraftResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LessonDraftResponse{}, err
	}
	if s.generator == nil {
		return dto.LessonDraftResponse{}, ErrDraftsDisabled
	}

	draft, err := s.generator.GenerateLesson(ctx, ai.DraftInput{
		Topic:         payload.Topic,
		Group:         payload.Group,
		QuestionCount: payload.QuestionCount,
		Notes:         payload.Notes,
	})
	if err != nil {
		return dto.LessonDraftResponse{}, err
	}

	response := dto.LessonDraftResponse{
		Title: strings.TrimSpace(draft.Title),
		Body:  s.sanitizer.Sanitize(draft.Body),
	}
	for _, question := range draft.Quiz {
		response.Quiz = append(response.Quiz, models.QuizQuestion{
			Prompt:       s.sanitizer.Sanitize(question.Prompt),
			Options:      question.Options,
			CorrectIndex: question.CorrectIndex,
			Marks:        question.Marks,
		})
	}

	return response, nil
}

func testCasesFromInput(inputs []dto.TestCaseInput) []models.ChallengeTestCase {
	cases := make([]models.ChallengeTestCase, 0, len(inputs))
	for i, input := range inputs {
		cases = append(cases, models.ChallengeTestCase{
			Input:          input.Input,
			ExpectedOutput: input.ExpectedOutput,
			Hidden:         input.Hidden,
			Position:       i,
		})
	}
	return cases
}

func sameQuiz(a, b []models.QuizQuestion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Prompt != b[i].Prompt || a[i].CorrectIndex != b[i].CorrectIndex || a[i].Marks != b[i].Marks {
			return false
		}
		if len(a[i].Options) != len(b[i].Options) {
			return false
		}
		for j := range a[i].Options {
			if a[i].Options[j] != b[i].Options[j] {
				return false
			}
		}
	}
	return true
}

func sameTestCases(a, b []models.ChallengeTestCase) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Input != b[i].Input || a[i].ExpectedOutput != b[i].ExpectedOutput || a[i].Hidden != b[i].Hidden {
			return false
		}
	}
	return true
}
