package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/internal/scoring"
)

// ErrTestNotFound indicates the weekly test cannot be located.
var ErrTestNotFound = errors.New("test not found")

// ErrResultNotFound indicates the learner has no submission for the test.
var ErrResultNotFound = errors.New("result not found")

// TestService exposes the learner-facing weekly test flow. Tests allow a
// single attempt per learner; scores are computed at submit time but stay
// hidden until results are published.
type TestService interface {
	List(ctx context.Context, userID uint) ([]dto.TestResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.TestResponse, error)
	Submit(ctx context.Context, userID uint, payload dto.TestSubmissionRequest) (dto.TestSubmitResponse, error)
	MyResult(ctx context.Context, userID, testID uint) (dto.TestResultResponse, error)
}

type testService struct {
	tests     repository.TestRepository
	users     repository.UserRepository
	progress  ProgressService
	tx        repository.TxManager
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTestService constructs the weekly test service.
func NewTestService(
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
	progress ProgressService,
	tx repository.TxManager,
	validate *validator.Validate,
	logger zerolog.Logger,
) TestService {
	return &testService{
		tests:     testRepo,
		users:     userRepo,
		progress:  progress,
		tx:        tx,
		validator: validate,
		logger:    logger.With().Str("component", "test_service").Logger(),
		now:       time.Now,
	}
}

func (s *testService) List(ctx context.Context, userID uint) ([]dto.TestResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tests, err := s.tests.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	responses := make([]dto.TestResponse, 0, len(tests))
	for _, test := range tests {
		if !groupAdmits(test.Groups, user.Group) {
			continue
		}
		responses = append(responses, dto.NewTestResponse(test, now))
	}
	return responses, nil
}

func (s *testService) Get(ctx context.Context, id, userID uint) (dto.TestResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrUserNotFound
		}
		return dto.TestResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResponse{}, ErrTestNotFound
		}
		return dto.TestResponse{}, err
	}

	if !groupAdmits(test.Groups, user.Group) {
		return dto.TestResponse{}, ErrTestNotFound
	}

	return dto.NewTestResponse(test, s.now().UTC()), nil
}

// Submit grades and stores a learner's single permitted attempt. The grade
// is computed immediately so published results need no re-evaluation, but
// the response never carries it. A repeat attempt is answered with the
// original submission rather than an error.
func (s *testService) Submit(ctx context.Context, userID uint, payload dto.TestSubmissionRequest) (dto.TestSubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestSubmitResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestSubmitResponse{}, ErrUserNotFound
		}
		return dto.TestSubmitResponse{}, err
	}

	test, err := s.tests.GetByID(ctx, payload.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestSubmitResponse{}, ErrTestNotFound
		}
		return dto.TestSubmitResponse{}, err
	}

	now := s.now().UTC()
	policy := itemAccessPolicy{
		Groups:    test.Groups,
		ProOnly:   test.ProOnly,
		LiveAt:    test.LiveAt,
		ExpiresAt: test.ExpiresAt,
	}
	if err := checkItemAccess(user, policy, "", now); err != nil {
		return dto.TestSubmitResponse{}, err
	}

	if existing, err := s.tests.GetSubmission(ctx, userID, test.ID); err == nil {
		observability.TestSubmissions().WithLabelValues("duplicate").Inc()
		return dto.TestSubmitResponse{
			SubmissionID:     existing.ID,
			AlreadySubmitted: true,
			SubmittedAt:      existing.SubmittedAt,
		}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.TestSubmitResponse{}, err
	}

	result := scoring.ScoreMCQ(answerKey(test.Questions), payload.Answers)

	submission := models.TestSubmission{
		UserID:           userID,
		TestID:           test.ID,
		Answers:          payload.Answers,
		Score:            result.Score,
		Percentage:       result.Percentage,
		XPEarned:         result.XPEarned,
		TimeTakenSeconds: payload.TimeTakenSeconds,
		SubmittedAt:      now,
	}

	// XP is credited at submit time even though the score is withheld; the
	// publish step only reveals, it never re-grants.
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.tests.CreateSubmission(ctx, &submission); err != nil {
			return err
		}
		submissionRef := submission.ID
		if _, _, err := s.progress.RecordSuccess(ctx, userID, models.ItemTypeTest, test.ID, &submissionRef, now); err != nil {
			return err
		}
		return s.users.AddXP(ctx, userID, result.XPEarned)
	})
	if err != nil {
		// The unique (user, test) index closes the race between two
		// concurrent first attempts; the loser is treated as a duplicate.
		if existing, getErr := s.tests.GetSubmission(ctx, userID, test.ID); getErr == nil {
			observability.TestSubmissions().WithLabelValues("duplicate").Inc()
			return dto.TestSubmitResponse{
				SubmissionID:     existing.ID,
				AlreadySubmitted: true,
				SubmittedAt:      existing.SubmittedAt,
			}, nil
		}
		return dto.TestSubmitResponse{}, err
	}

	observability.TestSubmissions().WithLabelValues("accepted").Inc()
	observability.XPAwarded().WithLabelValues("test").Add(float64(result.XPEarned))

	s.logger.Info().
		Uint("user_id", userID).
		Uint("test_id", test.ID).
		Int("time_taken_seconds", payload.TimeTakenSeconds).
		Msg("test submission recorded")

	return dto.TestSubmitResponse{
		SubmissionID: submission.ID,
		SubmittedAt:  submission.SubmittedAt,
	}, nil
}

func (s *testService) MyResult(ctx context.Context, userID, testID uint) (dto.TestResultResponse, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResultResponse{}, ErrTestNotFound
		}
		return dto.TestResultResponse{}, err
	}

	submission, err := s.tests.GetSubmission(ctx, userID, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TestResultResponse{}, ErrResultNotFound
		}
		return dto.TestResultResponse{}, err
	}

	return dto.NewTestResultResponse(submission, test.IsResultsPublished), nil
}

func groupAdmits(groups []string, group string) bool {
	return len(groups) == 0 || containsGroup(groups, group)
}

func answerKey(questions []models.QuizQuestion) []scoring.Question {
	key := make([]scoring.Question, 0, len(questions))
	for _, question := range questions {
		key = append(key, scoring.Question{
			CorrectIndex: question.CorrectIndex,
			Marks:        question.Marks,
		})
	}
	return key
}
