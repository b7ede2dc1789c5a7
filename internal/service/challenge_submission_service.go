package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/observability"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/internal/scoring"
	"github.com/noah-isme/kidlearn-api/pkg/judge"
)

// ErrChallengeNotFound indicates the challenge cannot be located.
var ErrChallengeNotFound = errors.New("challenge not found")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrUserNotFound indicates the user record cannot be located.
var ErrUserNotFound = errors.New("user not found")

// ErrSubmissionFinalized indicates a result was recorded for a submission
// that already holds a terminal verdict. Recording happens at most once;
// re-applying would double-grant rewards, so this is a caller bug.
var ErrSubmissionFinalized = errors.New("submission already finalized")

// ChallengeSubmissionService orchestrates the coding challenge submission
// lifecycle: pending on creation, judged out of band, and settled into a
// terminal verdict exactly once.
type ChallengeSubmissionService interface {
	Submit(ctx context.Context, userID uint, payload dto.ChallengeSubmissionRequest) (dto.ChallengeSubmissionResponse, error)
	RecordResult(ctx context.Context, submissionID uint, results []models.TestCaseResult) (dto.ChallengeSubmissionResponse, error)
	Get(ctx context.Context, id, viewerID uint) (dto.ChallengeSubmissionResponse, error)
	ListMine(ctx context.Context, userID, challengeID uint) ([]dto.ChallengeSubmissionResponse, error)
}

type challengeSubmissionService struct {
	submissions repository.ChallengeSubmissionRepository
	challenges  repository.ChallengeRepository
	users       repository.UserRepository
	progress    ProgressService
	leaderboard LeaderboardService
	tx          repository.TxManager
	judge       judge.Judge
	events      EventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewChallengeSubmissionService constructs the submission lifecycle manager.
// A nil judge disables in-process dispatch; verdicts then arrive through the
// judge callback endpoint only.
func NewChallengeSubmissionService(
	submissionRepo repository.ChallengeSubmissionRepository,
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	progress ProgressService,
	leaderboard LeaderboardService,
	tx repository.TxManager,
	judgeClient judge.Judge,
	events EventPublisher,
	validate *validator.Validate,
	logger zerolog.Logger,
) ChallengeSubmissionService {
	return &challengeSubmissionService{
		submissions: submissionRepo,
		challenges:  challengeRepo,
		users:       userRepo,
		progress:    progress,
		leaderboard: leaderboard,
		tx:          tx,
		judge:       judgeClient,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "challenge_submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *challengeSubmissionService) Submit(ctx context.Context, userID uint, payload dto.ChallengeSubmissionRequest) (dto.ChallengeSubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ChallengeSubmissionResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeSubmissionResponse{}, ErrUserNotFound
		}
		return dto.ChallengeSubmissionResponse{}, err
	}

	challenge, err := s.challenges.GetByID(ctx, payload.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeSubmissionResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeSubmissionResponse{}, err
	}

	now := s.now().UTC()
	policy := itemAccessPolicy{
		Groups:    challenge.Groups,
		ProOnly:   challenge.ProOnly,
		LiveAt:    challenge.LiveAt,
		ExpiresAt: challenge.ExpiresAt,
	}
	if err := checkItemAccess(user, policy, "", now); err != nil {
		return dto.ChallengeSubmissionResponse{}, err
	}

	submission := models.ChallengeSubmission{
		UserID:      userID,
		ChallengeID: challenge.ID,
		Language:    strings.ToLower(strings.TrimSpace(payload.Language)),
		Code:        payload.Code,
		Status:      models.SubmissionStatusPending,
		TotalCount:  len(challenge.TestCases),
		SubmittedAt: now,
	}

	// Creating the row, bumping the challenge counter and recording the
	// attempt form one logical unit.
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.submissions.Create(ctx, &submission); err != nil {
			return err
		}
		if err := s.challenges.IncrementTotalSubmissions(ctx, challenge.ID); err != nil {
			return err
		}
		_, err := s.progress.RecordAttempt(ctx, userID, models.ItemTypeChallenge, challenge.ID, now)
		return err
	})
	if err != nil {
		return dto.ChallengeSubmissionResponse{}, err
	}

	observability.ChallengeSubmissions().WithLabelValues(challenge.Difficulty).Inc()

	if s.judge != nil {
		go s.dispatchToJudge(submission.ID, submission.Language, submission.Code, challenge.TestCases)
	}

	return dto.NewChallengeSubmissionResponse(submission, hiddenInputs(challenge.TestCases), false), nil
}

// RecordResult settles a pending submission with the judge's verdicts. It is
// the only place rewards are granted, and it grants them solely on the first
// transition of the progress row into solved.
func (s *challengeSubmissionService) RecordResult(ctx context.Context, submissionID uint, results []models.TestCaseResult) (dto.ChallengeSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.ChallengeSubmissionResponse{}, err
	}

	if submission.IsTerminal() {
		return dto.ChallengeSubmissionResponse{}, ErrSubmissionFinalized
	}

	challenge, err := s.challenges.GetByID(ctx, submission.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeSubmissionResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeSubmissionResponse{}, err
	}

	passed := 0
	for _, result := range results {
		if result.Passed {
			passed++
		}
	}

	now := s.now().UTC()
	reward := scoring.ScoreChallenge(challenge.Points, passed, len(results))

	submission.Status = verdictFromResults(results)
	submission.PassedCount = passed
	submission.TotalCount = len(results)
	submission.PointsEarned = reward.PointsEarned
	submission.XPEarned = reward.XPEarned
	submission.TestResults = results
	submission.CompletedAt = &now

	firstSolve := false
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.submissions.Update(ctx, &submission); err != nil {
			return err
		}

		if !reward.AllPassed {
			return nil
		}

		submissionRef := submission.ID
		_, first, err := s.progress.RecordSuccess(ctx, submission.UserID, models.ItemTypeChallenge, challenge.ID, &submissionRef, now)
		if err != nil {
			return err
		}
		firstSolve = first
		if !first {
			// Already solved earlier; this pass earns nothing again.
			return nil
		}

		if err := s.users.AddXP(ctx, submission.UserID, reward.XPEarned); err != nil {
			return err
		}
		return s.leaderboard.RecordSolve(ctx, submission.UserID, reward.PointsEarned, reward.XPEarned, challenge.Difficulty, now)
	})
	if err != nil {
		return dto.ChallengeSubmissionResponse{}, err
	}

	observability.ChallengeVerdicts().WithLabelValues(submission.Status).Inc()

	if firstSolve {
		if _, err := s.progress.UnlockAchievement(ctx, submission.UserID, models.AchievementFirstChallenge); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", submission.UserID).Msg("failed to unlock first challenge achievement")
		}
		if s.events != nil {
			s.events.Publish(ctx, Event{
				Subject: SubjectChallengeSolved,
				UserID:  submission.UserID,
				Data: map[string]interface{}{
					"challenge_id": challenge.ID,
					"points":       reward.PointsEarned,
					"xp":           reward.XPEarned,
					"difficulty":   challenge.Difficulty,
				},
			})
		}
	}

	return dto.NewChallengeSubmissionResponse(submission, hiddenInputs(challenge.TestCases), false), nil
}

func (s *challengeSubmissionService) Get(ctx context.Context, id, viewerID uint) (dto.ChallengeSubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeSubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.ChallengeSubmissionResponse{}, err
	}

	if submission.UserID != viewerID {
		return dto.ChallengeSubmissionResponse{}, ErrSubmissionNotFound
	}

	challenge, err := s.challenges.GetByID(ctx, submission.ChallengeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ChallengeSubmissionResponse{}, err
	}

	return dto.NewChallengeSubmissionResponse(submission, hiddenInputs(challenge.TestCases), false), nil
}

func (s *challengeSubmissionService) ListMine(ctx context.Context, userID, challengeID uint) ([]dto.ChallengeSubmissionResponse, error) {
	submissions, err := s.submissions.ListByUserAndChallenge(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}

	hidden := map[string]bool{}
	if challenge, err := s.challenges.GetByID(ctx, challengeID); err == nil {
		hidden = hiddenInputs(challenge.TestCases)
	}

	responses := make([]dto.ChallengeSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, dto.NewChallengeSubmissionResponse(submission, hidden, false))
	}
	return responses, nil
}

// dispatchToJudge runs the external judge off the request path and reports
// the verdict back through RecordResult. Judging never holds a lock on
// submission or leaderboard state.
func (s *challengeSubmissionService) dispatchToJudge(submissionID uint, language, code string, testCases []models.ChallengeTestCase) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	request := judge.Request{Language: language, Code: code}
	for _, testCase := range testCases {
		request.TestCases = append(request.TestCases, judge.TestCase{
			Input:          testCase.Input,
			ExpectedOutput: testCase.ExpectedOutput,
		})
	}

	verdicts, err := s.judge.Run(ctx, request)
	if err != nil {
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("judge run failed")
		return
	}

	results := make([]models.TestCaseResult, 0, len(verdicts))
	for _, verdict := range verdicts {
		results = append(results, models.TestCaseResult(verdict))
	}

	if _, err := s.RecordResult(ctx, submissionID, results); err != nil && !errors.Is(err, ErrSubmissionFinalized) {
		s.logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to record judge result")
	}
}

// verdictFromResults maps per-case outcomes to the submission's terminal
// status. Error classification follows the judge's error strings.
func verdictFromResults(results []models.TestCaseResult) string {
	allPassed := len(results) > 0
	for _, result := range results {
		if result.Passed {
			continue
		}
		allPassed = false
		message := strings.ToLower(result.Error)
		switch {
		case strings.Contains(message, "compil"):
			return models.SubmissionStatusCompileError
		case strings.Contains(message, "time limit"), strings.Contains(message, "timeout"):
			return models.SubmissionStatusTimeLimitExceeded
		case message != "":
			return models.SubmissionStatusRuntimeError
		}
	}

	if allPassed {
		return models.SubmissionStatusAccepted
	}
	return models.SubmissionStatusWrongAnswer
}

func hiddenInputs(testCases []models.ChallengeTestCase) map[string]bool {
	hidden := make(map[string]bool, len(testCases))
	for _, testCase := range testCases {
		if testCase.Hidden {
			hidden[testCase.Input] = true
		}
	}
	return hidden
}
