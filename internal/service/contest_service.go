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
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// ErrContestNotFound indicates the contest cannot be located.
var ErrContestNotFound = errors.New("contest not found")

// ErrEntryNotFound indicates no entry exists for the lookup.
var ErrEntryNotFound = errors.New("contest entry not found")

// ErrAlreadyEntered indicates the learner already holds an entry.
var ErrAlreadyEntered = errors.New("contest already entered")

// ErrEntryAlreadyEvaluated indicates an evaluator tried to change an
// entry's marks after grading. Re-submitting identical marks is allowed so
// retried evaluation requests stay idempotent.
var ErrEntryAlreadyEvaluated = errors.New("entry already evaluated")

// ContestService covers the learner-facing contest flow plus the evaluator
// grading step. Rank assignment and publishing live in RankingService.
type ContestService interface {
	List(ctx context.Context, userID uint) ([]dto.ContestResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.ContestResponse, error)
	Enter(ctx context.Context, userID uint, payload dto.ContestEntryRequest) (dto.ContestResultResponse, error)
	MyResult(ctx context.Context, userID, contestID uint) (dto.ContestResultResponse, error)
	EvaluateEntry(ctx context.Context, evaluatorID, entryID uint, payload dto.EvaluateEntryRequest) (dto.ContestResultResponse, error)
}

type contestService struct {
	contests  repository.ContestRepository
	users     repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewContestService constructs the contest service.
func NewContestService(
	contestRepo repository.ContestRepository,
	userRepo repository.UserRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ContestService {
	return &contestService{
		contests:  contestRepo,
		users:     userRepo,
		validator: validate,
		logger:    logger.With().Str("component", "contest_service").Logger(),
		now:       time.Now,
	}
}

func (s *contestService) List(ctx context.Context, userID uint) ([]dto.ContestResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	contests, err := s.contests.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	responses := make([]dto.ContestResponse, 0, len(contests))
	for _, contest := range contests {
		if !groupAdmits(contest.Groups, user.Group) {
			continue
		}
		responses = append(responses, dto.NewContestResponse(contest, now))
	}
	return responses, nil
}

func (s *contestService) Get(ctx context.Context, id, userID uint) (dto.ContestResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrUserNotFound
		}
		return dto.ContestResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	if !groupAdmits(contest.Groups, user.Group) {
		return dto.ContestResponse{}, ErrContestNotFound
	}

	return dto.NewContestResponse(contest, s.now().UTC()), nil
}

func (s *contestService) Enter(ctx context.Context, userID uint, payload dto.ContestEntryRequest) (dto.ContestResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResultResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResultResponse{}, ErrUserNotFound
		}
		return dto.ContestResultResponse{}, err
	}

	contest, err := s.contests.GetByID(ctx, payload.ContestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResultResponse{}, ErrContestNotFound
		}
		return dto.ContestResultResponse{}, err
	}

	now := s.now().UTC()
	policy := itemAccessPolicy{
		Groups:    contest.Groups,
		ProOnly:   contest.ProOnly,
		LiveAt:    contest.LiveAt,
		ExpiresAt: contest.ExpiresAt,
	}
	if err := checkItemAccess(user, policy, "", now); err != nil {
		return dto.ContestResultResponse{}, err
	}

	if _, err := s.contests.GetEntry(ctx, userID, contest.ID); err == nil {
		return dto.ContestResultResponse{}, ErrAlreadyEntered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ContestResultResponse{}, err
	}

	entry := models.ContestEntry{
		UserID:      userID,
		ContestID:   contest.ID,
		Entry:       payload.Entry,
		SubmittedAt: now,
	}
	if err := s.contests.CreateEntry(ctx, &entry); err != nil {
		// The unique (user, contest) index closes the concurrent-entry race.
		if _, getErr := s.contests.GetEntry(ctx, userID, contest.ID); getErr == nil {
			return dto.ContestResultResponse{}, ErrAlreadyEntered
		}
		return dto.ContestResultResponse{}, err
	}

	s.logger.Info().
		Uint("user_id", userID).
		Uint("contest_id", contest.ID).
		Msg("contest entry recorded")

	return dto.NewContestResultResponse(entry, false), nil
}

func (s *contestService) MyResult(ctx context.Context, userID, contestID uint) (dto.ContestResultResponse, error) {
	contest, err := s.contests.GetByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResultResponse{}, ErrContestNotFound
		}
		return dto.ContestResultResponse{}, err
	}

	entry, err := s.contests.GetEntry(ctx, userID, contestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResultResponse{}, ErrEntryNotFound
		}
		return dto.ContestResultResponse{}, err
	}

	return dto.NewContestResultResponse(entry, contest.IsResultsPublished), nil
}

// EvaluateEntry records rubric marks for one entry. Marks are written once;
// a retry carrying the same marks is acknowledged without a second write,
// while different marks for an evaluated entry are rejected.
func (s *contestService) EvaluateEntry(ctx context.Context, evaluatorID, entryID uint, payload dto.EvaluateEntryRequest) (dto.ContestResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResultResponse{}, err
	}

	entry, err := s.contests.GetEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResultResponse{}, ErrEntryNotFound
		}
		return dto.ContestResultResponse{}, err
	}

	if entry.IsEvaluated() {
		if *entry.Marks == payload.Marks {
			return dto.NewContestResultResponse(entry, true), nil
		}
		return dto.ContestResultResponse{}, ErrEntryAlreadyEvaluated
	}

	now := s.now().UTC()
	marks := payload.Marks
	entry.Marks = &marks
	entry.Feedback = payload.Feedback
	entry.EvaluatedBy = &evaluatorID
	entry.EvaluatedAt = &now

	if err := s.contests.UpdateEntry(ctx, &entry); err != nil {
		return dto.ContestResultResponse{}, err
	}

	s.logger.Info().
		Uint("entry_id", entry.ID).
		Uint("evaluator_id", evaluatorID).
		Float64("marks", marks).
		Msg("contest entry evaluated")

	return dto.NewContestResultResponse(entry, true), nil
}
