package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// ChallengeService is the learner-facing challenge catalogue. Hidden test
// cases never leave the server through this surface.
type ChallengeService interface {
	List(ctx context.Context, userID uint, query repository.ChallengeQuery) (dto.ChallengeListResponse, error)
	Get(ctx context.Context, id, userID uint) (dto.ChallengeResponse, error)
}

type challengeService struct {
	challenges repository.ChallengeRepository
	users      repository.UserRepository
	logger     zerolog.Logger
	now        func() time.Time
}

// NewChallengeService constructs the challenge catalogue service.
func NewChallengeService(
	challengeRepo repository.ChallengeRepository,
	userRepo repository.UserRepository,
	logger zerolog.Logger,
) ChallengeService {
	return &challengeService{
		challenges: challengeRepo,
		users:      userRepo,
		logger:     logger.With().Str("component", "challenge_service").Logger(),
		now:        time.Now,
	}
}

func (s *challengeService) List(ctx context.Context, userID uint, query repository.ChallengeQuery) (dto.ChallengeListResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeListResponse{}, ErrUserNotFound
		}
		return dto.ChallengeListResponse{}, err
	}

	query.Group = user.Group
	challenges, total, err := s.challenges.List(ctx, query)
	if err != nil {
		return dto.ChallengeListResponse{}, err
	}

	response := dto.ChallengeListResponse{Total: total}
	for _, challenge := range challenges {
		response.Challenges = append(response.Challenges, dto.NewChallengeResponse(challenge))
	}
	return response, nil
}

func (s *challengeService) Get(ctx context.Context, id, userID uint) (dto.ChallengeResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrUserNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	challenge, err := s.challenges.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ChallengeResponse{}, ErrChallengeNotFound
		}
		return dto.ChallengeResponse{}, err
	}

	if !groupAdmits(challenge.Groups, user.Group) {
		return dto.ChallengeResponse{}, ErrChallengeNotFound
	}

	return dto.NewChallengeResponse(challenge), nil
}
