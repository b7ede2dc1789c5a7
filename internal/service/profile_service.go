package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

const profileCacheTTL = time.Minute

// ProfileService serves the learner's own dashboard.
type ProfileService interface {
	Get(ctx context.Context, userID uint) (dto.ProfileResponse, error)
	Invalidate(ctx context.Context, userID uint)
}

type profileService struct {
	users      repository.UserRepository
	progress   repository.ProgressRepository
	engagement repository.EngagementRepository
	cache      *redis.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewProfileService constructs the profile service. A nil cache disables
// caching entirely.
func NewProfileService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	engagementRepo repository.EngagementRepository,
	cache *redis.Client,
	logger zerolog.Logger,
) ProfileService {
	return &profileService{
		users:      userRepo,
		progress:   progressRepo,
		engagement: engagementRepo,
		cache:      cache,
		logger:     logger.With().Str("component", "profile_service").Logger(),
		now:        time.Now,
	}
}

func (s *profileService) Get(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	cacheKey := fmt.Sprintf("profile:%d", userID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.ProfileResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read profile cache")
		}
	}

	response, err := s.build(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, profileCacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store profile cache")
			}
		}
	}

	return response, nil
}

func (s *profileService) build(ctx context.Context, userID uint) (dto.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProfileResponse{}, ErrUserNotFound
		}
		return dto.ProfileResponse{}, err
	}

	now := s.now().UTC()
	response := dto.ProfileResponse{
		UserID:       user.ID,
		Name:         user.Name,
		Group:        user.Group,
		XP:           user.XP,
		Level:        user.Level(),
		IsPro:        user.IsProActive(now),
		ProExpiresAt: user.ProExpiresAt,
	}

	// A streak only counts as current when its last day is today or
	// yesterday; anything older has already lapsed.
	if streak, err := s.engagement.LatestStreak(ctx, userID); err == nil {
		today := now.Format("2006-01-02")
		yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
		if streak.Date == today || streak.Date == yesterday {
			response.CurrentStreak = streak.StreakCount
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ProfileResponse{}, err
	}

	challenges, err := s.progress.ListByUser(ctx, userID, models.ItemTypeChallenge)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	for _, row := range challenges {
		if row.Solved {
			response.ChallengesSolved++
		}
	}

	lessons, err := s.progress.ListByUser(ctx, userID, models.ItemTypeLesson)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	for _, row := range lessons {
		if row.Solved {
			response.LessonsCompleted++
		}
	}

	achievements, err := s.engagement.ListAchievements(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, err
	}
	response.Achievements = dto.NewAchievementResponses(achievements)

	return response, nil
}

// Invalidate drops the cached profile, used after XP or streak mutations
// when staleness would be user-visible.
func (s *profileService) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, fmt.Sprintf("profile:%d", userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate profile cache")
	}
}
