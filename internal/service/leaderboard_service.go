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
	"github.com/noah-isme/kidlearn-api/internal/scoring"
)

// ErrUnknownPeriod indicates a leaderboard read for a malformed period key.
var ErrUnknownPeriod = errors.New("unknown leaderboard period")

// LeaderboardService maintains the rolling (user, period) tallies and serves
// the ranked reads. Challenge-point boards are incrementally maintained;
// the raw-XP board is recomputed from a full user scan on every read, an
// intentional always-correct trade-off at this user-base scale.
type LeaderboardService interface {
	RecordSolve(ctx context.Context, userID uint, points, xp int, difficulty string, at time.Time) error
	Top(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error)
	XPLeaderboard(ctx context.Context, group string, limit int) (dto.XPLeaderboardResponse, error)
	Reconcile(ctx context.Context, userID uint, period string) (bool, error)
}

type leaderboardService struct {
	entries  repository.LeaderboardRepository
	progress repository.ProgressRepository
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	maxLimit int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLeaderboardService constructs the leaderboard aggregator.
func NewLeaderboardService(entryRepo repository.LeaderboardRepository, progressRepo repository.ProgressRepository, userRepo repository.UserRepository, cache *redis.Client, cacheTTL time.Duration, maxLimit int, logger zerolog.Logger) LeaderboardService {
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &leaderboardService{
		entries:  entryRepo,
		progress: progressRepo,
		users:    userRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		maxLimit: maxLimit,
		logger:   logger.With().Str("component", "leaderboard_service").Logger(),
		now:      time.Now,
	}
}

// RecordSolve folds one first-time solve into every period bucket the solve
// timestamp belongs to: all-time, the current week and the current month.
// Callers must invoke this exactly once per first solve; reward idempotence
// is the submission lifecycle's responsibility.
func (s *leaderboardService) RecordSolve(ctx context.Context, userID uint, points, xp int, difficulty string, at time.Time) error {
	periods := scoring.PeriodKeys(at)
	if err := s.entries.ApplySolve(ctx, userID, periods, points, xp, difficulty); err != nil {
		return fmt.Errorf("apply solve to leaderboard: %w", err)
	}

	s.invalidate(ctx, periods)
	return nil
}

// Top returns the bounded descending-points board for one period.
func (s *leaderboardService) Top(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error) {
	if _, _, err := scoring.PeriodRange(period, time.UTC); err != nil {
		return dto.LeaderboardResponse{}, ErrUnknownPeriod
	}
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d", period, limit)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.LeaderboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read leaderboard cache")
		}
	}

	entries, err := s.entries.TopByPoints(ctx, period, limit)
	if err != nil {
		return dto.LeaderboardResponse{}, err
	}
	response := dto.NewLeaderboardResponse(period, entries)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store leaderboard cache")
			}
		}
	}

	return response, nil
}

// XPLeaderboard scans and sorts all users (optionally one group) by raw XP
// at query time.
func (s *leaderboardService) XPLeaderboard(ctx context.Context, group string, limit int) (dto.XPLeaderboardResponse, error) {
	if limit <= 0 || limit > s.maxLimit {
		limit = s.maxLimit
	}

	users, err := s.users.List(ctx, group, limit)
	if err != nil {
		return dto.XPLeaderboardResponse{}, err
	}
	return dto.NewXPLeaderboardResponse(group, users), nil
}

// Reconcile checks the core consistency property: the period entry's
// totalSolved must equal the count of the user's first-solve timestamps
// inside the period's time range, recomputed from raw progress rows.
func (s *leaderboardService) Reconcile(ctx context.Context, userID uint, period string) (bool, error) {
	from, to, err := scoring.PeriodRange(period, time.UTC)
	if err != nil {
		return false, ErrUnknownPeriod
	}

	recomputed, err := s.progress.CountSolvedInRange(ctx, userID, models.ItemTypeChallenge, from, to)
	if err != nil {
		return false, err
	}

	entry, err := s.entries.Get(ctx, userID, period)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return recomputed == 0, nil
	}
	if err != nil {
		return false, err
	}

	consistent := int64(entry.TotalSolved) == recomputed
	if !consistent {
		s.logger.Error().
			Uint("user_id", userID).
			Str("period", period).
			Int("entry_total", entry.TotalSolved).
			Int64("recomputed", recomputed).
			Msg("leaderboard entry drifted from progress rows")
	}
	return consistent, nil
}

func (s *leaderboardService) invalidate(ctx context.Context, periods []string) {
	if s.cache == nil {
		return
	}
	for _, period := range periods {
		pattern := fmt.Sprintf("leaderboard:%s:*", period)
		keys, err := s.cache.Keys(ctx, pattern).Result()
		if err != nil {
			s.logger.Warn().Err(err).Str("pattern", pattern).Msg("failed to list leaderboard cache keys")
			continue
		}
		if len(keys) > 0 {
			if err := s.cache.Del(ctx, keys...).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
			}
		}
	}
}
