package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
	"github.com/noah-isme/kidlearn-api/internal/repository"
)

// XP bonuses granted when an achievement unlocks.
var achievementBonuses = map[string]int{
	models.AchievementFirstLesson:    10,
	models.AchievementFirstChallenge: 15,
	models.AchievementStreakWeek:     50,
	models.AchievementCourseComplete: 100,
}

// streakMilestone is the streak length that unlocks the weekly streak badge.
const streakMilestone = 7

// ProgressService tracks per-(user, item) completion state, daily streaks
// and achievement unlocks. Every mutation is idempotent: repeated successes
// and repeated unlocks are no-ops.
type ProgressService interface {
	RecordAttempt(ctx context.Context, userID uint, itemType string, itemID uint, at time.Time) (models.Progress, error)
	RecordSuccess(ctx context.Context, userID uint, itemType string, itemID uint, submissionID *uint, at time.Time) (models.Progress, bool, error)
	RecordBestScore(ctx context.Context, userID uint, lessonID uint, score int, at time.Time) (models.Progress, int, error)
	TouchStreak(ctx context.Context, userID uint, at time.Time) (dto.StreakResponse, error)
	UnlockAchievement(ctx context.Context, userID uint, code string) (bool, error)
	ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error)
}

type progressService struct {
	progress   repository.ProgressRepository
	engagement repository.EngagementRepository
	users      repository.UserRepository
	events     EventPublisher
	logger     zerolog.Logger
}

// NewProgressService constructs the progress tracker.
func NewProgressService(progressRepo repository.ProgressRepository, engagementRepo repository.EngagementRepository, userRepo repository.UserRepository, events EventPublisher, logger zerolog.Logger) ProgressService {
	return &progressService{
		progress:   progressRepo,
		engagement: engagementRepo,
		users:      userRepo,
		events:     events,
		logger:     logger.With().Str("component", "progress_service").Logger(),
	}
}

// RecordAttempt creates the progress row on the first attempt and bumps the
// attempt counter on every later one.
func (s *progressService) RecordAttempt(ctx context.Context, userID uint, itemType string, itemID uint, at time.Time) (models.Progress, error) {
	progress, err := s.progress.Get(ctx, userID, itemType, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.Progress{
			UserID:        userID,
			ItemType:      itemType,
			ItemID:        itemID,
			Attempts:      1,
			LastAttemptAt: at,
		}
		if err := s.progress.Create(ctx, &progress); err != nil {
			return models.Progress{}, err
		}
		return progress, nil
	}
	if err != nil {
		return models.Progress{}, err
	}

	progress.Attempts++
	progress.LastAttemptAt = at
	if err := s.progress.Update(ctx, &progress); err != nil {
		return models.Progress{}, err
	}
	return progress, nil
}

// RecordSuccess marks the item solved. Only the first success flips the
// solved flag, stamps solvedAt and pins the best submission; the returned
// bool reports whether this call was that first success.
func (s *progressService) RecordSuccess(ctx context.Context, userID uint, itemType string, itemID uint, submissionID *uint, at time.Time) (models.Progress, bool, error) {
	progress, err := s.progress.Get(ctx, userID, itemType, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		solvedAt := at
		progress = models.Progress{
			UserID:           userID,
			ItemType:         itemType,
			ItemID:           itemID,
			Attempts:         1,
			Solved:           true,
			BestSubmissionID: submissionID,
			SolvedAt:         &solvedAt,
			LastAttemptAt:    at,
		}
		if err := s.progress.Create(ctx, &progress); err != nil {
			return models.Progress{}, false, err
		}
		return progress, true, nil
	}
	if err != nil {
		return models.Progress{}, false, err
	}

	if progress.Solved {
		return progress, false, nil
	}

	solvedAt := at
	progress.Solved = true
	progress.SolvedAt = &solvedAt
	progress.BestSubmissionID = submissionID
	if err := s.progress.Update(ctx, &progress); err != nil {
		return models.Progress{}, false, err
	}
	return progress, true, nil
}

// RecordBestScore applies monotonic best-score retention for lesson quizzes
// and returns the previous best. Scores never regress.
func (s *progressService) RecordBestScore(ctx context.Context, userID uint, lessonID uint, score int, at time.Time) (models.Progress, int, error) {
	progress, err := s.progress.Get(ctx, userID, models.ItemTypeLesson, lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		solvedAt := at
		progress = models.Progress{
			UserID:        userID,
			ItemType:      models.ItemTypeLesson,
			ItemID:        lessonID,
			Attempts:      1,
			Solved:        true,
			BestScore:     score,
			SolvedAt:      &solvedAt,
			LastAttemptAt: at,
		}
		if err := s.progress.Create(ctx, &progress); err != nil {
			return models.Progress{}, 0, err
		}
		return progress, 0, nil
	}
	if err != nil {
		return models.Progress{}, 0, err
	}

	previousBest := progress.BestScore
	progress.Attempts++
	progress.LastAttemptAt = at
	if score > progress.BestScore {
		progress.BestScore = score
	}
	if !progress.Solved {
		solvedAt := at
		progress.Solved = true
		progress.SolvedAt = &solvedAt
	}
	if err := s.progress.Update(ctx, &progress); err != nil {
		return models.Progress{}, 0, err
	}
	return progress, previousBest, nil
}

// TouchStreak records one day of engagement. The streak continues only when
// the immediately preceding calendar day has an entry; any gap resets the
// counter to 1. Calling twice on the same day returns the existing entry.
func (s *progressService) TouchStreak(ctx context.Context, userID uint, at time.Time) (dto.StreakResponse, error) {
	today := at.Format("2006-01-02")

	if existing, err := s.engagement.GetStreak(ctx, userID, today); err == nil {
		return dto.StreakResponse{Date: existing.Date, StreakCount: existing.StreakCount, Continued: existing.StreakCount > 1}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StreakResponse{}, err
	}

	count := 1
	continued := false
	yesterday := at.AddDate(0, 0, -1).Format("2006-01-02")
	if previous, err := s.engagement.GetStreak(ctx, userID, yesterday); err == nil {
		count = previous.StreakCount + 1
		continued = true
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.StreakResponse{}, err
	}

	streak := models.DailyStreak{UserID: userID, Date: today, StreakCount: count}
	if err := s.engagement.CreateStreak(ctx, &streak); err != nil {
		return dto.StreakResponse{}, err
	}

	if count == streakMilestone {
		if _, err := s.UnlockAchievement(ctx, userID, models.AchievementStreakWeek); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to unlock streak achievement")
		}
		if s.events != nil {
			s.events.Publish(ctx, Event{
				Subject: SubjectStreakMilestone,
				UserID:  userID,
				Data:    map[string]interface{}{"streak": count},
			})
		}
	}

	return dto.StreakResponse{Date: today, StreakCount: count, Continued: continued}, nil
}

// UnlockAchievement grants the achievement and its one-time XP bonus. The
// unique (user, code) index makes concurrent unlocks collapse to one row;
// the returned bool reports whether this call created it.
func (s *progressService) UnlockAchievement(ctx context.Context, userID uint, code string) (bool, error) {
	if _, err := s.engagement.GetAchievement(ctx, userID, code); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	bonus := achievementBonuses[code]
	achievement := models.Achievement{
		UserID:     userID,
		Code:       code,
		XPBonus:    bonus,
		UnlockedAt: time.Now().UTC(),
	}
	if err := s.engagement.CreateAchievement(ctx, &achievement); err != nil {
		return false, err
	}

	if bonus > 0 {
		if err := s.users.AddXP(ctx, userID, bonus); err != nil {
			return false, err
		}
	}

	s.logger.Info().Uint("user_id", userID).Str("achievement", code).Int("xp_bonus", bonus).Msg("achievement unlocked")
	return true, nil
}

func (s *progressService) ListAchievements(ctx context.Context, userID uint) ([]models.Achievement, error) {
	return s.engagement.ListAchievements(ctx, userID)
}
