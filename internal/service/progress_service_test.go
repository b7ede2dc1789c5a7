package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

func newProgressFixture(t *testing.T) (ProgressService, *memoryProgressRepo, *memoryEngagementRepo, *memoryUserRepo) {
	t.Helper()
	progressRepo := newMemoryProgressRepo()
	engagementRepo := newMemoryEngagementRepo()
	userRepo := newMemoryUserRepo()
	svc := NewProgressService(progressRepo, engagementRepo, userRepo, nil, zerolog.Nop())
	return svc, progressRepo, engagementRepo, userRepo
}

func TestRecordSuccessFirstSolveOnly(t *testing.T) {
	svc, _, _, userRepo := newProgressFixture(t)
	user := models.User{Name: "Ana", Email: "ana@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	submissionID := uint(7)

	progress, first, err := svc.RecordSuccess(context.Background(), user.ID, models.ItemTypeChallenge, 3, &submissionID, at)
	require.NoError(t, err)
	require.True(t, first)
	require.True(t, progress.Solved)
	require.Equal(t, &submissionID, progress.BestSubmissionID)

	later := uint(9)
	progress, first, err = svc.RecordSuccess(context.Background(), user.ID, models.ItemTypeChallenge, 3, &later, at.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, first)
	// the first solve's submission stays pinned
	require.Equal(t, submissionID, *progress.BestSubmissionID)
}

func TestRecordAttemptCountsEveryAttempt(t *testing.T) {
	svc, _, _, _ := newProgressFixture(t)

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	progress, err := svc.RecordAttempt(context.Background(), 1, models.ItemTypeChallenge, 3, at)
	require.NoError(t, err)
	require.Equal(t, 1, progress.Attempts)

	progress, err = svc.RecordAttempt(context.Background(), 1, models.ItemTypeChallenge, 3, at.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, progress.Attempts)
	require.False(t, progress.Solved)
}

func TestTouchStreakContinuesFromYesterday(t *testing.T) {
	svc, _, engagementRepo, _ := newProgressFixture(t)

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first, err := svc.TouchStreak(context.Background(), 1, day1)
	require.NoError(t, err)
	require.Equal(t, 1, first.StreakCount)
	require.False(t, first.Continued)

	second, err := svc.TouchStreak(context.Background(), 1, day1.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, 2, second.StreakCount)
	require.True(t, second.Continued)

	latest, err := engagementRepo.LatestStreak(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "2026-03-02", latest.Date)
}

func TestTouchStreakGapResetsToOne(t *testing.T) {
	svc, _, _, _ := newProgressFixture(t)

	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.TouchStreak(context.Background(), 1, day1)
	require.NoError(t, err)

	afterGap, err := svc.TouchStreak(context.Background(), 1, day1.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Equal(t, 1, afterGap.StreakCount)
	require.False(t, afterGap.Continued)
}

func TestTouchStreakSameDayIsIdempotent(t *testing.T) {
	svc, _, _, _ := newProgressFixture(t)

	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	_, err := svc.TouchStreak(context.Background(), 1, at)
	require.NoError(t, err)

	again, err := svc.TouchStreak(context.Background(), 1, at.Add(5*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, again.StreakCount)
}

func TestTouchStreakMilestoneUnlocksBadge(t *testing.T) {
	svc, _, engagementRepo, userRepo := newProgressFixture(t)
	user := models.User{Name: "Ben", Email: "ben@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for day := 0; day < 7; day++ {
		_, err := svc.TouchStreak(context.Background(), user.ID, start.AddDate(0, 0, day))
		require.NoError(t, err)
	}

	badge, err := engagementRepo.GetAchievement(context.Background(), user.ID, models.AchievementStreakWeek)
	require.NoError(t, err)
	require.Equal(t, 50, badge.XPBonus)

	updated, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 50, updated.XP)
}

func TestUnlockAchievementOnce(t *testing.T) {
	svc, _, _, userRepo := newProgressFixture(t)
	user := models.User{Name: "Cas", Email: "cas@example.com"}
	require.NoError(t, userRepo.Create(context.Background(), &user))

	created, err := svc.UnlockAchievement(context.Background(), user.ID, models.AchievementFirstLesson)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.UnlockAchievement(context.Background(), user.ID, models.AchievementFirstLesson)
	require.NoError(t, err)
	require.False(t, created)

	updated, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 10, updated.XP)
}

func TestRecordBestScoreIsMonotonic(t *testing.T) {
	svc, _, _, _ := newProgressFixture(t)

	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	progress, previous, err := svc.RecordBestScore(context.Background(), 1, 5, 60, at)
	require.NoError(t, err)
	require.Zero(t, previous)
	require.Equal(t, 60, progress.BestScore)

	progress, previous, err = svc.RecordBestScore(context.Background(), 1, 5, 40, at.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, 60, previous)
	require.Equal(t, 60, progress.BestScore)

	progress, previous, err = svc.RecordBestScore(context.Background(), 1, 5, 90, at.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 60, previous)
	require.Equal(t, 90, progress.BestScore)
}
