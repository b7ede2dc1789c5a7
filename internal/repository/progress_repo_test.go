package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

func TestProgressCountSolvedInRange(t *testing.T) {
	db := setupTestDB(t, &models.Progress{})
	repo := NewProgressRepository(db)
	ctx := context.Background()

	inWindow := time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2026, time.July, 1, 10, 0, 0, 0, time.UTC)

	rows := []models.Progress{
		{UserID: 1, ItemType: models.ItemTypeChallenge, ItemID: 1, Attempts: 1, Solved: true, SolvedAt: &inWindow, LastAttemptAt: inWindow},
		{UserID: 1, ItemType: models.ItemTypeChallenge, ItemID: 2, Attempts: 3, Solved: true, SolvedAt: &outOfWindow, LastAttemptAt: outOfWindow},
		{UserID: 1, ItemType: models.ItemTypeChallenge, ItemID: 3, Attempts: 2, Solved: false, LastAttemptAt: inWindow},
		{UserID: 2, ItemType: models.ItemTypeChallenge, ItemID: 1, Attempts: 1, Solved: true, SolvedAt: &inWindow, LastAttemptAt: inWindow},
	}
	for i := range rows {
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	count, err := repo.CountSolvedInRange(ctx, 1, models.ItemTypeChallenge, from, to)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "only user 1's in-window solve counts")
}

func TestChallengeDeleteCascadesExplicitly(t *testing.T) {
	db := setupTestDB(t, &models.CodingChallenge{}, &models.ChallengeTestCase{}, &models.ChallengeSubmission{}, &models.Progress{})
	challenges := NewChallengeRepository(db)
	ctx := context.Background()

	challenge := models.CodingChallenge{
		Title:      "Reverse a string",
		Difficulty: models.DifficultyEasy,
		Points:     25,
		TestCases: []models.ChallengeTestCase{
			{Input: "abc", ExpectedOutput: "cba"},
			{Input: "kid", ExpectedOutput: "dik", Hidden: true},
		},
	}
	require.NoError(t, challenges.Create(ctx, &challenge))

	sub := models.ChallengeSubmission{UserID: 1, ChallengeID: challenge.ID, Language: "python", Status: models.SubmissionStatusAccepted, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&sub).Error)
	prog := models.Progress{UserID: 1, ItemType: models.ItemTypeChallenge, ItemID: challenge.ID, Attempts: 1, LastAttemptAt: time.Now()}
	require.NoError(t, db.Create(&prog).Error)

	require.NoError(t, challenges.Delete(ctx, challenge.ID))

	var cases, subs, progs int64
	require.NoError(t, db.Model(&models.ChallengeTestCase{}).Where("coding_challenge_id = ?", challenge.ID).Count(&cases).Error)
	require.NoError(t, db.Model(&models.ChallengeSubmission{}).Where("challenge_id = ?", challenge.ID).Count(&subs).Error)
	require.NoError(t, db.Model(&models.Progress{}).Where("item_id = ?", challenge.ID).Count(&progs).Error)
	require.Zero(t, cases)
	require.Zero(t, subs)
	require.Zero(t, progs)
}

func TestTestSubmissionUniquePerUserAndTest(t *testing.T) {
	db := setupTestDB(t, &models.TestSubmission{})
	repo := NewTestRepository(db)
	ctx := context.Background()

	first := models.TestSubmission{UserID: 5, TestID: 9, Score: 80, SubmittedAt: time.Now()}
	require.NoError(t, repo.CreateSubmission(ctx, &first))

	duplicate := models.TestSubmission{UserID: 5, TestID: 9, Score: 95, SubmittedAt: time.Now()}
	require.Error(t, repo.CreateSubmission(ctx, &duplicate), "unique index must reject a second row")
}
