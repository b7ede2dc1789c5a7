package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/models"
)

func newRankingFixture(t *testing.T) (RankingService, *memoryTestRepo, *memoryContestRepo) {
	t.Helper()
	testRepo := newMemoryTestRepo()
	contestRepo := newMemoryContestRepo()
	svc := NewRankingService(testRepo, contestRepo, passthroughTx{}, nil, zerolog.Nop())
	return svc, testRepo, contestRepo
}

func seedTestSubmission(t *testing.T, repo *memoryTestRepo, testID, userID uint, score, timeTaken int) models.TestSubmission {
	t.Helper()
	submission := models.TestSubmission{
		UserID:           userID,
		TestID:           testID,
		Score:            score,
		TimeTakenSeconds: timeTaken,
		SubmittedAt:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.CreateSubmission(context.Background(), &submission))
	return submission
}

func TestAssignTestRanksTiesGetDistinctRanks(t *testing.T) {
	svc, testRepo, _ := newRankingFixture(t)

	test := models.WeeklyTest{Title: "Quiz"}
	require.NoError(t, testRepo.Create(context.Background(), &test))

	// Two tied scores, broken by time taken, then a lower score.
	a := seedTestSubmission(t, testRepo, test.ID, 1, 95, 120)
	b := seedTestSubmission(t, testRepo, test.ID, 2, 95, 300)
	c := seedTestSubmission(t, testRepo, test.ID, 3, 80, 60)

	response, err := svc.AssignTestRanks(context.Background(), test.ID)
	require.NoError(t, err)
	require.Equal(t, 3, response.Ranked)
	require.Equal(t, models.ItemTypeTest, response.ItemType)

	wantRanks := map[uint]int{a.ID: 1, b.ID: 2, c.ID: 3}
	for id, want := range wantRanks {
		stored := testRepo.submissions[id]
		require.NotNil(t, stored.Rank)
		require.Equal(t, want, *stored.Rank)
	}
}

func TestAssignTestRanksIsDeterministicAcrossReruns(t *testing.T) {
	svc, testRepo, _ := newRankingFixture(t)

	test := models.WeeklyTest{Title: "Quiz"}
	require.NoError(t, testRepo.Create(context.Background(), &test))

	seedTestSubmission(t, testRepo, test.ID, 1, 95, 120)
	seedTestSubmission(t, testRepo, test.ID, 2, 95, 120)

	first, err := svc.AssignTestRanks(context.Background(), test.ID)
	require.NoError(t, err)
	snapshot := make(map[uint]int)
	for id, submission := range testRepo.submissions {
		snapshot[id] = *submission.Rank
	}

	second, err := svc.AssignTestRanks(context.Background(), test.ID)
	require.NoError(t, err)
	require.Equal(t, first.Ranked, second.Ranked)
	for id, submission := range testRepo.submissions {
		require.Equal(t, snapshot[id], *submission.Rank)
	}
}

func TestAssignTestRanksUnknownTest(t *testing.T) {
	svc, _, _ := newRankingFixture(t)
	_, err := svc.AssignTestRanks(context.Background(), 42)
	require.ErrorIs(t, err, ErrTestNotFound)
}

func TestPublishTestRevealsAndIsIdempotent(t *testing.T) {
	svc, testRepo, _ := newRankingFixture(t)

	test := models.WeeklyTest{Title: "Quiz"}
	require.NoError(t, testRepo.Create(context.Background(), &test))
	seedTestSubmission(t, testRepo, test.ID, 1, 95, 120)
	seedTestSubmission(t, testRepo, test.ID, 2, 80, 120)

	published, err := svc.PublishTest(context.Background(), test.ID)
	require.NoError(t, err)
	require.True(t, published.Published)
	require.Equal(t, 2, published.Ranked)

	stored, err := testRepo.GetByID(context.Background(), test.ID)
	require.NoError(t, err)
	require.True(t, stored.IsResultsPublished)

	again, err := svc.PublishTest(context.Background(), test.ID)
	require.NoError(t, err)
	require.True(t, again.Published)
	require.Equal(t, 2, again.Ranked)
}

func TestAssignContestRanksSkipsUnevaluatedEntries(t *testing.T) {
	svc, _, contestRepo := newRankingFixture(t)

	contest := models.Contest{Title: "Art Jam"}
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	marks := func(v float64) *float64 { return &v }
	evaluated1 := models.ContestEntry{UserID: 1, ContestID: contest.ID, Marks: marks(95)}
	evaluated2 := models.ContestEntry{UserID: 2, ContestID: contest.ID, Marks: marks(95)}
	evaluated3 := models.ContestEntry{UserID: 3, ContestID: contest.ID, Marks: marks(80)}
	pending := models.ContestEntry{UserID: 4, ContestID: contest.ID}
	for _, entry := range []*models.ContestEntry{&evaluated1, &evaluated2, &evaluated3, &pending} {
		require.NoError(t, contestRepo.CreateEntry(context.Background(), entry))
	}

	response, err := svc.AssignContestRanks(context.Background(), contest.ID)
	require.NoError(t, err)
	require.Equal(t, 3, response.Ranked)

	wantRanks := map[uint]int{evaluated1.ID: 1, evaluated2.ID: 2, evaluated3.ID: 3}
	for id, want := range wantRanks {
		stored := contestRepo.entries[id]
		require.NotNil(t, stored.Rank)
		require.Equal(t, want, *stored.Rank)
	}
	require.Nil(t, contestRepo.entries[pending.ID].Rank)
}

func TestPublishContestIdempotent(t *testing.T) {
	svc, _, contestRepo := newRankingFixture(t)

	contest := models.Contest{Title: "Art Jam"}
	require.NoError(t, contestRepo.Create(context.Background(), &contest))
	marks := 70.0
	entry := models.ContestEntry{UserID: 1, ContestID: contest.ID, Marks: &marks}
	require.NoError(t, contestRepo.CreateEntry(context.Background(), &entry))

	first, err := svc.PublishContest(context.Background(), contest.ID)
	require.NoError(t, err)
	require.True(t, first.Published)
	require.Equal(t, 1, first.Ranked)

	second, err := svc.PublishContest(context.Background(), contest.ID)
	require.NoError(t, err)
	require.True(t, second.Published)
	require.Equal(t, 1, second.Ranked)
}
