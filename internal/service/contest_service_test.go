package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/models"
)

func newContestFixture(t *testing.T) (*contestService, *memoryContestRepo, *memoryUserRepo) {
	t.Helper()
	contestRepo := newMemoryContestRepo()
	userRepo := newMemoryUserRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewContestService(contestRepo, userRepo, validate, zerolog.Nop()).(*contestService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return svc, contestRepo, userRepo
}

func liveContestFixture() models.Contest {
	liveAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	expiresAt := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return models.Contest{
		Title:     "Story Contest",
		Rubric:    "creativity and clarity",
		Groups:    datatypes.JSONSlice[string]{models.GroupJunior},
		LiveAt:    &liveAt,
		ExpiresAt: &expiresAt,
	}
}

func TestContestEnterRecordsSingleEntry(t *testing.T) {
	svc, contestRepo, userRepo := newContestFixture(t)

	user := models.User{Name: "Ana", Email: "ana@example.com", Group: models.GroupJunior}
	require.NoError(t, userRepo.Create(context.Background(), &user))
	contest := liveContestFixture()
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	entered, err := svc.Enter(context.Background(), user.ID, dto.ContestEntryRequest{ContestID: contest.ID, Entry: "my story"})
	require.NoError(t, err)
	require.True(t, entered.Submitted)
	require.Nil(t, entered.Marks)

	_, err = svc.Enter(context.Background(), user.ID, dto.ContestEntryRequest{ContestID: contest.ID, Entry: "another"})
	require.ErrorIs(t, err, ErrAlreadyEntered)
}

func TestContestEnterClosedWindow(t *testing.T) {
	svc, contestRepo, userRepo := newContestFixture(t)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC) }

	user := models.User{Name: "Ben", Email: "ben@example.com", Group: models.GroupJunior}
	require.NoError(t, userRepo.Create(context.Background(), &user))
	contest := liveContestFixture()
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	_, err := svc.Enter(context.Background(), user.ID, dto.ContestEntryRequest{ContestID: contest.ID, Entry: "late"})
	require.ErrorIs(t, err, ErrAccessDenied)
}

func TestEvaluateEntryWritesOnce(t *testing.T) {
	svc, contestRepo, userRepo := newContestFixture(t)

	user := models.User{Name: "Cas", Email: "cas@example.com", Group: models.GroupJunior}
	require.NoError(t, userRepo.Create(context.Background(), &user))
	contest := liveContestFixture()
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	_, err := svc.Enter(context.Background(), user.ID, dto.ContestEntryRequest{ContestID: contest.ID, Entry: "entry"})
	require.NoError(t, err)
	entry, err := contestRepo.GetEntry(context.Background(), user.ID, contest.ID)
	require.NoError(t, err)

	evaluated, err := svc.EvaluateEntry(context.Background(), 99, entry.ID, dto.EvaluateEntryRequest{Marks: 87.5, Feedback: "great pacing"})
	require.NoError(t, err)
	require.NotNil(t, evaluated.Marks)
	require.Equal(t, 87.5, *evaluated.Marks)

	// a retry with identical marks is acknowledged, not re-applied
	retry, err := svc.EvaluateEntry(context.Background(), 99, entry.ID, dto.EvaluateEntryRequest{Marks: 87.5})
	require.NoError(t, err)
	require.Equal(t, 87.5, *retry.Marks)

	_, err = svc.EvaluateEntry(context.Background(), 99, entry.ID, dto.EvaluateEntryRequest{Marks: 60})
	require.ErrorIs(t, err, ErrEntryAlreadyEvaluated)
}

func TestContestMyResultHiddenUntilPublished(t *testing.T) {
	svc, contestRepo, userRepo := newContestFixture(t)

	user := models.User{Name: "Dee", Email: "dee@example.com", Group: models.GroupJunior}
	require.NoError(t, userRepo.Create(context.Background(), &user))
	contest := liveContestFixture()
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	_, err := svc.Enter(context.Background(), user.ID, dto.ContestEntryRequest{ContestID: contest.ID, Entry: "entry"})
	require.NoError(t, err)
	entry, err := contestRepo.GetEntry(context.Background(), user.ID, contest.ID)
	require.NoError(t, err)

	_, err = svc.EvaluateEntry(context.Background(), 99, entry.ID, dto.EvaluateEntryRequest{Marks: 91, Feedback: "well done"})
	require.NoError(t, err)

	hidden, err := svc.MyResult(context.Background(), user.ID, contest.ID)
	require.NoError(t, err)
	require.True(t, hidden.Submitted)
	require.Nil(t, hidden.Marks)
	require.Empty(t, hidden.Feedback)
	require.Nil(t, hidden.Rank)

	require.NoError(t, contestRepo.MarkPublished(context.Background(), contest.ID))

	revealed, err := svc.MyResult(context.Background(), user.ID, contest.ID)
	require.NoError(t, err)
	require.NotNil(t, revealed.Marks)
	require.Equal(t, 91.0, *revealed.Marks)
	require.Equal(t, "well done", revealed.Feedback)
}

func TestContestGetHiddenForOtherGroup(t *testing.T) {
	svc, contestRepo, userRepo := newContestFixture(t)

	user := models.User{Name: "Eli", Email: "eli@example.com", Group: models.GroupMaster}
	require.NoError(t, userRepo.Create(context.Background(), &user))
	contest := liveContestFixture()
	require.NoError(t, contestRepo.Create(context.Background(), &contest))

	_, err := svc.Get(context.Background(), contest.ID, user.ID)
	require.ErrorIs(t, err, ErrContestNotFound)
}
