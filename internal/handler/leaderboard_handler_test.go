package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/scoring"
	"github.com/noah-isme/kidlearn-api/internal/service"
)

type stubLeaderboardService struct {
	topFn func(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error)
	xpFn  func(ctx context.Context, group string, limit int) (dto.XPLeaderboardResponse, error)
}

func (s *stubLeaderboardService) RecordSolve(ctx context.Context, userID uint, points, xp int, difficulty string, at time.Time) error {
	return nil
}

func (s *stubLeaderboardService) Top(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error) {
	return s.topFn(ctx, period, limit)
}

func (s *stubLeaderboardService) XPLeaderboard(ctx context.Context, group string, limit int) (dto.XPLeaderboardResponse, error) {
	return s.xpFn(ctx, group, limit)
}

func (s *stubLeaderboardService) Reconcile(ctx context.Context, userID uint, period string) (bool, error) {
	return true, nil
}

func newLeaderboardTestApp(stub *stubLeaderboardService) *fiber.App {
	app := fiber.New()
	NewLeaderboardHandler(stub, zerolog.Nop()).Register(app.Group("/api/v1"))
	return app
}

func TestLeaderboardTopDefaultsToAllTime(t *testing.T) {
	var gotPeriod string
	stub := &stubLeaderboardService{
		topFn: func(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error) {
			gotPeriod = period
			return dto.LeaderboardResponse{
				Period: period,
				Rows:   []dto.LeaderboardRowResponse{{Rank: 1, UserID: 7, TotalPoints: 120}},
			}, nil
		},
	}
	app := newLeaderboardTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/leaderboard", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, scoring.AllTimePeriod, gotPeriod)

	var payload struct {
		Success bool                    `json:"success"`
		Data    dto.LeaderboardResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Len(t, payload.Data.Rows, 1)
	require.Equal(t, uint(7), payload.Data.Rows[0].UserID)
}

func TestLeaderboardTopRejectsMalformedLimit(t *testing.T) {
	app := newLeaderboardTestApp(&stubLeaderboardService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/leaderboard?limit=abc", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLeaderboardTopUnknownPeriodIsBadRequest(t *testing.T) {
	stub := &stubLeaderboardService{
		topFn: func(ctx context.Context, period string, limit int) (dto.LeaderboardResponse, error) {
			return dto.LeaderboardResponse{}, service.ErrUnknownPeriod
		},
	}
	app := newLeaderboardTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/leaderboard?period=bogus", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestXPLeaderboardPassesGroupFilter(t *testing.T) {
	var gotGroup string
	stub := &stubLeaderboardService{
		xpFn: func(ctx context.Context, group string, limit int) (dto.XPLeaderboardResponse, error) {
			gotGroup = group
			return dto.XPLeaderboardResponse{Group: group}, nil
		},
	}
	app := newLeaderboardTestApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/leaderboard/xp?group=junior", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "junior", gotGroup)
}
