package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/scoring"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// LeaderboardHandler wires the leaderboard read routes.
type LeaderboardHandler struct {
	service service.LeaderboardService
	logger  zerolog.Logger
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service service.LeaderboardService, logger zerolog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		service: service,
		logger:  logger.With().Str("component", "leaderboard_handler").Logger(),
	}
}

// Register attaches leaderboard endpoints to the router group.
func (h *LeaderboardHandler) Register(router fiber.Router) {
	router.Get("/leaderboard", h.top)
	router.Get("/leaderboard/xp", h.xp)
}

func (h *LeaderboardHandler) top(c *fiber.Ctx) error {
	period := c.Query("period", scoring.AllTimePeriod)
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	board, err := h.service.Top(c.Context(), period, limit)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "leaderboard retrieved", board)
}

func (h *LeaderboardHandler) xp(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	board, err := h.service.XPLeaderboard(c.Context(), c.Query("group"), limit)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "xp leaderboard retrieved", board)
}

func (h *LeaderboardHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
