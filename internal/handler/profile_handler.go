package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// ProfileHandler wires the learner's own dashboard routes.
type ProfileHandler struct {
	profiles service.ProfileService
	progress service.ProgressService
	logger   zerolog.Logger
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(profiles service.ProfileService, progress service.ProgressService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		progress: progress,
		logger:   logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register attaches profile endpoints to the router group.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("/profile/me", h.me)
	router.Post("/profile/streak", h.touchStreak)
	router.Get("/profile/achievements", h.achievements)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	profile, err := h.profiles.Get(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) touchStreak(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	streak, err := h.progress.TouchStreak(c.Context(), userID, time.Now().UTC())
	if err != nil {
		return h.handleError(c, err)
	}
	h.profiles.Invalidate(c.Context(), userID)
	return utils.SendSuccess(c, "streak recorded", streak)
}

func (h *ProfileHandler) achievements(c *fiber.Ctx) error {
	achievements, err := h.progress.ListAchievements(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "achievements retrieved", dto.NewAchievementResponses(achievements))
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
