package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// AccessHandler wires PRO voucher redemption and referral routes.
type AccessHandler struct {
	service  service.AccessService
	profiles service.ProfileService
	logger   zerolog.Logger
}

// NewAccessHandler constructs the handler.
func NewAccessHandler(service service.AccessService, profiles service.ProfileService, logger zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		service:  service,
		profiles: profiles,
		logger:   logger.With().Str("component", "access_handler").Logger(),
	}
}

// Register attaches access endpoints to the router group.
func (h *AccessHandler) Register(router fiber.Router) {
	router.Post("/access/redeem", h.redeem)
	router.Post("/access/referral", h.referral)
}

func (h *AccessHandler) redeem(c *fiber.Ctx) error {
	var payload dto.RedeemCodeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	result, err := h.service.RedeemCode(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	h.profiles.Invalidate(c.Context(), userID)
	return utils.SendSuccess(c, "code redeemed", result)
}

func (h *AccessHandler) referral(c *fiber.Ctx) error {
	var payload dto.ApplyReferralRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	result, err := h.service.ApplyReferral(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	h.profiles.Invalidate(c.Context(), userID)
	return utils.SendSuccess(c, "referral applied", result)
}

func (h *AccessHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
