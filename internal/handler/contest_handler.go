package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// ContestHandler wires the learner-facing contest routes.
type ContestHandler struct {
	service service.ContestService
	logger  zerolog.Logger
}

// NewContestHandler constructs the handler.
func NewContestHandler(service service.ContestService, logger zerolog.Logger) *ContestHandler {
	return &ContestHandler{
		service: service,
		logger:  logger.With().Str("component", "contest_handler").Logger(),
	}
}

// Register attaches contest endpoints to the router group.
func (h *ContestHandler) Register(router fiber.Router) {
	router.Get("/contests", h.list)
	router.Get("/contests/:id", h.get)
	router.Post("/contests/enter", h.enter)
	router.Get("/contests/:id/result", h.myResult)
}

func (h *ContestHandler) list(c *fiber.Ctx) error {
	contests, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "contests retrieved", contests)
}

func (h *ContestHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	contest, err := h.service.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "contest retrieved", contest)
}

func (h *ContestHandler) enter(c *fiber.Ctx) error {
	var payload dto.ContestEntryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.service.Enter(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest entered", entry)
}

func (h *ContestHandler) myResult(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.service.MyResult(c.Context(), userIDFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "result retrieved", result)
}

func (h *ContestHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
