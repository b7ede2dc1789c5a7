package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// TestHandler wires the weekly test routes.
type TestHandler struct {
	service service.TestService
	logger  zerolog.Logger
}

// NewTestHandler constructs the handler.
func NewTestHandler(service service.TestService, logger zerolog.Logger) *TestHandler {
	return &TestHandler{
		service: service,
		logger:  logger.With().Str("component", "test_handler").Logger(),
	}
}

// Register attaches weekly test endpoints to the router group.
func (h *TestHandler) Register(router fiber.Router) {
	router.Get("/tests", h.list)
	router.Get("/tests/:id", h.get)
	router.Post("/tests/submit", h.submit)
	router.Get("/tests/:id/result", h.myResult)
}

func (h *TestHandler) list(c *fiber.Ctx) error {
	tests, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "tests retrieved", tests)
}

func (h *TestHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	test, err := h.service.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "test retrieved", test)
}

func (h *TestHandler) submit(c *fiber.Ctx) error {
	var payload dto.TestSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "test submitted"
	if result.AlreadySubmitted {
		message = "test already submitted"
	}
	return utils.SendSuccess(c, message, result)
}

func (h *TestHandler) myResult(c *fiber.Ctx) error {
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

func (h *TestHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
