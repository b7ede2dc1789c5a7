package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/repository"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// ChallengeHandler wires the coding challenge catalogue and submission
// routes.
type ChallengeHandler struct {
	challenges  service.ChallengeService
	submissions service.ChallengeSubmissionService
	logger      zerolog.Logger
}

// NewChallengeHandler constructs the handler.
func NewChallengeHandler(challenges service.ChallengeService, submissions service.ChallengeSubmissionService, logger zerolog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		challenges:  challenges,
		submissions: submissions,
		logger:      logger.With().Str("component", "challenge_handler").Logger(),
	}
}

// Register attaches challenge endpoints to the router group.
func (h *ChallengeHandler) Register(router fiber.Router) {
	router.Get("/challenges", h.list)
	router.Get("/challenges/:id", h.get)
	router.Get("/challenges/:id/submissions", h.listMine)
	router.Post("/submissions", h.submit)
	router.Get("/submissions/:id", h.getSubmission)
}

func (h *ChallengeHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	query := repository.ChallengeQuery{
		Difficulty: c.Query("difficulty"),
		Page:       page,
		PageSize:   pageSize,
	}

	challenges, err := h.challenges.List(c.Context(), userIDFromContext(c), query)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "challenges retrieved", challenges)
}

func (h *ChallengeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	challenge, err := h.challenges.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "challenge retrieved", challenge)
}

func (h *ChallengeHandler) submit(c *fiber.Ctx) error {
	var payload dto.ChallengeSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.Submit(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusAccepted, "submission accepted", submission)
}

func (h *ChallengeHandler) getSubmission(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *ChallengeHandler) listMine(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submissions, err := h.submissions.ListMine(c.Context(), userIDFromContext(c), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *ChallengeHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
