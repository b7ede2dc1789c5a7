package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// AdminGradingHandler wires evaluation, rank assignment, publishing, judge
// callbacks and access code administration.
type AdminGradingHandler struct {
	contests    service.ContestService
	ranking     service.RankingService
	submissions service.ChallengeSubmissionService
	access      service.AccessService
	logger      zerolog.Logger
}

// NewAdminGradingHandler constructs the handler.
func NewAdminGradingHandler(
	contests service.ContestService,
	ranking service.RankingService,
	submissions service.ChallengeSubmissionService,
	access service.AccessService,
	logger zerolog.Logger,
) *AdminGradingHandler {
	return &AdminGradingHandler{
		contests:    contests,
		ranking:     ranking,
		submissions: submissions,
		access:      access,
		logger:      logger.With().Str("component", "admin_grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the admin router group.
func (h *AdminGradingHandler) Register(router fiber.Router) {
	router.Post("/entries/:id/evaluate", h.evaluateEntry)
	router.Post("/tests/:id/ranks", h.assignTestRanks)
	router.Post("/tests/:id/publish", h.publishTest)
	router.Post("/contests/:id/ranks", h.assignContestRanks)
	router.Post("/contests/:id/publish", h.publishContest)
	router.Post("/judge/results", h.recordJudgeResult)
	router.Post("/access-codes", h.createAccessCode)
	router.Get("/access-codes", h.listAccessCodes)
}

func (h *AdminGradingHandler) evaluateEntry(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.EvaluateEntryRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.contests.EvaluateEntry(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "entry evaluated", result)
}

func (h *AdminGradingHandler) assignTestRanks(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.ranking.AssignTestRanks(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "ranks assigned", result)
}

func (h *AdminGradingHandler) publishTest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.ranking.PublishTest(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "results published", result)
}

func (h *AdminGradingHandler) assignContestRanks(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.ranking.AssignContestRanks(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "ranks assigned", result)
}

func (h *AdminGradingHandler) publishContest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.ranking.PublishContest(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "results published", result)
}

// recordJudgeResult is the callback endpoint the external judge posts
// verdicts to when submissions are judged out of band.
func (h *AdminGradingHandler) recordJudgeResult(c *fiber.Ctx) error {
	var payload dto.JudgeResultRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.submissions.RecordResult(c.Context(), payload.SubmissionID, payload.Results)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "verdict recorded", submission)
}

func (h *AdminGradingHandler) createAccessCode(c *fiber.Ctx) error {
	var payload dto.AccessCodeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	code, err := h.access.CreateCode(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "access code created", code)
}

func (h *AdminGradingHandler) listAccessCodes(c *fiber.Ctx) error {
	codes, err := h.access.ListCodes(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "access codes retrieved", codes)
}

func (h *AdminGradingHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
