package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// AdminContentHandler wires the authoring routes.
type AdminContentHandler struct {
	service service.AdminContentService
	logger  zerolog.Logger
}

// NewAdminContentHandler constructs the handler.
func NewAdminContentHandler(service service.AdminContentService, logger zerolog.Logger) *AdminContentHandler {
	return &AdminContentHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_content_handler").Logger(),
	}
}

// Register attaches authoring endpoints to the admin router group.
func (h *AdminContentHandler) Register(router fiber.Router) {
	router.Post("/courses", h.createCourse)
	router.Put("/courses/:id", h.updateCourse)
	router.Delete("/courses/:id", h.deleteCourse)

	router.Post("/lessons", h.createLesson)
	router.Put("/lessons/:id", h.updateLesson)
	router.Delete("/lessons/:id", h.deleteLesson)

	router.Post("/challenges", h.createChallenge)
	router.Put("/challenges/:id", h.updateChallenge)
	router.Delete("/challenges/:id", h.deleteChallenge)

	router.Post("/tests", h.createTest)
	router.Put("/tests/:id", h.updateTest)
	router.Delete("/tests/:id", h.deleteTest)

	router.Post("/contests", h.createContest)
	router.Put("/contests/:id", h.updateContest)
	router.Delete("/contests/:id", h.deleteContest)

	router.Post("/questions/import", h.importQuestionSet)
	router.Post("/lessons/draft", h.generateLessonDraft)
}

func (h *AdminContentHandler) createCourse(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.CreateCourse(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *AdminContentHandler) updateCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.service.UpdateCourse(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course updated", course)
}

func (h *AdminContentHandler) deleteCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteCourse(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course deleted", fiber.Map{"id": id})
}

func (h *AdminContentHandler) createLesson(c *fiber.Ctx) error {
	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.CreateLesson(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "lesson created", lesson)
}

func (h *AdminContentHandler) updateLesson(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LessonCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	lesson, err := h.service.UpdateLesson(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "lesson updated", lesson)
}

func (h *AdminContentHandler) deleteLesson(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteLesson(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "lesson deleted", fiber.Map{"id": id})
}

func (h *AdminContentHandler) createChallenge(c *fiber.Ctx) error {
	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.service.CreateChallenge(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "challenge created", challenge)
}

func (h *AdminContentHandler) updateChallenge(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ChallengeCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	challenge, err := h.service.UpdateChallenge(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "challenge updated", challenge)
}

func (h *AdminContentHandler) deleteChallenge(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteChallenge(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "challenge deleted", fiber.Map{"id": id})
}

func (h *AdminContentHandler) createTest(c *fiber.Ctx) error {
	var payload dto.TestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	test, err := h.service.CreateTest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "test created", test)
}

func (h *AdminContentHandler) updateTest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	test, err := h.service.UpdateTest(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "test updated", test)
}

func (h *AdminContentHandler) deleteTest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteTest(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "test deleted", fiber.Map{"id": id})
}

func (h *AdminContentHandler) createContest(c *fiber.Ctx) error {
	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contest, err := h.service.CreateContest(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contest created", contest)
}

func (h *AdminContentHandler) updateContest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ContestCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	contest, err := h.service.UpdateContest(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "contest updated", contest)
}

func (h *AdminContentHandler) deleteContest(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.DeleteContest(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "contest deleted", fiber.Map{"id": id})
}

func (h *AdminContentHandler) importQuestionSet(c *fiber.Ctx) error {
	var payload dto.QuestionSetImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.ImportQuestionSet(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "question set imported", result)
}

func (h *AdminContentHandler) generateLessonDraft(c *fiber.Ctx) error {
	var payload dto.LessonDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	draft, err := h.service.GenerateLessonDraft(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "lesson draft generated", draft)
}

func (h *AdminContentHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
