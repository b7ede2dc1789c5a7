package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/dto"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

// LessonHandler wires the course catalogue and lesson quiz routes.
type LessonHandler struct {
	service service.LessonService
	logger  zerolog.Logger
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(service service.LessonService, logger zerolog.Logger) *LessonHandler {
	return &LessonHandler{
		service: service,
		logger:  logger.With().Str("component", "lesson_handler").Logger(),
	}
}

// Register attaches course and lesson endpoints to the router group.
func (h *LessonHandler) Register(router fiber.Router) {
	router.Get("/courses", h.listCourses)
	router.Get("/courses/:id", h.getCourse)
	router.Get("/lessons/:id", h.getLesson)
	router.Post("/lessons/:id/quiz", h.completeQuiz)
}

func (h *LessonHandler) listCourses(c *fiber.Ctx) error {
	courses, err := h.service.ListCourses(c.Context(), userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *LessonHandler) getCourse(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	course, err := h.service.GetCourse(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *LessonHandler) getLesson(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	lesson, err := h.service.GetLesson(c.Context(), id, userIDFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "lesson retrieved", lesson)
}

func (h *LessonHandler) completeQuiz(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.CompleteQuizRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.CompleteQuiz(c.Context(), userIDFromContext(c), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "quiz completed", result)
}

func (h *LessonHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, response := sendServiceError(c, err); handled {
		return response
	}
	requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
