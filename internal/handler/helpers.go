package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/kidlearn-api/internal/middleware"
	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// sendServiceError maps the shared sentinel errors onto HTTP statuses. A
// false return means the error was not recognised and the caller should
// treat it as internal.
func sendServiceError(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return true, utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	case errors.Is(err, service.ErrAccessDenied):
		return true, utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrTestNotFound),
		errors.Is(err, service.ErrResultNotFound),
		errors.Is(err, service.ErrContestNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrCodeNotFound),
		errors.Is(err, service.ErrReferralNotFound):
		return true, utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSubmissionFinalized),
		errors.Is(err, service.ErrEntryAlreadyEvaluated),
		errors.Is(err, service.ErrRewardLocked),
		errors.Is(err, service.ErrAlreadyEntered),
		errors.Is(err, service.ErrCodeAlreadyRedeemed),
		errors.Is(err, service.ErrAlreadyReferred),
		errors.Is(err, service.ErrCodeNotRedeemable),
		errors.Is(err, service.ErrSelfReferral):
		return true, utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnknownPeriod),
		errors.Is(err, service.ErrInvalidQuestionSet):
		return true, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDraftsDisabled):
		return true, utils.SendError(c, fiber.StatusNotImplemented, err.Error())
	}
	return false, nil
}
