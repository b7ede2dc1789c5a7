package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kidlearn-api/internal/service"
	"github.com/noah-isme/kidlearn-api/internal/utils"
)

func TestSendServiceErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"access denied", service.ErrAccessDenied, fiber.StatusForbidden},
		{"missing challenge", service.ErrChallengeNotFound, fiber.StatusNotFound},
		{"missing result", service.ErrResultNotFound, fiber.StatusNotFound},
		{"finalized submission", service.ErrSubmissionFinalized, fiber.StatusConflict},
		{"double redemption", service.ErrCodeAlreadyRedeemed, fiber.StatusConflict},
		{"self referral", service.ErrSelfReferral, fiber.StatusConflict},
		{"unknown period", service.ErrUnknownPeriod, fiber.StatusBadRequest},
		{"drafts disabled", service.ErrDraftsDisabled, fiber.StatusNotImplemented},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/boom", func(c *fiber.Ctx) error {
				handled, response := sendServiceError(c, tc.err)
				require.True(t, handled)
				return response
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSendServiceErrorPassesThroughUnknownErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		handled, _ := sendServiceError(c, fiber.ErrTeapot)
		require.False(t, handled)
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
