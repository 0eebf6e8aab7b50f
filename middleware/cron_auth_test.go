package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmawaste/config"
)

func newCronApp(t *testing.T, secret string) *fiber.App {
	t.Helper()
	prev := config.AppConfig.CronSecret
	config.AppConfig.CronSecret = secret
	t.Cleanup(func() { config.AppConfig.CronSecret = prev })

	app := fiber.New()
	app.Get("/api/cron/process-emails", CronAuth(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"processed": 0})
	})
	return app
}

func requestWithAuth(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/process-emails", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCronAuth(t *testing.T) {
	app := newCronApp(t, "cron-secret")

	resp := requestWithAuth(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = requestWithAuth(t, app, "Bearer wrong-secret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The secret must arrive as a bearer token, not bare.
	resp = requestWithAuth(t, app, "cron-secret")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = requestWithAuth(t, app, "Bearer cron-secret")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCronAuthDisabledWithoutSecret(t *testing.T) {
	app := newCronApp(t, "")

	resp := requestWithAuth(t, app, "Bearer anything")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
