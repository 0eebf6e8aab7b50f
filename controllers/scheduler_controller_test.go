package controller

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMasterTickDrainsDueSteps(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "")

	// Backdate the schedule so the 2h email step is already due.
	require.NoError(t, env.sched.ScheduleSequences(lead, time.Now().Add(-3*time.Hour)))

	resp, body := env.get(t, "/api/cron/master")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	emails := body["emails"].(map[string]interface{})
	assert.EqualValues(t, 1, emails["processed"])
	assert.EqualValues(t, 1, emails["successful"])
	assert.Equal(t, []string{"quote_ready"}, env.email.sent)

	sms := body["sms"].(map[string]interface{})
	assert.EqualValues(t, 0, sms["processed"])
}

func TestManualSend(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp, body := env.postJSON(t, "/api/cron/send", fiber.Map{
		"lead_id":      lead.UUID,
		"channel":      "email",
		"message_type": "quote_ready",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ref-quote_ready", data["provider_message_id"])
	assert.Equal(t, []string{"quote_ready"}, env.email.sent)
}

func TestManualSendValidation(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp, _ := env.postJSON(t, "/api/cron/send", fiber.Map{
		"lead_id":      lead.UUID,
		"channel":      "fax",
		"message_type": "quote_ready",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.postJSON(t, "/api/cron/send", fiber.Map{
		"lead_id":      "no-such-lead",
		"channel":      "email",
		"message_type": "quote_ready",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// An unknown template is a provider-side failure, not a crash.
	resp, _ = env.postJSON(t, "/api/cron/send", fiber.Map{
		"lead_id":      lead.UUID,
		"channel":      "sms",
		"message_type": "no_such_template",
	})
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
