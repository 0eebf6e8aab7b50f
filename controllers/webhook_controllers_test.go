package controller

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmawaste/models"
	"pharmawaste/utils"
)

func TestParseCorrelationRef(t *testing.T) {
	leadUUID := "6fa1c7e2-9b1d-4f6e-8a3b-2f0d9c7b5a41"
	ref := utils.CorrelationRef(leadUUID, "quote_ready")

	gotUUID, gotKind, ok := parseCorrelationRef(ref)
	require.True(t, ok)
	assert.Equal(t, leadUUID, gotUUID)
	assert.Equal(t, "quote_ready", gotKind)

	_, _, ok = parseCorrelationRef("msg-12345")
	assert.False(t, ok)
	_, _, ok = parseCorrelationRef("lead-nodashes")
	assert.False(t, ok)
	_, _, ok = parseCorrelationRef("lead-abc-")
	assert.False(t, ok)
}

func emailEventPayload(eventType, ref string) fiber.Map {
	return fiber.Map{
		"type": eventType,
		"data": fiber.Map{
			"email_id": "re_123",
			"subject":  "Your quote",
			"headers":  fiber.Map{"X-Entity-Ref-ID": ref},
		},
	}
}

func TestEmailWebhookClickPromotesLead(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "")

	ref := utils.CorrelationRef(lead.UUID, "quote_ready")
	resp, body := env.postJSON(t, "/api/webhooks/email", emailEventPayload("email.clicked", ref))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["received"])

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusContacted, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "clicked email link")
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindEmailClicked))
}

func TestEmailWebhookComplaintStopsEverything(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")
	require.NoError(t, env.sched.ScheduleSequences(lead, time.Now()))

	ref := utils.CorrelationRef(lead.UUID, "welcome")
	resp, _ := env.postJSON(t, "/api/webhooks/email", emailEventPayload("email.complained", ref))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusClosedLost, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "Spam complaint")

	var pending int64
	require.NoError(t, env.db.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND sent = ?", lead.ID, false).Count(&pending).Error)
	assert.EqualValues(t, 0, pending)
}

func TestEmailWebhookBounceStopsSequences(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "")
	require.NoError(t, env.sched.ScheduleSequences(lead, time.Now()))

	ref := utils.CorrelationRef(lead.UUID, "welcome")
	resp, _ := env.postJSON(t, "/api/webhooks/email", emailEventPayload("email.bounced", ref))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stopped int64
	require.NoError(t, env.db.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND outcome = ?", lead.ID, models.OutcomeStopped).Count(&stopped).Error)
	assert.EqualValues(t, 6, stopped)

	// Bounce stops outreach but does not close the lead.
	assert.Equal(t, models.StatusNew, env.reload(t, lead).Status)
}

func TestEmailWebhookIgnoresUnknownRef(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.postJSON(t, "/api/webhooks/email", emailEventPayload("email.opened", "garbage"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["received"])
}

func TestCallWebhookAppointmentQualifiesLead(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp, body := env.postJSON(t, "/api/webhooks/call", fiber.Map{
		"call_id":     "call-abc",
		"call_length": 95.0,
		"answered":    true,
		"summary":     "Wants a Tuesday consultation",
		"metadata":    fiber.Map{"lead_id": lead.UUID, "attempt_number": 1},
		"analysis": fiber.Map{
			"appointment_scheduled": true,
			"appointment_time":      "Tuesday 2:00 PM",
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["received"])

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusQualified, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "Appointment scheduled")

	// Confirmation SMS goes straight out, and the long answered call is
	// flagged as a quality conversation.
	require.Len(t, env.sms.sent, 1)
	assert.Contains(t, env.sms.sent[0], "Tuesday 2:00 PM")
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindCallCompleted))
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindQualityConversation))
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindSMSSent))
}

func TestCallWebhookNotInterestedClosesLead(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")
	require.NoError(t, env.sched.ScheduleSequences(lead, time.Now()))

	resp, _ := env.postJSON(t, "/api/webhooks/call", fiber.Map{
		"call_id":     "call-abc",
		"call_length": 40.0,
		"answered":    true,
		"metadata":    fiber.Map{"lead_id": lead.UUID, "attempt_number": 1},
		"analysis":    fiber.Map{"not_interested": true, "objection": "already under contract"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusClosedLost, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "already under contract")

	var pending int64
	require.NoError(t, env.db.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND sent = ? AND kind = ?", lead.ID, false, models.KindScheduledEmail).
		Count(&pending).Error)
	assert.EqualValues(t, 0, pending)
}

func TestCallWebhookVoicemailQueuesFollowupSMS(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp, _ := env.postJSON(t, "/api/webhooks/call", fiber.Map{
		"call_id":    "call-abc",
		"answered":   false,
		"end_reason": "voicemail",
		"metadata":   fiber.Map{"lead_id": lead.UUID, "attempt_number": 1},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The follow-up is a durable row, drained by the next SMS tick.
	var row models.LeadInteraction
	require.NoError(t, env.db.Where("lead_id = ? AND kind = ? AND message_type = ?",
		lead.ID, models.KindScheduledSMS, "missed_call_followup").First(&row).Error)
	assert.False(t, row.Sent)
	assert.Empty(t, env.sms.sent)

	summary := env.sched.ProcessDueSMS(time.Now().Add(time.Second))
	assert.Equal(t, 1, summary.Successful)
	require.Len(t, env.sms.sent, 1)
	assert.Contains(t, env.sms.sent[0], "just tried calling")
}

func TestCallWebhookFinalAttemptQueuesLastSMS(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp, _ := env.postJSON(t, "/api/webhooks/call", fiber.Map{
		"call_id":    "call-abc",
		"answered":   false,
		"end_reason": "no_answer",
		"metadata":   fiber.Map{"lead_id": lead.UUID, "attempt_number": 3},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var row models.LeadInteraction
	require.NoError(t, env.db.Where("lead_id = ? AND kind = ? AND message_type = ?",
		lead.ID, models.KindScheduledSMS, "final_attempt").First(&row).Error)
	assert.False(t, row.Sent)

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusContacted, reloaded.Status)
}

func TestCallWebhookUnknownLead(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.postJSON(t, "/api/webhooks/call", fiber.Map{
		"call_id":  "call-abc",
		"answered": true,
		"metadata": fiber.Map{"lead_id": "no-such-lead"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["received"])
}

func TestSMSWebhookOptOut(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")
	require.NoError(t, env.sched.ScheduleSequences(lead, time.Now()))

	resp := env.postForm(t, "/api/webhooks/sms", url.Values{
		"MessageSid": {"SM123"},
		"From":       {"+14155552671"},
		"Body":       {"STOP"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusClosedLost, reloaded.Status)
	assert.Contains(t, reloaded.Notes, "SMS opt-out")
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindSMSReply))

	var pending int64
	require.NoError(t, env.db.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND sent = ?", lead.ID, false).Count(&pending).Error)
	assert.EqualValues(t, 0, pending)
}

func TestSMSWebhookReplyPromotesLead(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	resp := env.postForm(t, "/api/webhooks/sms", url.Values{
		"MessageSid":    {"SM123"},
		"From":          {"(415) 555-2671"},
		"Body":          {"Sure, call me after 3pm"},
		"MessageStatus": {"received"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reloaded := env.reload(t, lead)
	assert.Equal(t, models.StatusContacted, reloaded.Status)
}

func TestSMSWebhookDeliveryStatus(t *testing.T) {
	env := newTestEnv(t)
	lead := env.createLead(t, "+14155552671")

	// Twilio status callbacks echo the outbound Body; it must not be
	// mistaken for an inbound reply.
	resp := env.postForm(t, "/api/webhooks/sms", url.Values{
		"MessageSid":    {"SM123"},
		"To":            {"+14155552671"},
		"Body":          {"Hi Mercy Hospital! Your pharmaceutical waste disposal quote is being prepared."},
		"MessageStatus": {"delivered"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.countInteractions(t, lead.ID, models.KindSMSDelivery))
	assert.EqualValues(t, 0, env.countInteractions(t, lead.ID, models.KindSMSReply))
	assert.Equal(t, models.StatusNew, env.reload(t, lead).Status)
}
