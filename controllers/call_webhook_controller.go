package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmawaste/messaging"
	"pharmawaste/models"
	"pharmawaste/scheduler"
)

// CallWebhookController ingests call outcomes from the voice provider.
// Always answers 200 so the provider never retries.
type CallWebhookController struct {
	DB        *gorm.DB
	Scheduler *scheduler.Scheduler
	Logger    *logrus.Logger
}

func NewCallWebhookController(db *gorm.DB, sched *scheduler.Scheduler, logger *logrus.Logger) *CallWebhookController {
	return &CallWebhookController{
		DB:        db,
		Scheduler: sched,
		Logger:    logger,
	}
}

type callEvent struct {
	CallID        string  `json:"call_id"`
	CallLength    float64 `json:"call_length"`
	Answered      bool    `json:"answered"`
	RecordingURL  string  `json:"recording_url"`
	Transcription string  `json:"transcription"`
	Summary       string  `json:"summary"`
	EndReason     string  `json:"end_reason"`
	Metadata      struct {
		LeadID        string `json:"lead_id"`
		AttemptNumber int    `json:"attempt_number"`
		LeadScore     int    `json:"lead_score"`
		FacilityType  string `json:"facility_type"`
	} `json:"metadata"`
	Analysis struct {
		Interested           bool   `json:"interested"`
		NotInterested        bool   `json:"not_interested"`
		AppointmentScheduled bool   `json:"appointment_scheduled"`
		AppointmentTime      string `json:"appointment_time"`
		Objection            string `json:"objection"`
	} `json:"analysis"`
}

func (cc *CallWebhookController) Handle(c *fiber.Ctx) error {
	var event callEvent
	if err := c.BodyParser(&event); err != nil {
		cc.Logger.WithError(err).Warn("Unparseable call webhook payload")
		return received(c)
	}
	if event.Metadata.LeadID == "" {
		cc.Logger.Debug("Call event without lead metadata")
		return received(c)
	}

	var lead models.Lead
	err := cc.DB.Where("uuid = ?", event.Metadata.LeadID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return received(c)
	}
	if err != nil {
		sentry.CaptureException(err)
		return received(c)
	}

	now := time.Now()
	attempt := event.Metadata.AttemptNumber
	if attempt == 0 {
		attempt = 1
	}

	cc.recordEvent(&lead, models.KindCallCompleted, attempt, map[string]interface{}{
		"call_id":       event.CallID,
		"call_length":   event.CallLength,
		"answered":      event.Answered,
		"end_reason":    event.EndReason,
		"summary":       event.Summary,
		"recording_url": event.RecordingURL,
	})

	if event.Answered {
		cc.handleAnswered(&lead, event, now)
	} else {
		cc.handleUnanswered(&lead, event, attempt, now)
	}

	// An answered call over 30 seconds counts as a quality conversation.
	if event.Answered && event.CallLength > 30 {
		cc.recordEvent(&lead, models.KindQualityConversation, attempt, map[string]interface{}{
			"call_length":   event.CallLength,
			"lead_score":    event.Metadata.LeadScore,
			"facility_type": event.Metadata.FacilityType,
		})
	}

	return received(c)
}

func (cc *CallWebhookController) handleAnswered(lead *models.Lead, event callEvent, now time.Time) {
	switch {
	case event.Analysis.Interested || event.Analysis.AppointmentScheduled:
		outcome := "Lead interested"
		if event.Analysis.AppointmentScheduled {
			outcome = "Appointment scheduled"
		}
		cc.updateLead(lead, models.StatusQualified,
			fmt.Sprintf("Call answered - %s. Summary: %s", outcome, event.Summary), now)

		if event.Analysis.AppointmentScheduled && event.Analysis.AppointmentTime != "" {
			if _, err := cc.Scheduler.SendAppointmentConfirmation(lead, event.Analysis.AppointmentTime, now); err != nil {
				cc.Logger.WithError(err).WithField("lead_id", lead.UUID).Warn("Appointment confirmation SMS failed")
			}
		}

	case event.Analysis.NotInterested:
		reason := event.Analysis.Objection
		if reason == "" {
			reason = "Not specified"
		}
		cc.updateLead(lead, models.StatusClosedLost, "Not interested. Reason: "+reason, now)
		if _, err := cc.Scheduler.StopSequences(lead.ID, "Lead not interested"); err != nil {
			sentry.CaptureException(err)
		}

	default:
		cc.updateLead(lead, models.StatusContacted, "Call completed. Summary: "+event.Summary, now)
	}
}

func (cc *CallWebhookController) handleUnanswered(lead *models.Lead, event callEvent, attempt int, now time.Time) {
	// Missed-call follow-ups are durable scheduled rows due immediately,
	// drained by the next SMS tick.
	if event.EndReason == "voicemail" && attempt <= 2 {
		if err := cc.Scheduler.ScheduleOneOffSMS(lead, messaging.SMSMissedCallFollowup, now); err != nil {
			sentry.CaptureException(err)
		}
	}

	if attempt >= 3 {
		if err := cc.Scheduler.ScheduleOneOffSMS(lead, messaging.SMSFinalAttempt, now); err != nil {
			sentry.CaptureException(err)
		}
		cc.updateLead(lead, models.StatusContacted, "3 call attempts made, no answer. Final SMS queued.", now)
	}
}

func (cc *CallWebhookController) updateLead(lead *models.Lead, status, note string, now time.Time) {
	notes := strings.TrimSpace(lead.Notes + fmt.Sprintf("\n[%s] %s", now.Format(time.RFC3339), note))
	if err := cc.DB.Model(lead).Updates(map[string]interface{}{
		"status":          status,
		"notes":           notes,
		"last_contact_at": now,
	}).Error; err != nil {
		sentry.CaptureException(err)
	}
}

func (cc *CallWebhookController) recordEvent(lead *models.Lead, kind string, attempt int, payload map[string]interface{}) {
	row := models.LeadInteraction{
		LeadID:  lead.ID,
		Kind:    kind,
		Attempt: attempt,
		Source:  models.SourceCallHook,
		Payload: payload,
	}
	if err := cc.DB.Create(&row).Error; err != nil {
		cc.Logger.WithError(err).Error("Failed to record call event")
	}
}
