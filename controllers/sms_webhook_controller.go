package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmawaste/models"
	"pharmawaste/scheduler"
	"pharmawaste/utils"
)

// SMSWebhookController ingests Twilio callbacks: delivery status updates
// for outbound messages and inbound replies, both form-encoded. Always
// answers 200.
type SMSWebhookController struct {
	DB        *gorm.DB
	Scheduler *scheduler.Scheduler
	Logger    *logrus.Logger
}

func NewSMSWebhookController(db *gorm.DB, sched *scheduler.Scheduler, logger *logrus.Logger) *SMSWebhookController {
	return &SMSWebhookController{
		DB:        db,
		Scheduler: sched,
		Logger:    logger,
	}
}

func (sw *SMSWebhookController) Handle(c *fiber.Ctx) error {
	messageSID := c.FormValue("MessageSid")
	body := strings.TrimSpace(c.FormValue("Body"))
	status := c.FormValue("MessageStatus")

	// Status callbacks for outbound messages echo the Body, so
	// MessageStatus is the discriminator. Inbound messages arrive with
	// status "received" or none at all.
	switch {
	case status != "" && status != "received":
		sw.handleStatus(messageSID, status, c.FormValue("To"), c.FormValue("ErrorCode"))
	case body != "":
		sw.handleInbound(messageSID, c.FormValue("From"), body)
	}

	return received(c)
}

func (sw *SMSWebhookController) handleStatus(messageSID, status, to, errorCode string) {
	lead, ok := sw.findLeadByPhone(to)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"message_sid": messageSID,
		"status":      status,
	}
	if errorCode != "" {
		payload["error_code"] = errorCode
	}
	sw.recordEvent(lead, models.KindSMSDelivery, messageSID, payload)
}

func (sw *SMSWebhookController) handleInbound(messageSID, from, body string) {
	lead, ok := sw.findLeadByPhone(from)
	if !ok {
		sw.Logger.WithField("from", from).Debug("Inbound SMS from unknown number")
		return
	}

	sw.recordEvent(lead, models.KindSMSReply, messageSID, map[string]interface{}{
		"message_sid": messageSID,
		"body":        body,
	})

	reply := strings.ToLower(body)
	if reply == "stop" || reply == "unsubscribe" {
		if _, err := sw.Scheduler.StopSequences(lead.ID, "SMS opt-out"); err != nil {
			sentry.CaptureException(err)
		}
		now := time.Now()
		notes := strings.TrimSpace(lead.Notes + "\nSMS opt-out - do not contact")
		if err := sw.DB.Model(lead).Updates(map[string]interface{}{
			"status":          models.StatusClosedLost,
			"notes":           notes,
			"last_contact_at": now,
		}).Error; err != nil {
			sentry.CaptureException(err)
		}
		sw.Logger.WithField("lead_id", lead.UUID).Info("Lead opted out via SMS")
		return
	}

	// Any other reply is engagement: promote a still-new lead.
	updates := map[string]interface{}{
		"last_contact_at": time.Now(),
	}
	if lead.Status == models.StatusNew {
		updates["status"] = models.StatusContacted
	}
	if err := sw.DB.Model(lead).Updates(updates).Error; err != nil {
		sentry.CaptureException(err)
	}
}

func (sw *SMSWebhookController) findLeadByPhone(phone string) (*models.Lead, bool) {
	if phone == "" {
		return nil, false
	}
	normalized := phone
	if n, err := utils.NormalizePhone(phone); err == nil {
		normalized = n
	}

	var lead models.Lead
	err := sw.DB.Where("phone = ?", normalized).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false
	}
	if err != nil {
		sentry.CaptureException(err)
		return nil, false
	}
	return &lead, true
}

func (sw *SMSWebhookController) recordEvent(lead *models.Lead, kind, messageSID string, payload map[string]interface{}) {
	row := models.LeadInteraction{
		LeadID:            lead.ID,
		Kind:              kind,
		ProviderMessageID: messageSID,
		Source:            models.SourceSMSHook,
		Payload:           payload,
	}
	if err := sw.DB.Create(&row).Error; err != nil {
		sw.Logger.WithError(err).Error("Failed to record SMS event")
	}
}
