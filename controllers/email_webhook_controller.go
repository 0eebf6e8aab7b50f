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

	"pharmawaste/models"
	"pharmawaste/scheduler"
)

// EmailWebhookController ingests email delivery events from the mail
// provider. Events are attributed via the X-Entity-Ref-ID header echoed
// back in the payload. The endpoint always answers 200 so the provider
// never retries.
type EmailWebhookController struct {
	DB        *gorm.DB
	Scheduler *scheduler.Scheduler
	Logger    *logrus.Logger
}

func NewEmailWebhookController(db *gorm.DB, sched *scheduler.Scheduler, logger *logrus.Logger) *EmailWebhookController {
	return &EmailWebhookController{
		DB:        db,
		Scheduler: sched,
		Logger:    logger,
	}
}

type emailEvent struct {
	Type string `json:"type"`
	Data struct {
		EmailID      string            `json:"email_id"`
		To           []string          `json:"to"`
		Subject      string            `json:"subject"`
		CreatedAt    string            `json:"created_at"`
		Headers      map[string]string `json:"headers"`
		BounceType   string            `json:"bounce_type"`
		BounceReason string            `json:"bounce_reason"`
		Link         struct {
			URL string `json:"url"`
		} `json:"link"`
	} `json:"data"`
}

// parseCorrelationRef splits "lead-<uuid>-<kind>" into its parts. The
// uuid itself contains dashes, so the kind is everything after the last
// one.
func parseCorrelationRef(ref string) (leadUUID, kind string, ok bool) {
	rest, found := strings.CutPrefix(ref, "lead-")
	if !found {
		return "", "", false
	}
	idx := strings.LastIndex(rest, "-")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

func received(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"received": true})
}

func (ec *EmailWebhookController) Handle(c *fiber.Ctx) error {
	var event emailEvent
	if err := c.BodyParser(&event); err != nil {
		ec.Logger.WithError(err).Warn("Unparseable email webhook payload")
		return received(c)
	}

	leadUUID, messageType, ok := parseCorrelationRef(event.Data.Headers["X-Entity-Ref-ID"])
	if !ok {
		ec.Logger.WithField("type", event.Type).Debug("Email event without correlation ref")
		return received(c)
	}

	var lead models.Lead
	err := ec.DB.Where("uuid = ?", leadUUID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return received(c)
	}
	if err != nil {
		sentry.CaptureException(err)
		return received(c)
	}

	now := time.Now()
	payload := map[string]interface{}{
		"email_id":     event.Data.EmailID,
		"subject":      event.Data.Subject,
		"provider_ts":  event.Data.CreatedAt,
		"message_type": messageType,
	}

	switch event.Type {
	case "email.sent":
		// Send confirmations are already recorded at send time.

	case "email.delivered":
		ec.recordEvent(&lead, models.KindEmailDelivered, messageType, payload)

	case "email.opened":
		ec.recordEvent(&lead, models.KindEmailOpened, messageType, payload)
		ec.promoteEngaged(&lead, "Engaged - opened email", now)

	case "email.clicked":
		payload["url"] = event.Data.Link.URL
		ec.recordEvent(&lead, models.KindEmailClicked, messageType, payload)
		ec.promoteEngaged(&lead, "High engagement - clicked email link", now)

	case "email.bounced":
		payload["bounce_type"] = event.Data.BounceType
		payload["bounce_reason"] = event.Data.BounceReason
		ec.recordEvent(&lead, models.KindEmailBounced, messageType, payload)
		if _, err := ec.Scheduler.StopSequences(lead.ID, "Email bounced"); err != nil {
			sentry.CaptureException(err)
		}

	case "email.complained":
		ec.recordEvent(&lead, models.KindEmailComplained, messageType, payload)
		if _, err := ec.Scheduler.StopSequences(lead.ID, "Spam complaint"); err != nil {
			sentry.CaptureException(err)
		}
		notes := strings.TrimSpace(lead.Notes + "\nSpam complaint - do not contact")
		if err := ec.DB.Model(&lead).Updates(map[string]interface{}{
			"status": models.StatusClosedLost,
			"notes":  notes,
		}).Error; err != nil {
			sentry.CaptureException(err)
		}

	default:
		ec.Logger.WithField("type", event.Type).Debug("Unknown email event type")
	}

	return received(c)
}

func (ec *EmailWebhookController) recordEvent(lead *models.Lead, kind, messageType string, payload map[string]interface{}) {
	row := models.LeadInteraction{
		LeadID:      lead.ID,
		Kind:        kind,
		MessageType: messageType,
		Source:      models.SourceEmailHook,
		Payload:     payload,
	}
	if err := ec.DB.Create(&row).Error; err != nil {
		ec.Logger.WithError(err).Error("Failed to record email event")
	}
}

// promoteEngaged marks inbound engagement: contact timestamp always, and
// a still-new lead moves to contacted.
func (ec *EmailWebhookController) promoteEngaged(lead *models.Lead, note string, now time.Time) {
	updates := map[string]interface{}{
		"last_contact_at": now,
	}
	if lead.Status == models.StatusNew {
		updates["status"] = models.StatusContacted
		updates["notes"] = strings.TrimSpace(lead.Notes + fmt.Sprintf("\n[%s] %s", now.Format(time.RFC3339), note))
	}
	if err := ec.DB.Model(lead).Updates(updates).Error; err != nil {
		sentry.CaptureException(err)
	}
}
