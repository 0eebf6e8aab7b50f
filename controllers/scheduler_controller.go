package controller

import (
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmawaste/models"
	"pharmawaste/scheduler"
	"pharmawaste/utils"
)

// SchedulerController exposes the processor ticks as authenticated HTTP
// endpoints so an external cron can drive the pipeline.
type SchedulerController struct {
	DB        *gorm.DB
	Scheduler *scheduler.Scheduler
	Logger    *logrus.Logger
}

func NewSchedulerController(db *gorm.DB, sched *scheduler.Scheduler, logger *logrus.Logger) *SchedulerController {
	return &SchedulerController{
		DB:        db,
		Scheduler: sched,
		Logger:    logger,
	}
}

// ProcessEmails drains due scheduled emails.
func (sc *SchedulerController) ProcessEmails(c *fiber.Ctx) error {
	summary := sc.Scheduler.ProcessDueEmails(time.Now())
	return c.JSON(summary)
}

// ProcessSMS drains due scheduled SMS.
func (sc *SchedulerController) ProcessSMS(c *fiber.Ctx) error {
	summary := sc.Scheduler.ProcessDueSMS(time.Now())
	return c.JSON(summary)
}

// ProcessCalls drains due scheduled calls.
func (sc *SchedulerController) ProcessCalls(c *fiber.Ctx) error {
	summary := sc.Scheduler.ProcessDueCalls(time.Now())
	return c.JSON(summary)
}

// Master runs all three channels in one invocation for a single external
// cron entry.
func (sc *SchedulerController) Master(c *fiber.Ctx) error {
	now := time.Now()
	emails := sc.Scheduler.ProcessDueEmails(now)
	sms := sc.Scheduler.ProcessDueSMS(now)
	calls := sc.Scheduler.ProcessDueCalls(now)

	sc.Logger.WithFields(logrus.Fields{
		"emails": emails.Processed,
		"sms":    sms.Processed,
		"calls":  calls.Processed,
	}).Info("Master scheduler tick completed")

	return c.JSON(fiber.Map{
		"timestamp": now.UTC().Format(time.RFC3339),
		"emails":    emails,
		"sms":       sms,
		"calls":     calls,
	})
}

type manualSendInput struct {
	LeadID      string `json:"lead_id" validate:"required"`
	Channel     string `json:"channel" validate:"required,oneof=email sms call"`
	MessageType string `json:"message_type" validate:"required"`
}

// Send fires a single step outside the scheduled sequences, for
// operational testing.
func (sc *SchedulerController) Send(c *fiber.Ctx) error {
	var input manualSendInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.Lead
	err := sc.DB.Where("uuid = ?", input.LeadID).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load lead", err)
	}

	ref, err := sc.Scheduler.SendManual(&lead, input.Channel, input.MessageType, time.Now())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadGateway, "Send failed", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"lead_id":             lead.UUID,
		"channel":             input.Channel,
		"message_type":        input.MessageType,
		"provider_message_id": ref,
	}))
}
