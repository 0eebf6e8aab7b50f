package controller

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmawaste/models"
	"pharmawaste/scheduler"
	"pharmawaste/utils"
)

type LeadController struct {
	DB        *gorm.DB
	Scheduler *scheduler.Scheduler
	Logger    *logrus.Logger
}

func NewLeadController(db *gorm.DB, sched *scheduler.Scheduler, logger *logrus.Logger) *LeadController {
	return &LeadController{
		DB:        db,
		Scheduler: sched,
		Logger:    logger,
	}
}

type leadInput struct {
	Email        string   `json:"email" validate:"required,email"`
	Phone        string   `json:"phone" validate:"omitempty,max=30"`
	Company      string   `json:"company" validate:"omitempty,max=200"`
	FacilityType string   `json:"facility_type" validate:"required,max=60"`
	WasteTypes   []string `json:"waste_types" validate:"required,min=1"`
	Volume       string   `json:"volume" validate:"required,max=30"`
	ZipCode      string   `json:"zip_code" validate:"required,max=10"`
	Source       string   `json:"source" validate:"omitempty,max=60"`
}

// CalculateLeadScore weights a submission by facility type, waste mix,
// volume band and contact completeness. Capped at 100.
func CalculateLeadScore(in leadInput) int {
	score := 0

	switch in.FacilityType {
	case "hospital":
		score += 30
	case "pharmacy_chain":
		score += 25
	case "clinic", "long_term_care":
		score += 20
	default:
		score += 10
	}

	// Waste types are a set; repeated entries count once.
	seen := make(map[string]bool, len(in.WasteTypes))
	for _, w := range in.WasteTypes {
		if seen[w] {
			continue
		}
		seen[w] = true
		switch w {
		case "controlled":
			score += 20
		case "hazardous", "chemotherapy":
			score += 15
		}
	}

	switch in.Volume {
	case "enterprise":
		score += 25
	case "large":
		score += 20
	case "medium":
		score += 10
	default:
		score += 5
	}

	if in.Phone != "" {
		score += 10
	}
	if in.Company != "" {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// CreateLead handles the public quote form. Resubmissions with a known
// email update the existing lead instead of creating a duplicate; the
// follow-up sequences are scheduled on the first submission only.
func (lc *LeadController) CreateLead(c *fiber.Ctx) error {
	var input leadInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Missing required fields", err)
	}
	if err := utils.ValidateEmailFormat(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Phone != "" {
		if normalized, err := utils.NormalizePhone(input.Phone); err == nil {
			input.Phone = normalized
		} else {
			lc.Logger.WithError(err).WithField("phone", input.Phone).Warn("Could not normalize phone number")
		}
	}
	if input.Source == "" {
		input.Source = "website_form"
	}

	score := CalculateLeadScore(input)
	now := time.Now()

	var existing models.Lead
	err := lc.DB.Where("email = ?", input.Email).First(&existing).Error
	switch {
	case err == nil:
		return lc.handleResubmission(c, &existing, input, score, now)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return lc.handleNewLead(c, input, score, now)
	default:
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", err)
	}
}

func (lc *LeadController) handleNewLead(c *fiber.Ctx, input leadInput, score int, now time.Time) error {
	lead := models.Lead{
		UUID:             uuid.NewString(),
		Email:            input.Email,
		Phone:            input.Phone,
		Company:          input.Company,
		FacilityType:     input.FacilityType,
		WasteTypes:       input.WasteTypes,
		VolumeRange:      input.Volume,
		ZipCode:          input.ZipCode,
		LeadScore:        score,
		Status:           models.StatusNew,
		Source:           input.Source,
		SubmissionCount:  1,
		LastSubmissionAt: &now,
	}

	if err := lc.DB.Create(&lead).Error; err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save lead", err)
	}

	lc.recordFormInteraction(&lead, models.KindFormSubmission, input)

	// Best effort: intake never fails on outbound email problems.
	if err := lc.Scheduler.SendWelcomeEmail(&lead, now); err != nil {
		lc.Logger.WithError(err).WithField("lead_id", lead.UUID).Warn("Welcome email failed")
	}
	if err := lc.Scheduler.Email.SendAdminNotification(&lead); err != nil {
		lc.Logger.WithError(err).Warn("Admin notification failed")
	}

	if err := lc.Scheduler.ScheduleSequences(&lead, now); err != nil {
		sentry.CaptureException(err)
		lc.Logger.WithError(err).WithField("lead_id", lead.UUID).Error("Failed to schedule sequences")
	}

	lc.Logger.WithFields(logrus.Fields{
		"lead_id": lead.UUID,
		"score":   score,
	}).Info("New lead captured")

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(fiber.Map{
		"lead_id":          lead.UUID,
		"lead_score":       lead.LeadScore,
		"status":           lead.Status,
		"submission_count": lead.SubmissionCount,
	}))
}

func (lc *LeadController) handleResubmission(c *fiber.Ctx, lead *models.Lead, input leadInput, score int, now time.Time) error {
	// Score only rises across resubmissions; a closed_lost lead reopens.
	if score < lead.LeadScore {
		score = lead.LeadScore
	}
	status := lead.Status
	if status == models.StatusClosedLost {
		status = models.StatusNew
	}
	notes := strings.TrimSpace(lead.Notes + fmt.Sprintf("\n[%s] New submission - Score: %d", now.Format(time.RFC3339), CalculateLeadScore(input)))

	updates := map[string]interface{}{
		"phone":              input.Phone,
		"company":            input.Company,
		"facility_type":      input.FacilityType,
		"waste_types":        input.WasteTypes,
		"volume_range":       input.Volume,
		"zip_code":           input.ZipCode,
		"lead_score":         score,
		"status":             status,
		"source":             input.Source,
		"notes":              notes,
		"submission_count":   gorm.Expr("submission_count + 1"),
		"last_submission_at": now,
	}
	if err := lc.DB.Model(lead).Updates(updates).Error; err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}
	if err := lc.DB.First(lead, lead.ID).Error; err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reload lead", err)
	}

	lc.recordFormInteraction(lead, models.KindFormResubmission, input)

	if err := lc.Scheduler.SendWelcomeEmail(lead, now); err != nil {
		lc.Logger.WithError(err).WithField("lead_id", lead.UUID).Warn("Welcome email failed")
	}
	if err := lc.Scheduler.Email.SendAdminNotification(lead); err != nil {
		lc.Logger.WithError(err).Warn("Admin notification failed")
	}

	lc.Logger.WithFields(logrus.Fields{
		"lead_id":     lead.UUID,
		"submissions": lead.SubmissionCount,
	}).Info("Returning lead re-engaged")

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"lead_id":          lead.UUID,
		"lead_score":       lead.LeadScore,
		"status":           lead.Status,
		"submission_count": lead.SubmissionCount,
	}))
}

func (lc *LeadController) recordFormInteraction(lead *models.Lead, kind string, input leadInput) {
	row := models.LeadInteraction{
		LeadID: lead.ID,
		Kind:   kind,
		Source: models.SourceForm,
		Payload: map[string]interface{}{
			"facility_type": input.FacilityType,
			"waste_types":   input.WasteTypes,
			"volume_range":  input.Volume,
			"zip_code":      input.ZipCode,
			"lead_score":    CalculateLeadScore(input),
		},
	}
	if err := lc.DB.Create(&row).Error; err != nil {
		lc.Logger.WithError(err).Error("Failed to record form interaction")
	}
}

// GetLead returns a single lead with its interaction history.
func (lc *LeadController) GetLead(c *fiber.Ctx) error {
	var lead models.Lead
	err := lc.DB.Preload("Interactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where("uuid = ?", c.Params("id")).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}
	if err != nil {
		sentry.CaptureException(err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load lead", err)
	}
	return c.JSON(utils.SuccessResponse(lead))
}
