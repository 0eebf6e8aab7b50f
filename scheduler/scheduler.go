package scheduler

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"pharmawaste/messaging"
	"pharmawaste/models"
	"pharmawaste/utils"
)

// Scheduler owns the durable follow-up pipeline: it materializes
// scheduled interaction rows at intake and drains the due ones on each
// processor tick. All senders are injected so tests can run against
// fakes.
type Scheduler struct {
	DB              *gorm.DB
	Email           messaging.EmailSender
	SMS             messaging.SMSSender
	Voice           messaging.VoiceSender
	Logger          *logrus.Logger
	SpecialistPhone string
}

func New(db *gorm.DB, email messaging.EmailSender, sms messaging.SMSSender, voice messaging.VoiceSender, specialistPhone string, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		DB:              db,
		Email:           email,
		SMS:             sms,
		Voice:           voice,
		Logger:          logger,
		SpecialistPhone: specialistPhone,
	}
}

type StepResult struct {
	LeadID      string `json:"lead_id"`
	MessageType string `json:"message_type"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type Summary struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []StepResult `json:"results"`
}

func (s *Summary) add(r StepResult) {
	s.Results = append(s.Results, r)
	s.Processed++
	if r.Success {
		s.Successful++
	} else {
		s.Failed++
	}
}

// ScheduleSequences materializes every future step of the email, SMS and
// call sequences for a freshly captured lead. Leads without a phone get
// the email sequence only; fixed-line numbers are additionally excluded
// from SMS.
func (s *Scheduler) ScheduleSequences(lead *models.Lead, now time.Time) error {
	var rows []models.LeadInteraction

	for _, step := range EmailSequence {
		rows = append(rows, models.LeadInteraction{
			LeadID:      lead.ID,
			Kind:        models.KindScheduledEmail,
			MessageType: string(step.Kind),
			DueAt:       utils.Pointer(now.Add(step.Delay)),
			Source:      models.SourceAutomation,
		})
	}

	if lead.Phone != "" {
		if utils.IsSMSCapable(lead.Phone) {
			for _, step := range SMSSequence {
				rows = append(rows, models.LeadInteraction{
					LeadID:      lead.ID,
					Kind:        models.KindScheduledSMS,
					MessageType: string(step.Kind),
					DueAt:       utils.Pointer(now.Add(step.Delay)),
					Source:      models.SourceAutomation,
				})
			}
		} else {
			s.Logger.WithField("lead_id", lead.UUID).Info("Fixed-line number, skipping SMS sequence")
		}

		for _, step := range CallSequence {
			rows = append(rows, models.LeadInteraction{
				LeadID:      lead.ID,
				Kind:        models.KindScheduledCall,
				MessageType: fmt.Sprintf("call_attempt_%d", step.Attempt),
				Attempt:     step.Attempt,
				DueAt:       utils.Pointer(adjustToCallWindow(now.Add(step.Delay), step.Attempt)),
				Source:      models.SourceAutomation,
			})
		}
	}

	if err := s.DB.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to schedule sequences: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"lead_id": lead.UUID,
		"steps":   len(rows),
	}).Info("Follow-up sequences scheduled")
	return nil
}

// ScheduleOneOffSMS inserts a single scheduled SMS due immediately. Used
// by the call webhook for missed-call and final-attempt follow-ups so
// they survive a process restart instead of living in an in-memory timer.
// The same line-type rule as intake applies: fixed-line numbers get
// nothing.
func (s *Scheduler) ScheduleOneOffSMS(lead *models.Lead, kind messaging.SMSKind, now time.Time) error {
	if lead.Phone == "" || !utils.IsSMSCapable(lead.Phone) {
		s.Logger.WithFields(logrus.Fields{
			"lead_id": lead.UUID,
			"kind":    kind,
		}).Info("Number not SMS-capable, skipping one-off SMS")
		return nil
	}
	row := models.LeadInteraction{
		LeadID:      lead.ID,
		Kind:        models.KindScheduledSMS,
		MessageType: string(kind),
		DueAt:       utils.Pointer(now),
		Source:      models.SourceAutomation,
	}
	return s.DB.Create(&row).Error
}

// StopSequences cancels every unclaimed scheduled step across all
// channels. Idempotent: already claimed or stopped rows are untouched.
func (s *Scheduler) StopSequences(leadID uint, reason string) (int64, error) {
	res := s.DB.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND sent = ? AND kind IN ?", leadID, false,
			[]string{models.KindScheduledEmail, models.KindScheduledSMS, models.KindScheduledCall}).
		Updates(map[string]interface{}{
			"sent":           true,
			"outcome":        models.OutcomeStopped,
			"outcome_reason": reason,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.Logger.WithFields(logrus.Fields{
			"lead_id": leadID,
			"stopped": res.RowsAffected,
			"reason":  reason,
		}).Info("Sequences stopped")
	}
	return res.RowsAffected, nil
}

// claim atomically takes ownership of a scheduled row. A zero
// RowsAffected means another tick already claimed it.
func (s *Scheduler) claim(rowID uint) (bool, error) {
	res := s.DB.Model(&models.LeadInteraction{}).
		Where("id = ? AND sent = ?", rowID, false).
		Update("sent", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *Scheduler) finalize(rowID uint, outcome, reason, providerID string, now time.Time) {
	updates := map[string]interface{}{
		"outcome":        outcome,
		"outcome_reason": reason,
	}
	if outcome == models.OutcomeSent {
		updates["sent_at"] = now
		updates["provider_message_id"] = providerID
	}
	if err := s.DB.Model(&models.LeadInteraction{}).Where("id = ?", rowID).Updates(updates).Error; err != nil {
		s.Logger.WithError(err).Error("Failed to finalize scheduled interaction")
	}
}

func (s *Scheduler) recordEvent(leadID uint, kind, messageType string, attempt int, payload map[string]interface{}) {
	row := models.LeadInteraction{
		LeadID:      leadID,
		Kind:        kind,
		MessageType: messageType,
		Attempt:     attempt,
		Source:      models.SourceAutomation,
		Payload:     payload,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		s.Logger.WithError(err).Error("Failed to record interaction event")
	}
}

func (s *Scheduler) fetchDue(kind string, now time.Time, limit int) ([]models.LeadInteraction, error) {
	var rows []models.LeadInteraction
	err := s.DB.Preload("Lead").
		Where("kind = ? AND sent = ? AND due_at <= ?", kind, false, now).
		Order("due_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ProcessDueEmails drains due scheduled emails. Failures consume the
// step: the row moves to failed and is never retried.
func (s *Scheduler) ProcessDueEmails(now time.Time) Summary {
	var summary Summary
	rows, err := s.fetchDue(models.KindScheduledEmail, now, EmailBatchLimit)
	if err != nil {
		s.Logger.WithError(err).Error("Failed to fetch due emails")
		return summary
	}

	for _, row := range rows {
		claimed, err := s.claim(row.ID)
		if err != nil || !claimed {
			continue
		}
		lead := row.Lead

		if lead.Closed() {
			s.finalize(row.ID, models.OutcomeSkipped, "lead status: "+lead.Status, "", now)
			continue
		}

		ref, err := s.Email.Send(&lead, messaging.EmailKind(row.MessageType))
		if err != nil {
			s.finalize(row.ID, models.OutcomeFailed, err.Error(), "", now)
			summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: false, Error: err.Error()})
			continue
		}

		s.finalize(row.ID, models.OutcomeSent, "", ref, now)
		s.recordEvent(lead.ID, models.KindEmailSent, row.MessageType, 0, map[string]interface{}{
			"provider_message_id": ref,
			"to":                  lead.Email,
		})
		s.bumpLeadCounters(&lead, "email", now)
		summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: true})
	}
	return summary
}

// ProcessDueSMS drains due scheduled SMS, including one-off rows created
// by the call webhook.
func (s *Scheduler) ProcessDueSMS(now time.Time) Summary {
	var summary Summary
	rows, err := s.fetchDue(models.KindScheduledSMS, now, SMSBatchLimit)
	if err != nil {
		s.Logger.WithError(err).Error("Failed to fetch due SMS")
		return summary
	}

	for _, row := range rows {
		claimed, err := s.claim(row.ID)
		if err != nil || !claimed {
			continue
		}
		lead := row.Lead

		if lead.Closed() {
			s.finalize(row.ID, models.OutcomeSkipped, "lead status: "+lead.Status, "", now)
			continue
		}
		if lead.Phone == "" {
			s.finalize(row.ID, models.OutcomeSkipped, "no phone number", "", now)
			continue
		}

		body, err := messaging.RenderSMS(messaging.SMSKind(row.MessageType), &lead, s.SpecialistPhone)
		if err == nil {
			var sid string
			sid, err = s.SMS.Send(lead.Phone, body)
			if err == nil {
				s.finalize(row.ID, models.OutcomeSent, "", sid, now)
				s.recordEvent(lead.ID, models.KindSMSSent, row.MessageType, 0, map[string]interface{}{
					"provider_message_id": sid,
					"to":                  lead.Phone,
				})
				s.bumpLeadCounters(&lead, "sms", now)
				summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: true})
				continue
			}
		}

		s.finalize(row.ID, models.OutcomeFailed, err.Error(), "", now)
		summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: false, Error: err.Error()})
	}
	return summary
}

// ProcessDueCalls drains due scheduled calls. A successful queue moves a
// still-new lead to contacted; the actual call outcome arrives later on
// the webhook.
func (s *Scheduler) ProcessDueCalls(now time.Time) Summary {
	var summary Summary
	rows, err := s.fetchDue(models.KindScheduledCall, now, CallBatchLimit)
	if err != nil {
		s.Logger.WithError(err).Error("Failed to fetch due calls")
		return summary
	}

	for _, row := range rows {
		claimed, err := s.claim(row.ID)
		if err != nil || !claimed {
			continue
		}
		lead := row.Lead

		if lead.Closed() {
			s.finalize(row.ID, models.OutcomeSkipped, "lead status: "+lead.Status, "", now)
			continue
		}
		if lead.Phone == "" {
			s.finalize(row.ID, models.OutcomeSkipped, "no phone number", "", now)
			continue
		}

		callID, err := s.Voice.StartCall(&lead, row.Attempt)
		if err != nil {
			s.finalize(row.ID, models.OutcomeFailed, err.Error(), "", now)
			summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: false, Error: err.Error()})
			continue
		}

		s.finalize(row.ID, models.OutcomeSent, "", callID, now)
		s.recordEvent(lead.ID, models.KindOutboundCall, row.MessageType, row.Attempt, map[string]interface{}{
			"call_id": callID,
			"to":      lead.Phone,
		})

		updates := map[string]interface{}{
			"call_attempts":   gorm.Expr("call_attempts + 1"),
			"last_call_at":    now,
			"last_contact_at": now,
		}
		if lead.Status == models.StatusNew {
			updates["status"] = models.StatusContacted
		}
		if err := s.DB.Model(&models.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error; err != nil {
			s.Logger.WithError(err).Error("Failed to update lead after call")
		}
		summary.add(StepResult{LeadID: lead.UUID, MessageType: row.MessageType, Success: true})
	}
	return summary
}

// SendWelcomeEmail delivers the intake welcome email inline and records
// the send. Best effort: intake succeeds even if this fails.
func (s *Scheduler) SendWelcomeEmail(lead *models.Lead, now time.Time) error {
	ref, err := s.Email.Send(lead, messaging.EmailWelcome)
	if err != nil {
		return err
	}
	s.recordEvent(lead.ID, models.KindEmailSent, string(messaging.EmailWelcome), 0, map[string]interface{}{
		"provider_message_id": ref,
		"to":                  lead.Email,
	})
	s.bumpLeadCounters(lead, "email", now)
	return nil
}

// SendAppointmentConfirmation texts the consultation time captured by the
// voice agent straight back to the lead.
func (s *Scheduler) SendAppointmentConfirmation(lead *models.Lead, appointmentTime string, now time.Time) (string, error) {
	if lead.Phone == "" {
		return "", fmt.Errorf("lead has no phone number")
	}
	body := messaging.RenderAppointmentSMS(lead, appointmentTime)
	sid, err := s.SMS.Send(lead.Phone, body)
	if err != nil {
		return "", err
	}
	s.recordEvent(lead.ID, models.KindSMSSent, string(messaging.SMSAppointmentConfirmation), 0, map[string]interface{}{
		"provider_message_id": sid,
		"appointment_time":    appointmentTime,
	})
	s.bumpLeadCounters(lead, "sms", now)
	return sid, nil
}

// SendManual fires a single step outside the scheduled sequence, for
// operational testing through the authenticated send endpoint.
func (s *Scheduler) SendManual(lead *models.Lead, channel, messageType string, now time.Time) (string, error) {
	switch channel {
	case "email":
		ref, err := s.Email.Send(lead, messaging.EmailKind(messageType))
		if err != nil {
			return "", err
		}
		s.recordEvent(lead.ID, models.KindEmailSent, messageType, 0, map[string]interface{}{
			"provider_message_id": ref,
			"manual":              true,
		})
		s.bumpLeadCounters(lead, "email", now)
		return ref, nil
	case "sms":
		if lead.Phone == "" {
			return "", fmt.Errorf("lead has no phone number")
		}
		body, err := messaging.RenderSMS(messaging.SMSKind(messageType), lead, s.SpecialistPhone)
		if err != nil {
			return "", err
		}
		sid, err := s.SMS.Send(lead.Phone, body)
		if err != nil {
			return "", err
		}
		s.recordEvent(lead.ID, models.KindSMSSent, messageType, 0, map[string]interface{}{
			"provider_message_id": sid,
			"manual":              true,
		})
		s.bumpLeadCounters(lead, "sms", now)
		return sid, nil
	case "call":
		if lead.Phone == "" {
			return "", fmt.Errorf("lead has no phone number")
		}
		callID, err := s.Voice.StartCall(lead, lead.CallAttempts+1)
		if err != nil {
			return "", err
		}
		s.recordEvent(lead.ID, models.KindOutboundCall, messageType, lead.CallAttempts+1, map[string]interface{}{
			"call_id": callID,
			"manual":  true,
		})
		if err := s.DB.Model(&models.Lead{}).Where("id = ?", lead.ID).Updates(map[string]interface{}{
			"call_attempts":   gorm.Expr("call_attempts + 1"),
			"last_call_at":    now,
			"last_contact_at": now,
		}).Error; err != nil {
			s.Logger.WithError(err).Error("Failed to update lead after manual call")
		}
		return callID, nil
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
	}
}

func (s *Scheduler) bumpLeadCounters(lead *models.Lead, channel string, now time.Time) {
	updates := map[string]interface{}{
		"last_contact_at": now,
	}
	switch channel {
	case "email":
		updates["email_sent_count"] = gorm.Expr("email_sent_count + 1")
		updates["last_email_at"] = now
	case "sms":
		updates["sms_sent_count"] = gorm.Expr("sms_sent_count + 1")
		updates["last_sms_at"] = now
	}
	if err := s.DB.Model(&models.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error; err != nil {
		s.Logger.WithError(err).Error("Failed to update lead contact counters")
	}
}
