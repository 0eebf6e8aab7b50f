package models

import (
	"time"

	"gorm.io/gorm"
)

// Interaction kinds. Scheduled kinds are future sends materialized by the
// scheduler; the rest are append-only events from sends, webhooks and the
// intake form.
const (
	KindFormSubmission   = "form_submission"
	KindFormResubmission = "form_resubmission"

	KindScheduledEmail = "scheduled_email"
	KindScheduledSMS   = "scheduled_sms"
	KindScheduledCall  = "scheduled_call"

	KindEmailSent    = "email_sent"
	KindSMSSent      = "sms_sent"
	KindOutboundCall = "outbound_call"

	KindEmailDelivered  = "email_delivered"
	KindEmailOpened     = "email_opened"
	KindEmailClicked    = "email_clicked"
	KindEmailBounced    = "email_bounced"
	KindEmailComplained = "email_complained"

	KindSMSDelivery = "sms_delivery"
	KindSMSReply    = "sms_reply"

	KindCallCompleted       = "call_completed"
	KindQualityConversation = "quality_conversation"
)

// Terminal outcomes for a scheduled interaction. A scheduled row moves
// from pending (Sent=false) to exactly one of these and never back.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeStopped = "stopped"
	OutcomeFailed  = "failed"
)

// Interaction sources
const (
	SourceForm       = "form"
	SourceAutomation = "automation"
	SourceManual     = "manual"
	SourceEmailHook  = "email_webhook"
	SourceCallHook   = "call_webhook"
	SourceSMSHook    = "sms_webhook"
)

// LeadInteraction is one entry in a lead's append-only event log. For
// scheduled kinds, Sent doubles as the claim flag: the processor marks it
// with a conditional update so overlapping ticks cannot both send the
// same row.
type LeadInteraction struct {
	gorm.Model
	LeadID uint `gorm:"not null;index" json:"lead_id"`

	Kind        string `gorm:"not null;index" json:"kind"`
	MessageType string `gorm:"index" json:"message_type"`
	Attempt     int    `gorm:"default:0" json:"attempt"`

	// Scheduling state (scheduled_* kinds only)
	DueAt         *time.Time `gorm:"index" json:"due_at"`
	Sent          bool       `gorm:"default:false;index" json:"sent"`
	Outcome       string     `json:"outcome"`
	OutcomeReason string     `json:"outcome_reason"`
	SentAt        *time.Time `json:"sent_at"`

	ProviderMessageID string                 `json:"provider_message_id"`
	Source            string                 `gorm:"not null" json:"source"`
	Payload           map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"payload"`

	// Relations
	Lead Lead `json:"-"`
}
