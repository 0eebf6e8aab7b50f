package models

import (
	"time"

	"gorm.io/gorm"
)

// Lead lifecycle statuses. Any status may move to closed_won/closed_lost;
// "new" moves to "contacted" on the first inbound engagement.
const (
	StatusNew          = "new"
	StatusContacted    = "contacted"
	StatusQualified    = "qualified"
	StatusProposalSent = "proposal_sent"
	StatusClosedWon    = "closed_won"
	StatusClosedLost   = "closed_lost"
)

// Lead represents a prospective customer captured via the quote form.
// Email is the dedup key: a resubmission with the same email updates the
// existing row instead of creating a second one.
type Lead struct {
	gorm.Model
	UUID string `gorm:"uniqueIndex;size:36;not null" json:"lead_id"`

	Email   string `gorm:"uniqueIndex;not null" json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`

	// Qualification attributes from the quote form
	FacilityType string   `gorm:"not null" json:"facility_type"`
	WasteTypes   []string `gorm:"type:jsonb;serializer:json" json:"waste_types"`
	VolumeRange  string   `json:"volume_range"`
	ZipCode      string   `json:"zip_code"`
	LeadScore    int      `gorm:"default:0" json:"lead_score"`

	Status string `gorm:"default:'new';index" json:"status"`
	Source string `json:"source"`
	Notes  string `gorm:"type:text" json:"notes"`

	// Multi-channel tracking
	SubmissionCount int `gorm:"default:1" json:"submission_count"`
	CallAttempts    int `gorm:"default:0" json:"call_attempts"`
	EmailSentCount  int `gorm:"default:0" json:"email_sent_count"`
	SMSSentCount    int `gorm:"default:0" json:"sms_sent_count"`

	LastSubmissionAt *time.Time `json:"last_submission_at"`
	LastContactAt    *time.Time `json:"last_contact_at"`
	LastEmailAt      *time.Time `json:"last_email_at"`
	LastSMSAt        *time.Time `json:"last_sms_at"`
	LastCallAt       *time.Time `json:"last_call_at"`

	// Relations
	Interactions []LeadInteraction `gorm:"foreignKey:LeadID" json:"interactions,omitempty"`
}

// Closed reports whether the lead is in a terminal state. Closed leads
// never receive automated outreach.
func (l *Lead) Closed() bool {
	return l.Status == StatusClosedWon || l.Status == StatusClosedLost
}
