package messaging

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmawaste/models"
)

func sampleLead() *models.Lead {
	return &models.Lead{
		UUID:         "6fa1c7e2-9b1d-4f6e-8a3b-2f0d9c7b5a41",
		Email:        "buyer@hospital.org",
		Phone:        "+14155552671",
		Company:      "Mercy Hospital",
		FacilityType: "hospital",
		WasteTypes:   []string{"controlled"},
		VolumeRange:  "large",
		ZipCode:      "77002",
		LeadScore:    80,
	}
}

func TestEstimateSavings(t *testing.T) {
	tests := []struct {
		name        string
		volume      string
		facility    string
		waste       []string
		wantMonthly int
	}{
		{"large hospital with controlled", "large", "hospital", []string{"controlled"}, 2080},
		{"medium clinic", "medium", "clinic", nil, 400},
		{"enterprise pharmacy chain", "enterprise", "pharmacy_chain", nil, 3000},
		{"hazardous multiplier", "small", "clinic", []string{"hazardous"}, 180},
		{"repeated waste types apply once", "small", "clinic", []string{"hazardous", "hazardous"}, 180},
		{"unknown volume falls back", "", "clinic", nil, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &models.Lead{
				VolumeRange:  tt.volume,
				FacilityType: tt.facility,
				WasteTypes:   tt.waste,
			}
			got := EstimateSavings(lead)
			assert.Equal(t, tt.wantMonthly, got.Monthly)
			assert.Equal(t, tt.wantMonthly*12, got.Annual)
		})
	}
}

func TestRenderEmailAllSequenceKinds(t *testing.T) {
	lead := sampleLead()
	kinds := []EmailKind{
		EmailWelcome, EmailQuoteReady, EmailComplianceAlert, EmailSuccessStory,
		EmailFinalNotice, EmailCompetitorIssues, EmailLastChance,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			subject, body, err := RenderEmail(kind, lead, "1-855-555-0199")
			require.NoError(t, err)
			assert.NotEmpty(t, subject)
			assert.Contains(t, body, "</html>")
			assert.Contains(t, body, "1-855-555-0199")
		})
	}
}

func TestRenderEmailPersonalization(t *testing.T) {
	lead := sampleLead()

	subject, body, err := RenderEmail(EmailQuoteReady, lead, "1-855-555-0199")
	require.NoError(t, err)
	assert.Contains(t, subject, "$2080/month")
	assert.Contains(t, body, "Mercy Hospital")
	assert.Contains(t, body, "PWD-6fa1c7e2")

	// Hospitals get the hospital case study.
	_, body, err = RenderEmail(EmailSuccessStory, lead, "1-855-555-0199")
	require.NoError(t, err)
	assert.Contains(t, body, "Memorial Healthcare System")
}

func TestRenderEmailUnknownKind(t *testing.T) {
	_, _, err := RenderEmail(EmailKind("newsletter"), sampleLead(), "1-855-555-0199")
	assert.Error(t, err)
}

func TestRenderSMS(t *testing.T) {
	lead := sampleLead()

	body, err := RenderSMS(SMSImmediateResponse, lead, "1-855-555-0199")
	require.NoError(t, err)
	assert.Contains(t, body, "Mercy Hospital")
	assert.Contains(t, body, "1-855-555-0199")
	assert.Contains(t, body, "Reply STOP")

	body, err = RenderSMS(SMSQuoteReady, lead, "1-855-555-0199")
	require.NoError(t, err)
	assert.Contains(t, body, "$2080/month")

	// No company falls back to a generic greeting.
	lead.Company = ""
	body, err = RenderSMS(SMSImmediateResponse, lead, "1-855-555-0199")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body, "Hi there!"))

	_, err = RenderSMS(SMSKind("promo_blast"), lead, "1-855-555-0199")
	assert.Error(t, err)
}

func TestRenderAppointmentSMS(t *testing.T) {
	body := RenderAppointmentSMS(sampleLead(), "Tuesday 2:00 PM")
	assert.Contains(t, body, "Tuesday 2:00 PM")
	assert.Contains(t, body, "+14155552671")
	assert.Contains(t, body, "controlled")
}

func TestPriorityBand(t *testing.T) {
	assert.Equal(t, "HIGH", priorityBand(70))
	assert.Equal(t, "MEDIUM", priorityBand(45))
	assert.Equal(t, "STANDARD", priorityBand(20))
}
