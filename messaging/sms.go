package messaging

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pharmawaste/config"
	"pharmawaste/models"
)

// SMSKind identifies one message of the SMS sequence.
type SMSKind string

const (
	SMSImmediateResponse       SMSKind = "immediate_response"
	SMSQuoteReady              SMSKind = "quote_ready"
	SMSMissedCallFollowup      SMSKind = "missed_call_followup"
	SMSFinalAttempt            SMSKind = "final_attempt"
	SMSAppointmentConfirmation SMSKind = "appointment_confirmation"
)

// SMSSender delivers one text message and returns the provider message SID.
type SMSSender interface {
	Send(to, body string) (string, error)
}

// RenderSMS produces the body text for one sequence SMS.
func RenderSMS(kind SMSKind, lead *models.Lead, specialistPhone string) (string, error) {
	company := orDefault(lead.Company, "there")
	waste := strings.Join(lead.WasteTypes, ", ")
	savings := EstimateSavings(lead)

	switch kind {
	case SMSImmediateResponse:
		return fmt.Sprintf(
			"Hi %s! Your pharmaceutical waste disposal quote is being prepared.\n\n"+
				"Call our specialist NOW for instant pricing: %s\n\n"+
				"Or we'll call you shortly to discuss:\n- %s disposal\n- Compliance documentation\n- 30-40%% savings vs competitors\n\n"+
				"Reply STOP to opt out.",
			company, specialistPhone, waste), nil
	case SMSQuoteReady:
		return fmt.Sprintf(
			"%s, your custom quote is ready!\n\n"+
				"Based on your %s volume, you could save $%d/month.\n\n"+
				"Call %s now to review your quote. Specialist available for immediate assistance.\n\n"+
				"Your quote expires in 48 hours.",
			company, lead.VolumeRange, savings.Monthly, specialistPhone), nil
	case SMSMissedCallFollowup:
		return fmt.Sprintf(
			"We just tried calling about your waste disposal quote.\n\n"+
				"Your facility qualifies for:\n- EPA/DEA compliant disposal\n- Significant cost savings\n- Same-day service setup\n\n"+
				"Call us back: %s\nOr reply with a good time to call.",
			specialistPhone), nil
	case SMSFinalAttempt:
		return fmt.Sprintf(
			"Last chance for your custom pharmaceutical waste disposal quote!\n\n"+
				"%s qualifies for exclusive pricing that expires tomorrow.\n\n"+
				"This is our final automated attempt.\n%s (Direct specialist line)\n\n"+
				"After this, you'll need to resubmit for a new quote.",
			orDefault(lead.Company, "Your facility"), specialistPhone), nil
	default:
		return "", fmt.Errorf("unknown sms kind %q", kind)
	}
}

// RenderAppointmentSMS confirms a consultation time captured by the voice
// agent.
func RenderAppointmentSMS(lead *models.Lead, appointmentTime string) string {
	facility := strings.ReplaceAll(lead.FacilityType, "_", " ")
	return fmt.Sprintf(
		"Appointment confirmed!\n\n"+
			"%s compliance consultation:\n%s\nWe'll call: %s\n\n"+
			"What we'll cover:\n- Custom pricing for your %s\n- %s disposal process\n- Compliance documentation\n\n"+
			"Reply to reschedule.",
		orDefault(lead.Company, "Your"), appointmentTime, lead.Phone,
		facility, strings.Join(lead.WasteTypes, ", "))
}

const twilioAPIBase = "https://api.twilio.com/2010-04-01"

// TwilioSender sends messages through the Twilio Messages REST resource.
type TwilioSender struct {
	cfg        config.TwilioConfig
	statusURL  string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewTwilioSender(cfg config.TwilioConfig, baseURL string, logger *logrus.Logger) *TwilioSender {
	return &TwilioSender{
		cfg:        cfg,
		statusURL:  baseURL + "/api/webhooks/sms",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    *int   `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Message      string `json:"message"`
}

func (t *TwilioSender) Send(to, body string) (string, error) {
	if t.cfg.AccountSID == "" || t.cfg.AuthToken == "" {
		return "", fmt.Errorf("twilio not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.cfg.FromNumber)
	form.Set("Body", body)
	form.Set("StatusCallback", t.statusURL)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", twilioAPIBase, t.cfg.AccountSID)
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	var result twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("twilio response decode failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("twilio error %d: %s", resp.StatusCode, orDefault(result.Message, result.ErrorMessage))
	}

	t.logger.WithFields(logrus.Fields{
		"to":  to,
		"sid": result.SID,
	}).Info("SMS sent")
	return result.SID, nil
}
