package messaging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pharmawaste/config"
	"pharmawaste/models"
)

const blandAPIBase = "https://api.bland.ai/v1"

// VoiceSender queues one outbound AI call. Success means the provider
// accepted the call, not that anyone answered; the outcome arrives later
// on the call webhook.
type VoiceSender interface {
	StartCall(lead *models.Lead, attempt int) (string, error)
}

// BlandClient drives the Bland.ai outbound calling API.
type BlandClient struct {
	cfg             config.BlandConfig
	webhookURL      string
	specialistPhone string
	httpClient      *http.Client
	logger          *logrus.Logger
}

func NewBlandClient(cfg config.BlandConfig, baseURL, specialistPhone string, logger *logrus.Logger) *BlandClient {
	return &BlandClient{
		cfg:             cfg,
		webhookURL:      baseURL + "/api/webhooks/call",
		specialistPhone: specialistPhone,
		httpClient:      &http.Client{Timeout: 20 * time.Second},
		logger:          logger,
	}
}

type blandCallRequest struct {
	PhoneNumber               string                 `json:"phone_number"`
	From                      string                 `json:"from,omitempty"`
	Task                      string                 `json:"task"`
	FirstSentence             string                 `json:"first_sentence,omitempty"`
	Voice                     string                 `json:"voice,omitempty"`
	Model                     string                 `json:"model,omitempty"`
	Record                    bool                   `json:"record"`
	MaxDuration               int                    `json:"max_duration,omitempty"`
	Temperature               float64                `json:"temperature,omitempty"`
	AnsweredByEnabled         bool                   `json:"answered_by_enabled"`
	LocalDialing              bool                   `json:"local_dialing"`
	InterruptionThreshold     int                    `json:"interruption_threshold,omitempty"`
	Webhook                   string                 `json:"webhook,omitempty"`
	Metadata                  map[string]interface{} `json:"metadata,omitempty"`
	VoicemailMessage          string                 `json:"voicemail_message,omitempty"`
	VoicemailDetectionTimeout int                    `json:"voicemail_detection_timeout,omitempty"`
	TransferPhoneNumber       string                 `json:"transfer_phone_number,omitempty"`
}

type blandCallResponse struct {
	CallID  string `json:"call_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (b *BlandClient) StartCall(lead *models.Lead, attempt int) (string, error) {
	if b.cfg.APIKey == "" {
		return "", fmt.Errorf("bland not configured")
	}
	if lead.Phone == "" {
		return "", fmt.Errorf("no phone number provided")
	}

	facility := strings.ReplaceAll(lead.FacilityType, "_", " ")
	reqBody := blandCallRequest{
		PhoneNumber:       lead.Phone,
		From:              b.cfg.FromNumber,
		Task:              b.specialistScript(lead),
		FirstSentence:     fmt.Sprintf("Hi, this is Sarah from Pharmaceutical Waste Disposal. Is this %s that just requested a quote?", orDefault(lead.Company, "the facility")),
		Voice:             "maya",
		Model:             "enhanced",
		Record:            true,
		MaxDuration:       b.cfg.MaxDuration,
		Temperature:       0.7,
		AnsweredByEnabled: true,
		LocalDialing:      true,

		InterruptionThreshold: 100,
		Webhook:               b.webhookURL,
		Metadata: map[string]interface{}{
			"lead_id":        lead.UUID,
			"attempt_number": attempt,
			"lead_score":     lead.LeadScore,
			"facility_type":  lead.FacilityType,
		},
		VoicemailMessage: fmt.Sprintf(
			"Hi, this is Sarah from Pharmaceutical Waste Disposal calling about your waste disposal quote request. "+
				"We have competitive pricing ready for your %s. Please call me back at %s to discuss your needs. Thank you!",
			facility, b.specialistPhone),
		VoicemailDetectionTimeout: 5000,
		TransferPhoneNumber:       b.cfg.TransferTo,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, blandAPIBase+"/calls", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bland request failed: %w", err)
	}
	defer resp.Body.Close()

	var result blandCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("bland response decode failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bland error %d: %s", resp.StatusCode, result.Message)
	}

	b.logger.WithFields(logrus.Fields{
		"lead_id": lead.UUID,
		"call_id": result.CallID,
		"attempt": attempt,
	}).Info("Outbound call queued")
	return result.CallID, nil
}

func (b *BlandClient) specialistScript(lead *models.Lead) string {
	waste := strings.Join(lead.WasteTypes, ", ")
	facility := strings.ReplaceAll(lead.FacilityType, "_", " ")

	return fmt.Sprintf(`You are Sarah, a senior waste disposal specialist at PharmaceuticalWasteDisposal.com with 12 years of experience in pharmaceutical compliance.
You're calling %s about their request for %s disposal services.

Your goal is to:
1. Confirm they submitted a quote request
2. Verify their %s needs %s disposal
3. Confirm their volume is %s
4. Schedule a 15-minute consultation with our compliance team
5. If they're not ready, schedule a follow-up call

Key points to mention:
- We serve over 2,847 healthcare facilities nationwide
- 30-40%% average savings compared to Stericycle/Waste Management
- Full EPA and DEA compliance with all documentation
- Same-day quote turnaround

Be conversational, helpful, and focus on understanding their urgency. If they mention compliance deadlines or current vendor issues, emphasize our immediate availability.

Always end by either:
1. Scheduling the consultation
2. Setting a specific follow-up time
3. Confirming they'll receive their quote via email within 1 hour`,
		orDefault(lead.Company, "this facility"), waste, facility, waste, lead.VolumeRange)
}
