package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pharmawaste/config"
	"pharmawaste/messaging"
	"pharmawaste/models"
	"pharmawaste/scheduler"
)

type fakeEmailSender struct {
	sent []string
	fail bool
}

func (f *fakeEmailSender) Send(lead *models.Lead, kind messaging.EmailKind) (string, error) {
	if f.fail {
		return "", errors.New("smtp down")
	}
	f.sent = append(f.sent, string(kind))
	return "ref-" + string(kind), nil
}

func (f *fakeEmailSender) SendAdminNotification(lead *models.Lead) error { return nil }

type fakeSMSSender struct {
	sent []string
}

func (f *fakeSMSSender) Send(to, body string) (string, error) {
	f.sent = append(f.sent, body)
	return fmt.Sprintf("SM%04d", len(f.sent)), nil
}

type fakeVoiceSender struct {
	attempts []int
}

func (f *fakeVoiceSender) StartCall(lead *models.Lead, attempt int) (string, error) {
	f.attempts = append(f.attempts, attempt)
	return fmt.Sprintf("call-%04d", len(f.attempts)), nil
}

type testEnv struct {
	app   *fiber.App
	db    *gorm.DB
	sched *scheduler.Scheduler
	email *fakeEmailSender
	sms   *fakeSMSSender
	voice *fakeVoiceSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateDB(db))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	voice := &fakeVoiceSender{}
	sched := scheduler.New(db, email, sms, voice, "1-855-555-0199", logger)

	app := fiber.New()
	leadController := NewLeadController(db, sched, logger)
	schedulerController := NewSchedulerController(db, sched, logger)
	emailWebhookController := NewEmailWebhookController(db, sched, logger)
	callWebhookController := NewCallWebhookController(db, sched, logger)
	smsWebhookController := NewSMSWebhookController(db, sched, logger)

	app.Post("/api/leads", leadController.CreateLead)
	app.Get("/api/leads/:id", leadController.GetLead)
	app.Get("/api/cron/master", schedulerController.Master)
	app.Post("/api/cron/send", schedulerController.Send)
	app.Post("/api/webhooks/email", emailWebhookController.Handle)
	app.Post("/api/webhooks/call", callWebhookController.Handle)
	app.Post("/api/webhooks/sms", smsWebhookController.Handle)

	return &testEnv{app: app, db: db, sched: sched, email: email, sms: sms, voice: voice}
}

func (e *testEnv) postJSON(t *testing.T, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *testEnv) createLead(t *testing.T, phone string) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		UUID:            uuid.NewString(),
		Email:           uuid.NewString()[:8] + "@example.com",
		Phone:           phone,
		Company:         "Mercy Hospital",
		FacilityType:    "hospital",
		WasteTypes:      []string{"controlled"},
		VolumeRange:     "large",
		ZipCode:         "77002",
		LeadScore:       80,
		Status:          models.StatusNew,
		SubmissionCount: 1,
	}
	require.NoError(t, e.db.Create(lead).Error)
	return lead
}

func (e *testEnv) reload(t *testing.T, lead *models.Lead) *models.Lead {
	t.Helper()
	var out models.Lead
	require.NoError(t, e.db.First(&out, lead.ID).Error)
	return &out
}

func (e *testEnv) countInteractions(t *testing.T, leadID uint, kind string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&models.LeadInteraction{}).
		Where("lead_id = ? AND kind = ?", leadID, kind).Count(&n).Error)
	return n
}
