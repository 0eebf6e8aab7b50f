package messaging

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"pharmawaste/config"
	"pharmawaste/models"
	"pharmawaste/utils"
)

// EmailKind identifies one message of the email sequence.
type EmailKind string

const (
	EmailWelcome          EmailKind = "welcome"
	EmailQuoteReady       EmailKind = "quote_ready"
	EmailComplianceAlert  EmailKind = "compliance_alert"
	EmailSuccessStory     EmailKind = "success_story"
	EmailFinalNotice      EmailKind = "final_notice"
	EmailCompetitorIssues EmailKind = "competitor_issues"
	EmailLastChance       EmailKind = "last_chance"
)

// EmailSender delivers one sequence email and returns a provider message
// reference for webhook correlation.
type EmailSender interface {
	Send(lead *models.Lead, kind EmailKind) (string, error)
	SendAdminNotification(lead *models.Lead) error
}

type caseStudy struct {
	Name     string
	Location string
	Profile  string
	Waste    string
	Saved    string
	Timeline string
}

type emailData struct {
	Lead      *models.Lead
	Company   string
	Facility  string
	Waste     string
	Savings   Savings
	Phone     string
	QuoteRef  string
	Priority  string
	CaseStudy caseStudy
}

func newEmailData(lead *models.Lead, specialistPhone string) emailData {
	company := lead.Company
	if company == "" {
		company = "there"
	}
	return emailData{
		Lead:      lead,
		Company:   company,
		Facility:  strings.ReplaceAll(lead.FacilityType, "_", " "),
		Waste:     strings.Join(lead.WasteTypes, ", "),
		Savings:   EstimateSavings(lead),
		Phone:     specialistPhone,
		QuoteRef:  "PWD-" + lead.UUID[:8],
		Priority:  priorityBand(lead.LeadScore),
		CaseStudy: caseStudyFor(lead.FacilityType),
	}
}

func priorityBand(score int) string {
	switch {
	case score >= 70:
		return "HIGH"
	case score >= 40:
		return "MEDIUM"
	default:
		return "STANDARD"
	}
}

func caseStudyFor(facilityType string) caseStudy {
	switch {
	case strings.Contains(facilityType, "hospital"):
		return caseStudy{
			Name:     "Memorial Healthcare System",
			Location: "Houston, TX",
			Profile:  "340-bed hospital system",
			Waste:    "controlled substances, hazardous drugs, chemotherapy waste",
			Saved:    "$127,000",
			Timeline: "72 hours",
		}
	case strings.Contains(facilityType, "pharmacy"):
		return caseStudy{
			Name:     "Regional Pharmacy Chain",
			Location: "Phoenix, AZ",
			Profile:  "23-location pharmacy chain",
			Waste:    "controlled substances, expired medications",
			Saved:    "$89,000",
			Timeline: "48 hours",
		}
	default:
		return caseStudy{
			Name:     "Southwest Medical Group",
			Location: "Denver, CO",
			Profile:  "multi-specialty clinic (8 locations)",
			Waste:    "pharmaceutical waste, sharps, expired drugs",
			Saved:    "$67,000",
			Timeline: "24 hours",
		}
	}
}

// RenderEmail produces the subject and HTML body for one sequence email.
// Unknown kinds are an error, not a silent fallback.
func RenderEmail(kind EmailKind, lead *models.Lead, specialistPhone string) (string, string, error) {
	data := newEmailData(lead, specialistPhone)

	var subject, tmpl string
	switch kind {
	case EmailWelcome:
		subject = fmt.Sprintf("Quote Request Received - %s", orDefault(lead.Company, "Immediate Specialist Response Available"))
		tmpl = welcomeEmailTmpl
	case EmailQuoteReady:
		subject = fmt.Sprintf("Your Custom Quote is Ready - Savings: $%d/month", data.Savings.Monthly)
		tmpl = quoteReadyEmailTmpl
	case EmailComplianceAlert:
		subject = fmt.Sprintf("URGENT: %s Area Compliance Alert - %s Audits Increasing", lead.ZipCode, data.Facility)
		tmpl = complianceAlertEmailTmpl
	case EmailSuccessStory:
		subject = fmt.Sprintf("How %s Saved %s - %s Case Study", data.CaseStudy.Name, data.CaseStudy.Saved, data.Facility)
		tmpl = successStoryEmailTmpl
	case EmailFinalNotice:
		subject = fmt.Sprintf("Final Notice: %s Quote Expires Tomorrow - $%d/month Savings", orDefault(lead.Company, "Your"), data.Savings.Monthly)
		tmpl = finalNoticeEmailTmpl
	case EmailCompetitorIssues:
		subject = fmt.Sprintf("%s: Major Stericycle Service Issues Reported in Your Area", orDefault(lead.Company, "Alert"))
		tmpl = competitorIssuesEmailTmpl
	case EmailLastChance:
		subject = fmt.Sprintf("FINAL OUTREACH: Removing %s from Priority List Tomorrow", orDefault(lead.Company, "Your Facility"))
		tmpl = lastChanceEmailTmpl
	default:
		return "", "", fmt.Errorf("unknown email kind %q", kind)
	}

	body, err := executeTemplate(string(kind), tmpl, data)
	if err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func executeTemplate(name, tmplContent string, data emailData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplContent)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}
	return body.String(), nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// SMTPSender delivers sequence emails over SMTP. Every message carries an
// X-Entity-Ref-ID header so the email-event webhook can attribute events
// back to the lead and sequence step.
type SMTPSender struct {
	cfg             config.SMTPConfig
	adminEmail      string
	specialistPhone string
	logger          *logrus.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, adminEmail, specialistPhone string, logger *logrus.Logger) *SMTPSender {
	return &SMTPSender{
		cfg:             cfg,
		adminEmail:      adminEmail,
		specialistPhone: specialistPhone,
		logger:          logger,
	}
}

func (s *SMTPSender) Send(lead *models.Lead, kind EmailKind) (string, error) {
	if s.cfg.Host == "" {
		return "", fmt.Errorf("SMTP not configured")
	}

	subject, body, err := RenderEmail(kind, lead, s.specialistPhone)
	if err != nil {
		return "", err
	}

	ref := utils.CorrelationRef(lead.UUID, string(kind))

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From))
	m.SetHeader("To", lead.Email)
	m.SetHeader("Subject", subject)
	m.SetHeader("X-Entity-Ref-ID", ref)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return "", fmt.Errorf("error sending email: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"lead_id": lead.UUID,
		"kind":    kind,
		"to":      lead.Email,
	}).Info("Email sent")
	return ref, nil
}

// SendAdminNotification emails the internal team about a fresh quote
// request, banded by lead score. No-op when no admin address is set.
func (s *SMTPSender) SendAdminNotification(lead *models.Lead) error {
	if s.cfg.Host == "" || s.adminEmail == "" {
		return nil
	}

	data := newEmailData(lead, s.specialistPhone)
	body, err := executeTemplate("admin_notification", adminNotificationTmpl, data)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From))
	m.SetHeader("To", s.adminEmail)
	m.SetHeader("Subject", fmt.Sprintf("[%s] New lead: %s (score %d)", data.Priority, orDefault(lead.Company, lead.Email), lead.LeadScore))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	return d.DialAndSend(m)
}
