// Package notifications delivers digest reports over a JSON webhook and/or
// SMTP email. Both channels are optional; configured channels are tried
// independently and their failures are joined.
package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/repradar/repradar/internal/config"
	"github.com/repradar/repradar/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service sends digest reports via the configured channels.
type Service struct {
	config *config.Config
	client *resty.Client
}

var _ Interface = (*Service)(nil)

// webhookMessage is the JSON card posted to the digest webhook.
type webhookMessage struct {
	Title      string            `json:"title"`
	Text       string            `json:"text"`
	Facts      map[string]string `json:"facts,omitempty"`
	ReportTime string            `json:"report_time"`
}

// NewService creates a notification service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
	}
}

// SendReport delivers the report to every configured channel.
func (s *Service) SendReport(report *models.Report) error {
	var errs []string

	if s.config.WebhookURL != "" {
		if err := s.sendWebhook(report); err != nil {
			logrus.Errorf("Failed to send webhook notification: %v", err)
			errs = append(errs, fmt.Sprintf("webhook: %v", err))
		} else {
			logrus.Info("Sent digest to webhook")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			logrus.Info("Sent digest via email")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Service) sendWebhook(report *models.Report) error {
	message := buildWebhookMessage(report)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.WebhookURL)

	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

func buildWebhookMessage(report *models.Report) *webhookMessage {
	facts := map[string]string{
		"total_scans": fmt.Sprintf("%d", report.TotalScans),
	}
	if sentiment, ok := report.Summary["sentiment"].(map[string]int); ok {
		for label, count := range sentiment {
			facts["sentiment_"+label] = fmt.Sprintf("%d", count)
		}
	}
	if highRisk, ok := report.Summary["high_risk_scans"].(int); ok && highRisk > 0 {
		facts["high_risk_scans"] = fmt.Sprintf("%d", highRisk)
	}

	return &webhookMessage{
		Title:      fmt.Sprintf("Reputation scan digest (%s)", report.Period),
		Text:       fmt.Sprintf("%d scans completed in the last %s period", report.TotalScans, report.Period),
		Facts:      facts,
		ReportTime: report.GeneratedAt.Format(time.RFC3339),
	}
}

var emailTemplate = template.Must(template.New("digest").Parse(`
<h2>Reputation scan digest — {{.Period}}</h2>
<p>{{.TotalScans}} scans completed.</p>
<table border="1" cellpadding="4">
	<tr><th>Brand</th><th>Mentions</th><th>Risk</th><th>Sentiment</th><th>When</th></tr>
	{{range .Scans}}
	<tr>
		<td>{{.Brand}}</td>
		<td>{{.TotalFound}}</td>
		<td>{{.RiskScore}}</td>
		<td>{{.Sentiment}}</td>
		<td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td>
	</tr>
	{{end}}
</table>
`))

func (s *Service) sendEmail(report *models.Report) error {
	var body bytes.Buffer
	if err := emailTemplate.Execute(&body, report); err != nil {
		return fmt.Errorf("rendering digest email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", fmt.Sprintf("Reputation scan digest — %s", report.GeneratedAt.Format("2006-01-02")))
	m.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending digest email: %w", err)
	}
	return nil
}
