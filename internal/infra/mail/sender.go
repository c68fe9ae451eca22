package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/wwwizards/leadflow/internal/infra/queue"
)

var leadAlertTemplate = template.Must(template.New("lead_alert").Parse(
	`A new lead just came in.

Contact
  Name:    {{.ContactName}}
  Company: {{.CompanyName}}
  Phone:   {{.ContactPhone}}
  Email:   {{.ContactEmail}}

Project
  Service:  {{.ServiceType}}
  Budget:   {{.Budget}}
  Timeline: {{.Timeline}}
{{if .AdditionalInfo}}
Additional info:
{{.AdditionalInfo}}
{{end}}
Lead ID: {{.LeadID}} (created {{.CreatedAt}})
`))

// EmailSender sends operator email copies of captured leads over SMTP.
type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

func NewEmailSender(host string, port int, user, password, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     user,
		To:       to,
	}
}

func (s *EmailSender) SendLeadAlert(payload queue.LeadCreatedPayload) error {
	var body bytes.Buffer
	if err := leadAlertTemplate.Execute(&body, payload); err != nil {
		return fmt.Errorf("render lead alert: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s (%s)", payload.ContactName, payload.ServiceType))
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead alert email: %w", err)
	}
	return nil
}
