package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/toolindex/toolindex-api/internal/config"
)

// Mailer delivers directory emails: the new-submission alert sent to the
// review inbox and the relayed contact-form message.
type Mailer interface {
	SendSubmissionAlert(summary string) error
	SendContactMessage(name, email, message string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	host      string
	port      int
	username  string
	password  string
	from      string
	adminAddr string
	reviewURL string
}

// NewSMTPMailer constructs an SMTPMailer from config.
func NewSMTPMailer(cfg config.EmailConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email from address is required")
	}
	adminAddr := strings.TrimSpace(cfg.AdminEmail)
	if adminAddr == "" {
		adminAddr = cfg.From
	}

	return &SMTPMailer{
		host:      cfg.SMTPHost,
		port:      cfg.SMTPPort,
		username:  cfg.Username,
		password:  cfg.Password,
		from:      cfg.From,
		adminAddr: adminAddr,
		reviewURL: cfg.ReviewURL,
	}, nil
}

// SendSubmissionAlert tells the review inbox about a new pending tool.
func (m *SMTPMailer) SendSubmissionAlert(summary string) error {
	body := strings.Builder{}
	body.WriteString(summary + "\n\n")
	if m.reviewURL != "" {
		body.WriteString("Review this submission: " + m.reviewURL + "\n")
	}

	return m.send(m.adminAddr, "New tool submission", body.String())
}

// SendContactMessage relays a contact-form message to the admin mailbox.
func (m *SMTPMailer) SendContactMessage(name, email, message string) error {
	body := strings.Builder{}
	body.WriteString(fmt.Sprintf("Name: %s\n", name))
	body.WriteString(fmt.Sprintf("Email: %s\n\n", email))
	body.WriteString(message + "\n")

	return m.send(m.adminAddr, fmt.Sprintf("New contact form submission from %s", name), body.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		m.from, to, subject)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if strings.TrimSpace(m.username) != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(headers+body))
}
