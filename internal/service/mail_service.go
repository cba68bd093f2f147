package service

import (
	"fmt"

	mail "github.com/go-mail/mail"

	"github.com/spec-kit/eats-service/internal/config"
)

// Mailer delivers account mail. Delivery is best-effort and happens off the
// request path; failures are logged by the worker, never surfaced to users.
type Mailer interface {
	SendVerification(to, code string) error
}

// SMTPMailer sends through a plain SMTP relay via go-mail.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from config.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendVerification mails the email-verification code.
func (m *SMTPMailer) SendVerification(to, code string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your email")
	msg.SetBody("text/plain", fmt.Sprintf("Your verification code: %s", code))
	return m.dialer.DialAndSend(msg)
}
