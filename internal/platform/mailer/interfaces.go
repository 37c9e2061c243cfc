package mailer

import (
	"github.com/devinfinitee/AI-health-companion/pkg/config"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendAppointmentConfirmation(c Confirmation) error
}

// New picks the delivery backend: the log-only dev mailer in dev mode,
// MailerSend when an API key is configured, SMTP otherwise.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.DevMode:
		logger.Info("Email dev mode enabled, messages are logged only")
		return NewDevMailer()
	case cfg.MailerSendKey != "":
		return NewMailer(cfg)
	default:
		return NewSMTPMailer(cfg)
	}
}
