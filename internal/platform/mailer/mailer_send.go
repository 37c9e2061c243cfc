package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/devinfinitee/AI-health-companion/pkg/config"
	"github.com/mailersend/mailersend-go"
)

const (
	mailerSendTimeout = 10 * time.Second
	confirmationTag   = "appointment-confirmation"
)

type emailSender interface {
	Send(ctx context.Context, message *mailersend.Message) (*mailersend.Response, error)
}

// Mailer delivers through the MailerSend API.
type Mailer struct {
	email emailSender
	from  mailersend.From
}

func NewMailer(cfg config.EmailConfig) *Mailer {
	return &Mailer{
		email: mailersend.NewMailersend(cfg.MailerSendKey).Email,
		from:  mailersend.From{Name: cfg.FromName, Email: strings.TrimSpace(cfg.SMTPFrom)},
	}
}

// Send returns MailerSend's X-Message-Id.
func (m *Mailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	return m.send(toEmail, toName, subject, text, html, nil)
}

func (m *Mailer) SendAppointmentConfirmation(c Confirmation) error {
	subject, text, html, err := c.render()
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	_, err = m.send(c.To, c.Name, subject, text, html, []string{confirmationTag})
	return err
}

func (m *Mailer) send(toEmail, toName, subject, text, html string, tags []string) (string, error) {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return "", errors.New("empty recipient email")
	}
	if m.from.Email == "" {
		return "", errors.New("mailersend: SMTP_FROM is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), mailerSendTimeout)
	defer cancel()

	msg := &mailersend.Message{}
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}
	if len(tags) > 0 {
		msg.SetTags(tags)
	}

	res, err := m.email.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("mailersend: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Header.Get("X-Message-Id"), nil
}
