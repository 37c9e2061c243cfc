package mailer

import (
	"sync"

	"github.com/devinfinitee/AI-health-companion/pkg/logger"
	"github.com/google/uuid"
)

// DevMailer logs messages instead of delivering them and keeps the most
// recent ones for inspection.
type DevMailer struct {
	mu   sync.Mutex
	Sent []Message
}

type Message struct {
	ID      string
	To      string
	Subject string
	Text    string
}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	id := uuid.NewString()
	logger.Info("Dev email",
		"id", id,
		"to", toEmail,
		"subject", subject,
		"text", text,
	)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.Sent = append(d.Sent, Message{ID: id, To: toEmail, Subject: subject, Text: text})
	if len(d.Sent) > 100 {
		d.Sent = d.Sent[len(d.Sent)-100:]
	}
	return id, nil
}

func (d *DevMailer) SendAppointmentConfirmation(c Confirmation) error {
	return sendConfirmation(d, c)
}
