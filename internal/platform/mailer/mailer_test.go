package mailer

import (
	"strings"
	"testing"
	"time"

	"github.com/devinfinitee/AI-health-companion/pkg/config"
)

func TestDevMailer_Confirmation(t *testing.T) {
	m := NewDevMailer()
	err := m.SendAppointmentConfirmation(Confirmation{
		To:         "ada@example.com",
		Name:       "Ada <script>",
		Code:       "AB12CD",
		Date:       time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC),
		Time:       "10:30",
		Department: "Cardiology",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(m.Sent) != 1 {
		t.Fatalf("expected one message, got %d", len(m.Sent))
	}
	msg := m.Sent[0]
	if msg.To != "ada@example.com" || msg.Subject != confirmationSubject {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if !strings.Contains(msg.Text, "AB12CD") || !strings.Contains(msg.Text, "Monday, 4 March 2030") {
		t.Fatalf("text missing details: %q", msg.Text)
	}
}

func TestConfirmation_HTMLEscapes(t *testing.T) {
	_, _, html, err := Confirmation{Name: "<b>x</b>", Code: "ZZZZZZ"}.render()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(html, "<b>x</b>") {
		t.Fatalf("name not escaped: %s", html)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	if _, ok := New(config.EmailConfig{DevMode: true, MailerSendKey: "k"}).(*DevMailer); !ok {
		t.Error("dev mode must win")
	}
	if _, ok := New(config.EmailConfig{MailerSendKey: "k", SMTPFrom: "a@b.co"}).(*Mailer); !ok {
		t.Error("api key selects MailerSend")
	}
	if _, ok := New(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025}).(*SMTPMailer); !ok {
		t.Error("fallback is SMTP")
	}
}
