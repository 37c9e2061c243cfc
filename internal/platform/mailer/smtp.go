package mailer

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/devinfinitee/AI-health-companion/pkg/config"
	"github.com/google/uuid"
)

const smtpDialTimeout = 10 * time.Second

// SMTPMailer delivers mail over SMTP. With UseTLS it dials implicit TLS
// (port 465); otherwise it upgrades with STARTTLS when the server offers it.
type SMTPMailer struct {
	Host   string
	Port   int
	From   string
	User   string
	Pass   string
	UseTLS bool
}

func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{
		Host:   strings.TrimSpace(cfg.SMTPHost),
		Port:   cfg.SMTPPort,
		From:   strings.TrimSpace(cfg.SMTPFrom),
		User:   strings.TrimSpace(cfg.SMTPUser),
		Pass:   strings.TrimSpace(cfg.SMTPPass),
		UseTLS: cfg.SMTPUseTLS,
	}
}

// Send returns the Message-ID it stamped on the mail.
func (s *SMTPMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return "", errors.New("empty recipient email")
	}

	id := uuid.NewString() + "@" + s.Host
	msg := buildMIME(id, mail.Address{Address: s.From}, mail.Address{Name: toName, Address: toEmail}, subject, text, html)

	c, err := s.dial()
	if err != nil {
		return "", fmt.Errorf("smtp dial: %w", err)
	}
	defer c.Close()

	if err := s.deliver(c, toEmail, msg); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SMTPMailer) SendAppointmentConfirmation(c Confirmation) error {
	return sendConfirmation(s, c)
}

func (s *SMTPMailer) dial() (*smtp.Client, error) {
	addr := net.JoinHostPort(s.Host, fmt.Sprint(s.Port))
	if s.UseTLS {
		conn, err := tls.DialWithDialer(&net.Dialer{Timeout: smtpDialTimeout}, "tcp", addr, &tls.Config{ServerName: s.Host})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(conn, s.Host)
	}

	conn, err := net.DialTimeout("tcp", addr, smtpDialTimeout)
	if err != nil {
		return nil, err
	}
	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (s *SMTPMailer) deliver(c *smtp.Client, to string, msg []byte) error {
	if s.User != "" {
		if err := c.Auth(smtp.PlainAuth("", s.User, s.Pass, s.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(s.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	return c.Quit()
}

// buildMIME renders a multipart/alternative message with text and HTML parts.
func buildMIME(id string, from, to mail.Address, subject, text, html string) []byte {
	boundary := "hc-" + strings.ReplaceAll(uuid.NewString(), "-", "")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Message-ID: <%s>\r\n", id)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	for _, part := range []struct{ kind, body string }{{"text/plain", text}, {"text/html", html}} {
		if part.body == "" {
			continue
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; charset=utf-8\r\n\r\n", part.kind)
		buf.WriteString(strings.ReplaceAll(part.body, "\n", "\r\n"))
		buf.WriteString("\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}
