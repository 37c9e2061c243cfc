package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Confirmation is the content of an appointment confirmation email.
type Confirmation struct {
	To         string
	Name       string
	Code       string
	Date       time.Time
	Time       string
	Department string
}

const confirmationSubject = "Your appointment is booked"

var confirmationHTML = template.Must(template.New("confirmation").Parse(
	`<p>Hi {{.Name}},</p>
<p>Your {{.Department}} appointment on <b>{{.Day}}</b> at <b>{{.Time}}</b> is booked.</p>
<p>Confirmation code: <b>{{.Code}}</b></p>`))

func (c Confirmation) day() string { return c.Date.UTC().Format("Monday, 2 January 2006") }

func (c Confirmation) render() (subject, text, html string, err error) {
	text = fmt.Sprintf("Hi %s,\nYour %s appointment on %s at %s is booked.\nConfirmation code: %s\n",
		c.Name, c.Department, c.day(), c.Time, c.Code)

	var buf bytes.Buffer
	err = confirmationHTML.Execute(&buf, struct {
		Confirmation
		Day string
	}{c, c.day()})
	return confirmationSubject, text, buf.String(), err
}

func sendConfirmation(s interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}, c Confirmation) error {
	subject, text, html, err := c.render()
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	_, err = s.Send(c.To, c.Name, subject, text, html)
	return err
}
