package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/utils"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

// Confirmation codes are ConfirmationCodeLength characters drawn from
// ConfirmationAlphabet.
const (
	ConfirmationAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	ConfirmationCodeLength = 6
)

type Appointment struct {
	ID               string            `json:"id"`
	UserID           string            `json:"userId"`
	PatientName      string            `json:"patientName"`
	PatientEmail     string            `json:"patientEmail"`
	PatientPhone     string            `json:"patientPhone"`
	AppointmentDate  time.Time         `json:"appointmentDate"`
	AppointmentTime  string            `json:"appointmentTime"`
	Department       string            `json:"department"`
	Reason           string            `json:"reason"`
	Notes            string            `json:"notes"`
	Status           AppointmentStatus `json:"status"`
	ReminderSent     bool              `json:"reminderSent"`
	ConfirmationCode string            `json:"confirmationCode"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// IsOwnedBy checks if the given user ID owns this appointment
func (a *Appointment) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// Summary is the reduced view returned by create.
func (a *Appointment) Summary() *AppointmentSummary {
	return &AppointmentSummary{
		ID:               a.ID,
		ConfirmationCode: a.ConfirmationCode,
		PatientName:      a.PatientName,
		AppointmentDate:  a.AppointmentDate,
		AppointmentTime:  a.AppointmentTime,
		Department:       a.Department,
		Status:           a.Status,
	}
}

type AppointmentSummary struct {
	ID               string            `json:"id"`
	ConfirmationCode string            `json:"confirmationCode"`
	PatientName      string            `json:"patientName"`
	AppointmentDate  time.Time         `json:"appointmentDate"`
	AppointmentTime  string            `json:"appointmentTime"`
	Department       string            `json:"department"`
	Status           AppointmentStatus `json:"status"`
}

// Date accepts either a calendar date (2006-01-02, read as UTC midnight) or
// a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{Time: t}, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return Validation(CodeInvalidDate, "Date must be a string")
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return Validation(CodeInvalidDate, "Date must be YYYY-MM-DD or an RFC 3339 timestamp")
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339))
}

type CreateAppointmentRequest struct {
	PatientName     string `json:"patientName"`
	PatientEmail    string `json:"patientEmail"`
	PatientPhone    string `json:"patientPhone"`
	AppointmentDate Date   `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Department      string `json:"department"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

func (r *CreateAppointmentRequest) Normalize() {
	r.PatientName = utils.NormalizeString(r.PatientName)
	r.PatientEmail = utils.NormalizeString(r.PatientEmail)
	r.PatientPhone = utils.NormalizeString(r.PatientPhone)
	r.AppointmentTime = utils.NormalizeString(r.AppointmentTime)
	r.Department = utils.NormalizeString(r.Department)
	r.Reason = utils.NormalizeString(r.Reason)
	r.Notes = utils.NormalizeString(r.Notes)
}

// Validate checks required fields and that the date is strictly after now.
func (r *CreateAppointmentRequest) Validate(now time.Time) error {
	if r.PatientName == "" || r.PatientEmail == "" || r.PatientPhone == "" ||
		r.AppointmentDate.IsZero() || r.AppointmentTime == "" ||
		r.Department == "" || r.Reason == "" {
		return Validation(CodeMissingFields, "Please provide all required fields")
	}
	if !r.AppointmentDate.After(now) {
		return Validation(CodeInvalidDate, "Appointment date must be in the future")
	}
	return nil
}

// AppointmentPatch lists the fields an owner may change. Nil fields are
// left untouched; JSON keys outside this set are ignored.
type AppointmentPatch struct {
	PatientName     *string `json:"patientName,omitempty"`
	PatientEmail    *string `json:"patientEmail,omitempty"`
	PatientPhone    *string `json:"patientPhone,omitempty"`
	AppointmentDate *Date   `json:"appointmentDate,omitempty"`
	AppointmentTime *string `json:"appointmentTime,omitempty"`
	Department      *string `json:"department,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// Validate rejects blanking a required field, reporting the first in field
// order. Updates do not re-check that the date is in the future.
func (p *AppointmentPatch) Validate() error {
	required := []struct {
		name  string
		value *string
	}{
		{"patientName", p.PatientName},
		{"patientEmail", p.PatientEmail},
		{"patientPhone", p.PatientPhone},
		{"appointmentTime", p.AppointmentTime},
		{"department", p.Department},
		{"reason", p.Reason},
	}
	for _, f := range required {
		if f.value != nil && utils.IsBlank(*f.value) {
			return Validation(CodeInvalidInput, f.name+" cannot be empty")
		}
	}
	if p.AppointmentDate != nil && p.AppointmentDate.IsZero() {
		return Validation(CodeInvalidDate, "appointmentDate cannot be empty")
	}
	return nil
}

// Apply merges the patch into a and returns the names of changed fields.
func (p *AppointmentPatch) Apply(a *Appointment) []string {
	var changes []string
	setString := func(name string, dst *string, src *string) {
		if src == nil {
			return
		}
		v := utils.NormalizeString(*src)
		if *dst != v {
			*dst = v
			changes = append(changes, name)
		}
	}

	setString("patientName", &a.PatientName, p.PatientName)
	setString("patientEmail", &a.PatientEmail, p.PatientEmail)
	setString("patientPhone", &a.PatientPhone, p.PatientPhone)
	if p.AppointmentDate != nil && !p.AppointmentDate.Equal(a.AppointmentDate) {
		a.AppointmentDate = p.AppointmentDate.Time
		changes = append(changes, "appointmentDate")
	}
	setString("appointmentTime", &a.AppointmentTime, p.AppointmentTime)
	setString("department", &a.Department, p.Department)
	setString("reason", &a.Reason, p.Reason)
	setString("notes", &a.Notes, p.Notes)

	return changes
}
