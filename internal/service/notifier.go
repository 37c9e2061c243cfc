package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/platform/mailer"
	"github.com/devinfinitee/AI-health-companion/pkg/events"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

// ReminderMarker records that the confirmation for an appointment went out.
type ReminderMarker interface {
	MarkReminderSent(ctx context.Context, id string) error
}

// ConfirmationNotifier turns appointment.created events into confirmation
// emails.
type ConfirmationNotifier struct {
	mailer mailer.Service
	marker ReminderMarker
}

func NewConfirmationNotifier(m mailer.Service, marker ReminderMarker) *ConfirmationNotifier {
	return &ConfirmationNotifier{mailer: m, marker: marker}
}

// Handle sends the confirmation and then flags the appointment. A failed
// send leaves reminder_sent false.
func (n *ConfirmationNotifier) Handle(ctx context.Context, msg *events.Message) error {
	var ev events.AppointmentCreatedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		return fmt.Errorf("decode %s: %w", msg.Subject, err)
	}
	if ev.AppointmentID == "" || ev.PatientEmail == "" {
		return fmt.Errorf("incomplete %s event", msg.Subject)
	}

	err := n.mailer.SendAppointmentConfirmation(mailer.Confirmation{
		To:         ev.PatientEmail,
		Name:       ev.PatientName,
		Code:       ev.ConfirmationCode,
		Date:       ev.AppointmentDate,
		Time:       ev.AppointmentTime,
		Department: ev.Department,
	})
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}

	if err := n.marker.MarkReminderSent(ctx, ev.AppointmentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.WarnContext(ctx, "Appointment vanished before reminder was recorded", "appointment_id", ev.AppointmentID)
			return nil
		}
		return fmt.Errorf("mark reminder sent: %w", err)
	}

	logger.InfoContext(ctx, "Appointment confirmation sent", "appointment_id", ev.AppointmentID)
	return nil
}
