package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/repo/postgres"
	"github.com/devinfinitee/AI-health-companion/pkg/events"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

type AppointmentService interface {
	Create(ctx context.Context, ownerID string, req *domain.CreateAppointmentRequest) (*domain.Appointment, error)
	List(ctx context.Context, ownerID string) ([]domain.Appointment, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Appointment, error)
	Update(ctx context.Context, ownerID, id string, patch *domain.AppointmentPatch) (*domain.Appointment, error)
	Cancel(ctx context.Context, ownerID, id string) (*domain.Appointment, error)
}

// CodeGenerator returns a candidate confirmation code.
type CodeGenerator func() (string, error)

// RandomCode draws ConfirmationCodeLength characters uniformly from
// ConfirmationAlphabet using crypto/rand.
func RandomCode() (string, error) {
	alphabet := domain.ConfirmationAlphabet
	limit := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, domain.ConfirmationCodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

type AppointmentOption func(*appointmentService)

func WithCodeGenerator(gen CodeGenerator) AppointmentOption {
	return func(s *appointmentService) { s.newCode = gen }
}

func WithClock(now func() time.Time) AppointmentOption {
	return func(s *appointmentService) { s.now = now }
}

type appointmentService struct {
	repo     postgres.AppointmentsRepo
	eventBus events.Publisher
	newCode  CodeGenerator
	now      func() time.Time
}

func NewAppointmentService(repo postgres.AppointmentsRepo, eventBus events.Publisher, opts ...AppointmentOption) AppointmentService {
	s := &appointmentService{
		repo:     repo,
		eventBus: eventBus,
		newCode:  RandomCode,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// uniqueCode redraws until the store reports an unused code. There is no
// attempt cap; the loop ends when ctx is done.
func (s *appointmentService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate confirmation code: %w", err)
		}
		exists, err := s.repo.ExistsByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check confirmation code: %w", err)
		}
		if !exists {
			return code, nil
		}
		logger.DebugContext(ctx, "Confirmation code collision, redrawing", "attempt", attempt)
	}
}

func (s *appointmentService) Create(ctx context.Context, ownerID string, req *domain.CreateAppointmentRequest) (*domain.Appointment, error) {
	req.Normalize()
	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, domain.Internal("Failed to create appointment", err)
	}

	appt, err := s.repo.Create(ctx, &domain.Appointment{
		UserID:           ownerID,
		PatientName:      req.PatientName,
		PatientEmail:     req.PatientEmail,
		PatientPhone:     req.PatientPhone,
		AppointmentDate:  req.AppointmentDate.Time,
		AppointmentTime:  req.AppointmentTime,
		Department:       req.Department,
		Reason:           req.Reason,
		Notes:            req.Notes,
		Status:           domain.StatusPending,
		ReminderSent:     false,
		ConfirmationCode: code,
	})
	if errors.Is(err, domain.ErrDuplicateCode) {
		return nil, domain.Conflict(domain.CodeCodeTaken, "Confirmation code collision, please retry")
	}
	if err != nil {
		return nil, domain.Internal("Failed to create appointment", fmt.Errorf("insert appointment: %w", err))
	}

	logger.InfoContext(ctx, "Appointment created",
		"appointment_id", appt.ID,
		"department", appt.Department,
	)

	event := events.AppointmentCreatedEvent{
		AppointmentID:    appt.ID,
		UserID:           appt.UserID,
		ConfirmationCode: appt.ConfirmationCode,
		PatientName:      appt.PatientName,
		PatientEmail:     appt.PatientEmail,
		PatientPhone:     appt.PatientPhone,
		AppointmentDate:  appt.AppointmentDate,
		AppointmentTime:  appt.AppointmentTime,
		Department:       appt.Department,
		CreatedAt:        appt.CreatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCreated, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish appointment created event", "error", err, "appointment_id", appt.ID)
	}

	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, ownerID string) ([]domain.Appointment, error) {
	list, err := s.repo.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, domain.Internal("Failed to fetch appointments", fmt.Errorf("list appointments: %w", err))
	}
	if list == nil {
		list = []domain.Appointment{}
	}
	return list, nil
}

// owned loads id and checks that ownerID owns it.
func (s *appointmentService) owned(ctx context.Context, ownerID, id string) (*domain.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, domain.Internal("Failed to fetch appointment", fmt.Errorf("get appointment: %w", err))
	}
	if !appt.IsOwnedBy(ownerID) {
		logger.WarnContext(ctx, "Appointment access denied", "appointment_id", id)
		return nil, domain.Ownership("You do not have access to this appointment")
	}
	return appt, nil
}

func (s *appointmentService) Get(ctx context.Context, ownerID, id string) (*domain.Appointment, error) {
	return s.owned(ctx, ownerID, id)
}

func (s *appointmentService) Update(ctx context.Context, ownerID, id string, patch *domain.AppointmentPatch) (*domain.Appointment, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	changes := patch.Apply(appt)
	updated, err := s.repo.Update(ctx, appt)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, domain.Internal("Failed to update appointment", fmt.Errorf("update appointment: %w", err))
	}

	if len(changes) > 0 {
		event := events.AppointmentUpdatedEvent{
			AppointmentID: updated.ID,
			UserID:        updated.UserID,
			Changes:       changes,
			UpdatedAt:     updated.UpdatedAt,
		}
		if err := s.eventBus.Publish(ctx, events.AppointmentUpdated, event); err != nil {
			logger.WarnContext(ctx, "Failed to publish appointment updated event", "error", err, "appointment_id", updated.ID)
		}
	}
	return updated, nil
}

// Cancel sets the status to cancelled whatever it was before. Cancelling a
// cancelled appointment succeeds again.
func (s *appointmentService) Cancel(ctx context.Context, ownerID, id string) (*domain.Appointment, error) {
	appt, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	previous := appt.Status
	appt.Status = domain.StatusCancelled
	updated, err := s.repo.Update(ctx, appt)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NotFound("Appointment not found")
	}
	if err != nil {
		return nil, domain.Internal("Failed to cancel appointment", fmt.Errorf("cancel appointment: %w", err))
	}

	logger.InfoContext(ctx, "Appointment cancelled", "appointment_id", updated.ID, "previous_status", previous)
	event := events.AppointmentCancelledEvent{
		AppointmentID:    updated.ID,
		UserID:           updated.UserID,
		ConfirmationCode: updated.ConfirmationCode,
		PreviousStatus:   string(previous),
		CancelledAt:      updated.UpdatedAt,
	}
	if err := s.eventBus.Publish(ctx, events.AppointmentCancelled, event); err != nil {
		logger.WarnContext(ctx, "Failed to publish appointment cancelled event", "error", err, "appointment_id", updated.ID)
	}
	return updated, nil
}
