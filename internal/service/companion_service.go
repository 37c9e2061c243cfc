package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/platform/genai"
	"github.com/devinfinitee/AI-health-companion/internal/repo/postgres"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

// CompanionService backs the dashboard: symptom questions answered by the
// generative-text service, their history, and a health summary.
type CompanionService interface {
	AskSymptoms(ctx context.Context, ownerID string, req *domain.SymptomsRequest) (*domain.Conversation, error)
	Conversations(ctx context.Context, ownerID string) ([]domain.Conversation, error)
	Summary(ctx context.Context, owner *domain.User) (*domain.HealthSummary, error)
}

type companionService struct {
	generator     genai.Generator
	conversations postgres.ConversationsRepo
	appointments  postgres.AppointmentsRepo
	maxPromptLen  int
	now           func() time.Time
}

func NewCompanionService(
	generator genai.Generator,
	conversations postgres.ConversationsRepo,
	appointments postgres.AppointmentsRepo,
	maxPromptLen int,
) CompanionService {
	return &companionService{
		generator:     generator,
		conversations: conversations,
		appointments:  appointments,
		maxPromptLen:  maxPromptLen,
		now:           time.Now,
	}
}

func (s *companionService) AskSymptoms(ctx context.Context, ownerID string, req *domain.SymptomsRequest) (*domain.Conversation, error) {
	if err := req.Validate(s.maxPromptLen); err != nil {
		return nil, err
	}

	reply, err := s.generator.Generate(ctx, req.Symptoms)
	if err != nil {
		if errors.Is(err, genai.ErrNotConfigured) {
			return nil, domain.Upstream("Health assistant is not available", err)
		}
		return nil, domain.Upstream("Health assistant failed to respond", err)
	}

	conv, err := s.conversations.Create(ctx, ownerID, req.Symptoms, reply)
	if err != nil {
		return nil, domain.Internal("Failed to save conversation", fmt.Errorf("create conversation: %w", err))
	}
	logger.InfoContext(ctx, "Symptom conversation saved", "conversation_id", conv.ID)
	return conv, nil
}

func (s *companionService) Conversations(ctx context.Context, ownerID string) ([]domain.Conversation, error) {
	list, err := s.conversations.ListByUser(ctx, ownerID, 50)
	if err != nil {
		return nil, domain.Internal("Failed to fetch conversations", fmt.Errorf("list conversations: %w", err))
	}
	if list == nil {
		list = []domain.Conversation{}
	}
	return list, nil
}

func (s *companionService) Summary(ctx context.Context, owner *domain.User) (*domain.HealthSummary, error) {
	counts, err := s.appointments.CountByStatus(ctx, owner.ID)
	if err != nil {
		return nil, domain.Internal("Failed to build summary", fmt.Errorf("count appointments: %w", err))
	}

	summary := &domain.HealthSummary{
		User:     owner.ToUserInfo(),
		ByStatus: counts,
	}
	for _, n := range counts {
		summary.TotalAppointments += n
	}

	next, err := s.appointments.NextUpcoming(ctx, owner.ID, s.now())
	switch {
	case err == nil:
		summary.NextAppointment = next.Summary()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, domain.Internal("Failed to build summary", fmt.Errorf("next appointment: %w", err))
	}

	total, err := s.conversations.CountByUser(ctx, owner.ID)
	if err != nil {
		return nil, domain.Internal("Failed to build summary", fmt.Errorf("count conversations: %w", err))
	}
	summary.TotalConversations = total

	convs, err := s.conversations.ListByUser(ctx, owner.ID, 1)
	if err != nil {
		return nil, domain.Internal("Failed to build summary", fmt.Errorf("list conversations: %w", err))
	}
	if len(convs) > 0 {
		last := convs[0].CreatedAt
		summary.LastConversationAt = &last
	}
	return summary, nil
}
