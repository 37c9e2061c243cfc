package domain

import (
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/utils"
)

// Conversation is one symptom question and the assistant's reply.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Question  string    `json:"question"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

type SymptomsRequest struct {
	Symptoms string `json:"symptoms"`
}

func (r *SymptomsRequest) Validate(maxLen int) error {
	r.Symptoms = utils.NormalizeString(r.Symptoms)
	if r.Symptoms == "" {
		return Validation(CodeMissingFields, "Please describe your symptoms")
	}
	if maxLen > 0 && len(r.Symptoms) > maxLen {
		return Validation(CodeInvalidInput, "Symptom description is too long")
	}
	return nil
}

type SymptomsResponse struct {
	Reply          string        `json:"reply"`
	ConversationID string        `json:"conversationId"`
	Conversation   *Conversation `json:"conversation,omitempty"`
}

// HealthSummary aggregates a user's appointments and conversation history.
type HealthSummary struct {
	User               *UserInfo                 `json:"user"`
	TotalAppointments  int                       `json:"totalAppointments"`
	ByStatus           map[AppointmentStatus]int `json:"byStatus"`
	NextAppointment    *AppointmentSummary       `json:"nextAppointment"`
	TotalConversations int                       `json:"totalConversations"`
	LastConversationAt *time.Time                `json:"lastConversationAt"`
}
