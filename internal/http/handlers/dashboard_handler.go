package handlers

import (
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	mw "github.com/devinfinitee/AI-health-companion/internal/http/middleware"
	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/internal/service"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	Companion   service.CompanionService
	Out         response.Writer
	RequireUser func(http.Handler) http.Handler
}

func NewDashboardHandler(svc service.CompanionService, out response.Writer, requireUser func(http.Handler) http.Handler) *DashboardHandler {
	return &DashboardHandler{Companion: svc, Out: out, RequireUser: requireUser}
}

func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.RequireUser)
	r.Get("/health/summary", h.summary)
	r.Post("/symptoms", h.symptoms)
	r.Get("/previous/conversation", h.conversations)
	return r
}

func (h *DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Companion.Summary(r.Context(), mw.CurrentUser(r))
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "", sum)
}

func (h *DashboardHandler) symptoms(w http.ResponseWriter, r *http.Request) {
	var in domain.SymptomsRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.Out.Error(w, r, err)
		return
	}

	conv, err := h.Companion.AskSymptoms(r.Context(), mw.CurrentUser(r).ID, &in)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "", domain.SymptomsResponse{Reply: conv.Reply, ConversationID: conv.ID, Conversation: conv})
}

func (h *DashboardHandler) conversations(w http.ResponseWriter, r *http.Request) {
	list, err := h.Companion.Conversations(r.Context(), mw.CurrentUser(r).ID)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "", map[string]interface{}{"conversations": list, "count": len(list)})
}
