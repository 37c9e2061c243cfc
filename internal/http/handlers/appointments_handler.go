package handlers

import (
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	mw "github.com/devinfinitee/AI-health-companion/internal/http/middleware"
	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/internal/service"
	"github.com/go-chi/chi/v5"
)

type AppointmentsHandler struct {
	Appointments service.AppointmentService
	Out          response.Writer
	RequireUser  func(http.Handler) http.Handler
	Idempotency  func(http.Handler) http.Handler
}

func NewAppointmentsHandler(svc service.AppointmentService, out response.Writer, requireUser, idempotency func(http.Handler) http.Handler) *AppointmentsHandler {
	return &AppointmentsHandler{Appointments: svc, Out: out, RequireUser: requireUser, Idempotency: idempotency}
}

func (h *AppointmentsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.RequireUser)
	if h.Idempotency != nil {
		r.Use(h.Idempotency)
	}
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.getByID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.cancel)
	return r
}

type appointmentResponse struct {
	Appointment interface{} `json:"appointment"`
}

type listResponse struct {
	Appointments []domain.Appointment `json:"appointments"`
	Count        int                  `json:"count"`
}

func (h *AppointmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	user := mw.CurrentUser(r)
	var in domain.CreateAppointmentRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.Out.Error(w, r, err)
		return
	}

	appt, err := h.Appointments.Create(r.Context(), user.ID, &in)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.Created(w, r, "Appointment booked successfully", appointmentResponse{appt.Summary()})
}

// list supports an optional ?status= filter.
func (h *AppointmentsHandler) list(w http.ResponseWriter, r *http.Request) {
	user := mw.CurrentUser(r)

	var want domain.AppointmentStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s, ok := domain.ParseAppointmentStatus(raw)
		if !ok {
			h.Out.Error(w, r, domain.Validation(domain.CodeInvalidInput, "Unknown status filter"))
			return
		}
		want = s
	}

	list, err := h.Appointments.List(r.Context(), user.ID)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	if want != "" {
		filtered := make([]domain.Appointment, 0, len(list))
		for _, a := range list {
			if a.Status == want {
				filtered = append(filtered, a)
			}
		}
		list = filtered
	}
	h.Out.OK(w, r, "", listResponse{Appointments: list, Count: len(list)})
}

func (h *AppointmentsHandler) getByID(w http.ResponseWriter, r *http.Request) {
	user := mw.CurrentUser(r)
	appt, err := h.Appointments.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "", appointmentResponse{appt})
}

func (h *AppointmentsHandler) update(w http.ResponseWriter, r *http.Request) {
	user := mw.CurrentUser(r)
	var patch domain.AppointmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.Out.Error(w, r, err)
		return
	}

	appt, err := h.Appointments.Update(r.Context(), user.ID, chi.URLParam(r, "id"), &patch)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "Appointment updated successfully", appointmentResponse{appt})
}

func (h *AppointmentsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	user := mw.CurrentUser(r)
	appt, err := h.Appointments.Cancel(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "Appointment cancelled successfully", appointmentResponse{appt})
}
