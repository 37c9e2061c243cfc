package handlers

import (
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/go-chi/chi/v5"
)

// API groups the handlers served under the API prefix.
type API struct {
	Auth         *AuthHandler
	Appointments *AppointmentsHandler
	Dashboard    *DashboardHandler
	Out          response.Writer
	// AuthLimit throttles signup and login. Optional.
	AuthLimit func(http.Handler) http.Handler
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.liveness)

	r.Group(func(r chi.Router) {
		if a.AuthLimit != nil {
			r.Use(a.AuthLimit)
		}
		r.Post("/signup", a.Auth.signup)
		r.Post("/login", a.Auth.login)
	})

	r.Mount("/appointments", a.Appointments.Routes())
	r.Mount("/dashboard", a.Dashboard.Routes())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { a.Out.NotFound(w, r) })
	return r
}

func (a *API) liveness(w http.ResponseWriter, r *http.Request) {
	a.Out.OK(w, r, "Health companion API is running", nil)
}
