package handlers

import (
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/internal/service"
)

type AuthHandler struct {
	Auth service.AuthService
	Out  response.Writer
}

func NewAuthHandler(svc service.AuthService, out response.Writer) *AuthHandler {
	return &AuthHandler{Auth: svc, Out: out}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var in domain.SignupRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.Out.Error(w, r, err)
		return
	}

	res, err := h.Auth.Signup(r.Context(), &in)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.Created(w, r, "Account created successfully", res)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in domain.LoginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		h.Out.Error(w, r, err)
		return
	}

	res, err := h.Auth.Login(r.Context(), &in)
	if err != nil {
		h.Out.Error(w, r, err)
		return
	}
	h.Out.OK(w, r, "Login successful", res)
}
