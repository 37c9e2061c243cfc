package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Writer renders envelopes. In development it exposes the wrapped cause of
// failures in the error field.
type Writer struct {
	Dev bool
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.ErrorContext(ctx, "Failed to encode response", "error", err)
	}
}

func (wr Writer) OK(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	writeJSON(r.Context(), w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func (wr Writer) Created(w http.ResponseWriter, r *http.Request, message string, data interface{}) {
	writeJSON(r.Context(), w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// StatusFor maps an error category to its HTTP status.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindOwnership:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a failure envelope. Uncategorized errors become
// INTERNAL. Server-side faults are logged with the request context.
func (wr Writer) Error(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		de = domain.Internal("Internal server error", err)
	}

	status := StatusFor(de.Kind)
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			"code", de.Code,
			"error", err,
			"path", r.URL.Path,
		)
	}

	body := Envelope{Success: false, Message: de.Message, Code: de.Code}
	if wr.Dev && de.Err != nil {
		body.Error = de.Err.Error()
	}
	writeJSON(r.Context(), w, status, body)
}

// Convenience functions for common errors

func (wr Writer) RateLimit(w http.ResponseWriter, r *http.Request, message string) {
	wr.Error(w, r, &domain.Error{Kind: domain.KindRateLimited, Code: domain.CodeRateLimit, Message: message})
}

func (wr Writer) NotFound(w http.ResponseWriter, r *http.Request) {
	wr.Error(w, r, domain.NotFound("Route not found"))
}
