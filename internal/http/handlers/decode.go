package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object into dst. Unknown fields are
// ignored. Failures come back as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return domain.Validation(domain.CodeMissingFields, "Request body is required")
	case errors.As(err, &tooLarge):
		return domain.Validation(domain.CodeInvalidInput, "Request body too large")
	default:
		return domain.Validation(domain.CodeInvalidInput, "Invalid JSON body")
	}
}
