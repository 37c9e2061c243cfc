package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devinfinitee/AI-health-companion/internal/domain"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return env
}

func TestError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Validation(domain.CodeMissingFields, "m"), http.StatusBadRequest},
		{domain.Auth(domain.CodeInvalidToken, "m"), http.StatusUnauthorized},
		{domain.Ownership("m"), http.StatusForbidden},
		{domain.NotFound("m"), http.StatusNotFound},
		{domain.Conflict(domain.CodeCodeTaken, "m"), http.StatusConflict},
		{domain.Upstream("m", errors.New("x")), http.StatusBadGateway},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		Writer{}.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)
		if rec.Code != tc.want {
			t.Errorf("%v: status %d, want %d", tc.err, rec.Code, tc.want)
		}
		if env := decode(t, rec); env.Success || env.Data != nil {
			t.Errorf("%v: failure envelope must not carry data: %+v", tc.err, env)
		}
	}
}

func TestError_DetailOnlyInDevelopment(t *testing.T) {
	cause := domain.Internal("Server error", errors.New("connection refused"))
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	Writer{Dev: false}.Error(rec, req, cause)
	if env := decode(t, rec); env.Error != "" || env.Code != domain.CodeInternal {
		t.Fatalf("production leaked detail: %+v", env)
	}

	rec = httptest.NewRecorder()
	Writer{Dev: true}.Error(rec, req, cause)
	if env := decode(t, rec); env.Error != "connection refused" {
		t.Fatalf("development should expose detail, got %+v", env)
	}
}

func TestCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	Writer{}.Created(rec, httptest.NewRequest(http.MethodPost, "/", nil), "done", map[string]string{"id": "1"})
	env := decode(t, rec)
	if rec.Code != http.StatusCreated || !env.Success || env.Message != "done" {
		t.Fatalf("unexpected: %d %+v", rec.Code, env)
	}
}
