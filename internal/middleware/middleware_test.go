package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/penshort/roster/internal/handler/dto"
)

func TestRequestID_GeneratesAndPropagates(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a generated request id in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("header %s = %q, want %q", RequestIDHeader, got, seen)
	}
}

func TestRequestID_ReusesClientValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"short value", "req-123", true},
		{"too long", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.header)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if (got == tt.header) != tt.reuse {
				t.Errorf("reused = %v, want %v", got == tt.header, tt.reuse)
			}
		})
	}
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) ObserveRequest(method, route string, status int, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, route, status})
}
func (f *fakeRecorder) IncObjectCreated(string) {}
func (f *fakeRecorder) IncObjectUpdated(string) {}
func (f *fakeRecorder) IncObjectDeleted(string) {}
func (f *fakeRecorder) IncValidationFailed(string) {}
func (f *fakeRecorder) IncSchemaCacheHit() {}
func (f *fakeRecorder) IncSchemaCacheMiss() {}
func (f *fakeRecorder) ObserveSchemaGeneration(time.Duration) {}

func TestLogger_UsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &fakeRecorder{}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger, rec))
	r.Get("/users/{id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/abc/", nil))

	if len(rec.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(rec.requests))
	}
	if got := rec.requests[0]; got.route != "/users/{id}/" || got.status != http.StatusNotFound {
		t.Errorf("recorded %+v, want route /users/{id}/ status 404", got)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["path"] != "/users/abc/" {
		t.Errorf("path = %v, want /users/abc/", entry["path"])
	}
	if entry["request_id"] == "" {
		t.Error("request_id should be logged")
	}
}

func TestRoutePattern_MatchesRegisteredRoute(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    string
	}{
		{"/users/{id}/", "/users/abc/", "/users/{id}/"},
		{"/users/", "/users/", "/users/"},
		{"/healthz", "/healthz", "/healthz"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			rec := &fakeRecorder{}
			r := chi.NewRouter()
			r.Use(Logger(slog.New(slog.NewTextHandler(io.Discard, nil)), rec))
			r.Get(tt.pattern, func(w http.ResponseWriter, r *http.Request) {})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if len(rec.requests) != 1 || rec.requests[0].route != tt.want {
				t.Errorf("recorded %+v, want route %s", rec.requests, tt.want)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %s, want INTERNAL_ERROR", resp.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Error("panic should be logged")
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dev      bool
		wantHSTS bool
	}{
		{"development", true, false},
		{"production", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := SecurityHeaders(tt.dev)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("missing X-Content-Type-Options")
			}
			if got := rec.Header().Get("Strict-Transport-Security") != ""; got != tt.wantHSTS {
				t.Errorf("HSTS present = %v, want %v", got, tt.wantHSTS)
			}
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	t.Parallel()

	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	if rec.Code != http.StatusNoContent {
		t.Errorf("small body status = %d, want 204", rec.Code)
	}
}
