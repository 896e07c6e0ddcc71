package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddleware_Generates(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("expected a request id in the handler context")
	}
	if got := rr.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("expected header %q to match context id %q", got, seen)
	}
}

func TestRequestIDMiddleware_PreservesCallerID(t *testing.T) {
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "caller-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", got)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	logger := NewMockHandlerLogger()
	h := RecoverMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/upload", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Internal server error") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
	if msgs := logger.Messages(); len(msgs) != 1 || msgs[0] != "error: Handler panicked" {
		t.Fatalf("expected panic to be logged, got %v", msgs)
	}
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	logger := NewMockHandlerLogger()
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, "No file uploaded")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/upload", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if msgs := logger.Messages(); len(msgs) != 1 || msgs[0] != "info: HTTP request" {
		t.Fatalf("expected one access log line, got %v", msgs)
	}
}

func TestStatusRecorder_DefaultsToOK(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	_, _ = rec.Write([]byte("hi"))
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusOK {
		t.Fatalf("expected first write to pin status 200, got %d", rec.status)
	}
	if newStatusRecorder(rec) != rec {
		t.Fatalf("expected an existing recorder to be reused")
	}
}
