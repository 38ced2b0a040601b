package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wonlab/omics-status/pkg/common/logger"
)

func TestLoggingEchoesRequestID(t *testing.T) {
	logger.Init()

	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-ID") == "" {
			t.Fatal("request ID not propagated downstream")
		}
		w.WriteHeader(http.StatusAccepted)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status/overview", nil))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("request ID not echoed to the client")
	}
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected status to pass through, got %d", rr.Code)
	}
}

func TestLoggingKeepsCallerRequestID(t *testing.T) {
	logger.Init()

	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Fatalf("expected caller request ID to survive, got %q", got)
	}
}

func TestRecoveryTurnsPanicInto500(t *testing.T) {
	logger.Init()

	handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dataset", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rr.Code)
	}
}
