package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantStatus  int
		wantAllow   string
		wantVary    bool
		wantMethods string
	}{
		{
			name:        "configured origin",
			allowed:     []string{"https://market-values.example.com"},
			method:      http.MethodGet,
			origin:      "https://market-values.example.com",
			wantStatus:  http.StatusOK,
			wantAllow:   "https://market-values.example.com",
			wantVary:    true,
			wantMethods: "GET,OPTIONS",
		},
		{
			name:        "wildcard preflight",
			allowed:     []string{" * "},
			method:      http.MethodOptions,
			origin:      "https://anywhere.example.com",
			wantStatus:  http.StatusNoContent,
			wantAllow:   "*",
			wantMethods: "GET,OPTIONS",
		},
		{
			name:       "unknown origin",
			allowed:    []string{"https://allowed.example.com"},
			method:     http.MethodGet,
			origin:     "https://not-allowed.example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "no origin header",
			allowed:    []string{"*"},
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/leagues", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed, okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
				t.Fatalf("unexpected Access-Control-Allow-Origin %q", got)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVary {
				t.Fatalf("unexpected Vary header %q", rec.Header().Get("Vary"))
			}
			if got := rec.Header().Get("Access-Control-Allow-Methods"); got != tt.wantMethods {
				t.Fatalf("unexpected Access-Control-Allow-Methods %q", got)
			}
		})
	}
}

func TestRequestLogging_RecordsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := logging.FromZap(zap.New(core))

	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	req := httptest.NewRequest(http.MethodGet, "/v1/players/top?limit=5", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	RequestLogging(logger, failing).ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http request").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.ErrorLevel {
		t.Fatalf("expected 5xx to log at error level, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["status"] != int64(http.StatusServiceUnavailable) {
		t.Fatalf("unexpected status field %v", fields["status"])
	}
	if fields["client_ip"] != "203.0.113.7" || fields["query"] != "limit=5" {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestRecoverPanic_AnswersInternalError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := logging.FromZap(zap.New(core))

	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	rec := httptest.NewRecorder()
	recoverPanic(logger, panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}
