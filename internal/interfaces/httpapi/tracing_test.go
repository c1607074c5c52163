package httpapi

import (
	"context"
	"testing"
)

func TestShouldTraceRequest(t *testing.T) {
	tests := map[string]bool{
		"/healthz":        false,
		" /READYZ ":       false,
		"/livez":          false,
		"/v1/players/top": true,
		"/v1/leagues/GB1": true,
		"/docs":           true,
		"/":               true,
	}
	for path, want := range tests {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q)=%v want=%v", path, got, want)
		}
	}
}

func TestIsHandlerSpan(t *testing.T) {
	tests := map[string]bool{
		"httpapi.Handler.SearchPlayers": true,
		"httpapi.Handler.":              false,
		"httpapi.RequestLogging":        false,
		"httpapi.writeError":            false,
	}
	for name, want := range tests {
		if got := isHandlerSpan(name); got != want {
			t.Fatalf("isHandlerSpan(%q)=%v want=%v", name, got, want)
		}
	}
}

func TestStartSpan_UntracedContextKeepsContext(t *testing.T) {
	ctx := context.Background()
	got, span := startSpan(ctx, "httpapi.Handler.GetPlayer")
	defer span.End()

	if got != ctx {
		t.Fatalf("expected context to pass through without a parent span")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a no-op span")
	}
}
