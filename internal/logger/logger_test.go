package logger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", LevelNone},
		{"unknown", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLogLevel(tt.input); got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestLoggingIncludesHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := initLogger(&buf, slog.LevelInfo, "prod")

	handler := middleware.RequestID(RequestLogging(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ContextRequestLogger(r.Context()) == slog.Default() {
			t.Error("expected a request scoped logger")
		}
		ContextWithLogAttrs(r.Context(), slog.String("identifier", "abc"))
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	out := buf.String()
	for _, want := range []string{`"status":418`, `"identifier":"abc"`, `"path":"/health/live"`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}

func TestContextRequestLoggerDefaults(t *testing.T) {
	if ContextRequestLogger(context.Background()) != slog.Default() {
		t.Error("expected default logger when none is set")
	}
	// must not panic without the middleware
	ContextWithLogAttrs(context.Background(), slog.String("k", "v"))
}
