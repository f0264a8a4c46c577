package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sash-studio/api/internal/platform/requestctx"
)

func TestParseCloudTrace(t *testing.T) {
	sc, ok := parseCloudTrace("105445aa7843bc8bf206b12000100000/1;o=1")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	if sc.TraceID().String() != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("unexpected trace id %s", sc.TraceID())
	}
	if sc.SpanID().String() != "0000000000000001" {
		t.Fatalf("unexpected span id %s", sc.SpanID())
	}
	if !sc.IsSampled() || !sc.IsRemote() {
		t.Fatalf("expected sampled remote span context")
	}

	for _, header := range []string{"", "abc", "short/1", "105445aa7843bc8bf206b12000100000/", "105445aa7843bc8bf206b12000100000/zz"} {
		if _, ok := parseCloudTrace(header); ok {
			t.Fatalf("expected %q to be rejected", header)
		}
	}
}

func TestTraceMiddlewareStoresTraceInfo(t *testing.T) {
	var got requestctx.TraceInfo
	handler := TraceMiddleware("proj")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(cloudTraceHeader, "105445aa7843bc8bf206b12000100000/1;o=1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.ProjectID != "proj" {
		t.Fatalf("expected project id, got %+v", got)
	}
	// The global no-op tracer propagates the remote span context unchanged.
	if got.TraceID != "105445aa7843bc8bf206b12000100000" {
		t.Fatalf("expected inbound trace id, got %q", got.TraceID)
	}
}

func TestRequestLoggerLogsRouteAndStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	router.Use(InjectLogger(zap.New(core)), RequestLogger())
	router.Get("/api/v1/estimates/{estimateId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/estimates/e1", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 404, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["route"] != "/api/v1/estimates/{estimateId}" {
		t.Fatalf("unexpected route %v", fields["route"])
	}
	if fields["remote_ip"] != "203.0.113.9" {
		t.Fatalf("unexpected remote ip %v", fields["remote_ip"])
	}
	if fields["status"] != int64(http.StatusNotFound) {
		t.Fatalf("unexpected status %v", fields["status"])
	}
}

func TestRecoveryWritesInternalError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	handler := Recovery(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if logs.FilterMessage("panic recovered").Len() != 1 {
		t.Fatalf("expected panic to be logged")
	}
}

func TestEventLoggerLevels(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	hook := EventLogger(zap.New(core))

	hook(context.Background(), "pricing.overrides.failed", map[string]any{"source": "firestore"})
	hook(context.Background(), "pricing.overrides.applied", nil)

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("expected two entries, got %d", len(all))
	}
	if all[0].Level != zapcore.WarnLevel || all[0].ContextMap()["source"] != "firestore" {
		t.Fatalf("unexpected failure entry %+v", all[0])
	}
	if all[1].Level != zapcore.InfoLevel || all[1].ContextMap()["event"] != "pricing.overrides.applied" {
		t.Fatalf("unexpected applied entry %+v", all[1])
	}
}

func TestCleanDropsControlCharacters(t *testing.T) {
	if got := clean("a\nb\x00c", 10); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := clean("abcdef", 3); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
}
