package httpx

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sash-studio/api/internal/platform/requestctx"
)

func TestWriteErrorIncludesRequestAndTraceIDs(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")
	ctx = requestctx.WithTrace(ctx, requestctx.TraceInfo{TraceID: "abc"})
	rec := httptest.NewRecorder()

	WriteError(ctx, rec, BadRequest("invalid_email", "email is invalid").WithDetails(map[string]any{"field": "email"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "invalid_email" || body["request_id"] != "req-1" || body["trace_id"] != "abc" {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["field"] != "email" {
		t.Fatalf("expected details to be merged, got %v", body)
	}
}

func TestWriteErrorDetailsCannotOverrideEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NotFound("not_found", "missing").WithDetails(map[string]any{"status": 200}))

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["status"] != float64(http.StatusNotFound) {
		t.Fatalf("expected status 404 in body, got %v", body["status"])
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	cases := []struct {
		name string
		body string
		code string
	}{
		{name: "valid", body: `{"email":"a@b.co"}`},
		{name: "empty", body: "  ", code: "invalid_request"},
		{name: "malformed", body: `{"email":`, code: "invalid_json"},
		{name: "unknown field", body: `{"mail":"x"}`, code: "invalid_json"},
		{name: "too large", body: `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, code: "payload_too_large"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst payload
			err := DecodeJSON(req, &dst)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dst.Email != "a@b.co" {
					t.Fatalf("unexpected payload %+v", dst)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := DecodeError(err).Code; got != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, got)
			}
		})
	}
}

func TestWriteJSONReportsUnencodablePayload(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	ctx := requestctx.WithLogger(context.Background(), zap.New(core))
	rec := httptest.NewRecorder()

	WriteJSON(ctx, rec, http.StatusOK, map[string]float64{"total": math.NaN()})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected a JSON envelope, got %q: %v", rec.Body.String(), err)
	}
	if body["error"] != "response_encoding_failed" {
		t.Fatalf("unexpected body %v", body)
	}
	if logs.FilterMessage("http.response.encode_failed").Len() != 1 {
		t.Fatalf("expected encode failure to be logged, got %v", logs.All())
	}
}
