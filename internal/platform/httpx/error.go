package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sash-studio/api/internal/platform/requestctx"
)

// Error is the JSON error envelope returned by every endpoint.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error. A zero status becomes 500.
func NewError(code, message string, status int) Error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return Error{
		Code:    clip(code, 80),
		Message: clip(message, 512),
		Status:  status,
	}
}

// BadRequest is a 400 with the given code.
func BadRequest(code, message string) Error {
	return NewError(code, message, http.StatusBadRequest)
}

// NotFound is a 404 with the given code.
func NotFound(code, message string) Error {
	return NewError(code, message, http.StatusNotFound)
}

// Internal is the generic 500 response.
func Internal() Error {
	return NewError("internal_error", "internal server error", http.StatusInternalServerError)
}

// WithDetails returns a copy of e carrying extra top-level fields.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) == 0 {
		return e
	}
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	e.Details = merged
	return e
}

func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WriteError renders err, stamping the request and trace identifiers found on ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	status := err.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	payload := make(map[string]any, len(err.Details)+5)
	for k, v := range err.Details {
		payload[k] = v
	}
	payload["error"] = err.Code
	payload["message"] = err.Message
	payload["status"] = status
	if id := clip(middleware.GetReqID(ctx), 80); id != "" {
		payload["request_id"] = id
	}
	if id := clip(requestctx.TraceID(ctx), 64); id != "" {
		payload["trace_id"] = id
	}

	WriteJSON(ctx, w, status, payload)
}

// WriteJSON encodes payload with the given status. A payload that cannot be encoded, such
// as one holding NaN, is logged and answered with a 500 envelope instead of an empty body.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		requestctx.Logger(ctx).Error("http.response.encode_failed", zap.Int("status", status), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"response_encoding_failed","message":"response could not be encoded","status":500}` + "\n"))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func clip(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
