package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies accepted by DecodeJSON.
const MaxBodyBytes = 64 * 1024

var (
	// ErrEmptyBody is returned when the request carries no payload.
	ErrEmptyBody = errors.New("httpx: request body is empty")
	// ErrBodyTooLarge is returned when the payload exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("httpx: request body too large")
)

// DecodeJSON reads a bounded JSON body into dst. Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	defer r.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("httpx: read body: %w", err)
	}
	if len(raw) > MaxBodyBytes {
		return ErrBodyTooLarge
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("httpx: decode body: %w", err)
	}
	return nil
}

// DecodeError maps a DecodeJSON failure to the response envelope.
func DecodeError(err error) Error {
	switch {
	case errors.Is(err, ErrBodyTooLarge):
		return NewError("payload_too_large", "request body too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, ErrEmptyBody):
		return BadRequest("invalid_request", "request body is required")
	default:
		return BadRequest("invalid_json", "request body must be valid JSON")
	}
}
