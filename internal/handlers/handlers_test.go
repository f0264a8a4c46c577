package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/sash-studio/api/internal/platform/auth"
)

type stubTokenVerifier struct {
	tokens map[string]string
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	uid, ok := s.tokens[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &firebaseauth.Token{UID: uid, Claims: map[string]any{}}, nil
}

func newTestAuthenticator() *auth.Authenticator {
	return auth.NewAuthenticator(&stubTokenVerifier{tokens: map[string]string{
		"token-owner":    "owner",
		"token-intruder": "intruder",
	}})
}

func doRequest(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to parse response %q: %v", rr.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func httpRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}
