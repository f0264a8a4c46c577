package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubTokenVerifier struct {
	token    *firebaseauth.Token
	err      error
	received string
}

func (s *stubTokenVerifier) VerifyIDToken(_ context.Context, idToken string) (*firebaseauth.Token, error) {
	s.received = idToken
	if s.err != nil {
		return nil, s.err
	}
	return s.token, nil
}

func TestRequireFirebaseAuthAllowsValidToken(t *testing.T) {
	verifier := &stubTokenVerifier{token: &firebaseauth.Token{
		UID: "uid-123",
		Claims: map[string]any{
			"email": "buyer@example.co.uk",
			"role":  []any{"Trade", "trade", "user"},
		},
	}}
	authn := NewAuthenticator(verifier)

	var identity *Identity
	handler := authn.RequireFirebaseAuth("trade")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer token-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if verifier.received != "token-abc" {
		t.Fatalf("unexpected token passed to verifier: %q", verifier.received)
	}
	if identity == nil || identity.UID != "uid-123" || identity.Email != "buyer@example.co.uk" {
		t.Fatalf("unexpected identity %+v", identity)
	}
	if len(identity.Roles) != 2 || !identity.HasRole("TRADE") {
		t.Fatalf("unexpected roles %v", identity.Roles)
	}
}

func TestRequireFirebaseAuthDefaultsToUserRole(t *testing.T) {
	authn := NewAuthenticator(&stubTokenVerifier{token: &firebaseauth.Token{UID: "u", Claims: map[string]any{}}})

	var identity *Identity
	handler := authn.RequireFirebaseAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ = IdentityFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if identity == nil || !identity.HasRole(RoleUser) {
		t.Fatalf("expected user role, got %+v", identity)
	}
}

func TestRequireFirebaseAuthRejections(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		verifier *stubTokenVerifier
		roles    []string
		status   int
		code     string
	}{
		{name: "missing header", status: http.StatusUnauthorized, code: "unauthenticated", verifier: &stubTokenVerifier{}},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: "unauthenticated", verifier: &stubTokenVerifier{}},
		{name: "verification failure", header: "Bearer bad", status: http.StatusUnauthorized, code: "invalid_token", verifier: &stubTokenVerifier{err: errors.New("bad signature")}},
		{
			name:     "missing role",
			header:   "Bearer ok",
			roles:    []string{"staff"},
			status:   http.StatusForbidden,
			code:     "insufficient_role",
			verifier: &stubTokenVerifier{token: &firebaseauth.Token{UID: "u", Claims: map[string]any{"role": "user"}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			handler := NewAuthenticator(tc.verifier).RequireFirebaseAuth(tc.roles...)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if called {
				t.Fatalf("handler must not run")
			}
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, body["error"])
			}
		})
	}
}

func TestRoleClaimsShapes(t *testing.T) {
	if got := roleClaims(map[string]any{"Staff": true, "admin": false}); len(got) != 1 || got[0] != "staff" {
		t.Fatalf("unexpected map roles %v", got)
	}
	if got := roleClaims(42); got != nil {
		t.Fatalf("expected nil for unsupported claim, got %v", got)
	}
}
