package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"

	"github.com/sash-studio/api/internal/platform/httpx"
)

const (
	defaultRoleClaim     = "role"
	defaultVerifyTimeout = 5 * time.Second
)

// TokenVerifier verifies Firebase ID tokens.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Authenticator turns bearer tokens into an Identity on the request context.
type Authenticator struct {
	verifier  TokenVerifier
	roleClaim string
	timeout   time.Duration
}

// Option customises an Authenticator.
type Option func(*Authenticator)

// WithRoleClaim changes the custom claim roles are read from.
func WithRoleClaim(claim string) Option {
	return func(a *Authenticator) {
		if claim = strings.TrimSpace(claim); claim != "" {
			a.roleClaim = claim
		}
	}
}

// WithVerificationTimeout bounds each token verification.
func WithVerificationTimeout(d time.Duration) Option {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// NewAuthenticator builds an Authenticator around verifier.
func NewAuthenticator(verifier TokenVerifier, opts ...Option) *Authenticator {
	a := &Authenticator{
		verifier:  verifier,
		roleClaim: defaultRoleClaim,
		timeout:   defaultVerifyTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// RequireFirebaseAuth rejects requests without a valid ID token. When roles are given the
// identity must hold at least one of them.
func (a *Authenticator) RequireFirebaseAuth(roles ...string) func(http.Handler) http.Handler {
	var allowed []string
	for _, role := range roles {
		if role = normaliseRole(role); role != "" {
			allowed = append(allowed, role)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.WriteError(ctx, w, unauthenticated("unauthenticated", "authorization header missing or invalid"))
				return
			}
			if a == nil || a.verifier == nil {
				httpx.WriteError(ctx, w, unauthenticated("unauthenticated", "authentication unavailable"))
				return
			}

			verifyCtx, cancel := context.WithTimeout(ctx, a.timeout)
			token, err := a.verifier.VerifyIDToken(verifyCtx, raw)
			cancel()
			if err != nil {
				if firebaseauth.IsIDTokenExpired(err) {
					httpx.WriteError(ctx, w, unauthenticated("token_expired", "id token expired"))
					return
				}
				httpx.WriteError(ctx, w, unauthenticated("invalid_token", "id token invalid"))
				return
			}

			identity := &Identity{
				UID:   token.UID,
				Email: stringClaim(token.Claims, "email"),
				Roles: roleClaims(token.Claims[a.roleClaim]),
			}
			if len(identity.Roles) == 0 {
				identity.Roles = []string{RoleUser}
			}
			if len(allowed) > 0 && !identity.hasAny(allowed) {
				httpx.WriteError(ctx, w, httpx.NewError("insufficient_role", "identity lacks a required role", http.StatusForbidden))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
		})
	}
}

func (i *Identity) hasAny(roles []string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

func unauthenticated(code, message string) httpx.Error {
	return httpx.NewError(code, message, http.StatusUnauthorized)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// roleClaims accepts a single role, a list of roles, or a map of role flags.
func roleClaims(raw any) []string {
	var out []string
	add := func(role string) {
		if role = normaliseRole(role); role != "" && !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	switch v := raw.(type) {
	case string:
		add(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case map[string]any:
		for role, flag := range v {
			if enabled, ok := flag.(bool); ok && enabled {
				add(role)
			}
		}
	}
	return out
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return strings.TrimSpace(s)
}
