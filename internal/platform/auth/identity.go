package auth

import (
	"context"
	"slices"
	"strings"
)

// RoleUser is granted to every verified caller without a role claim.
const RoleUser = "user"

// Identity is the verified caller behind a request.
type Identity struct {
	UID   string
	Email string
	Roles []string
}

// HasRole reports whether the identity carries role, ignoring case.
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	role = normaliseRole(role)
	return role != "" && slices.Contains(i.Roles, role)
}

type identityKey struct{}

// WithIdentity stores identity on ctx.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity stored by the auth middleware.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	if ctx == nil {
		return nil, false
	}
	identity, ok := ctx.Value(identityKey{}).(*Identity)
	return identity, ok && identity != nil
}

func normaliseRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
