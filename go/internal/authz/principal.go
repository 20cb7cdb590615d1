// Package authz carries the caller identity through request contexts and
// checks administrator privilege.
package authz

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/arena/go/internal/apperrors"
	"github.com/mcdev12/arena/go/internal/models"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Roles    []models.Role
}

// IsAdmin reports whether the principal holds ADMIN.
func (p Principal) IsAdmin() bool {
	for _, r := range p.Roles {
		if r == models.RoleAdmin {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// System is the identity scheduled jobs run as.
func System() Principal {
	return Principal{Username: "system", Roles: []models.Role{models.RoleAdmin}}
}

// RequireAdmin fails with apperrors.ErrUnauthorized unless ctx carries an admin.
func RequireAdmin(ctx context.Context) error {
	p, ok := FromContext(ctx)
	if !ok {
		return apperrors.ErrUnauthorized
	}
	if !p.IsAdmin() {
		return fmt.Errorf("%w: %s is not an administrator", apperrors.ErrUnauthorized, p.Username)
	}
	return nil
}
