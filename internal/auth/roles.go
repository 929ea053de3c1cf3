package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticket-bot/pkg/util/errorutil"
)

// Scope grants access to a group of admin routes.
type Scope string

const (
	ScopeRead  Scope = "tickets:read"
	ScopeWrite Scope = "panel:write"
)

// ParseScopes accepts a comma separated list such as "tickets:read,panel:write".
func ParseScopes(raw string) ([]Scope, error) {
	var scopes []Scope
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch s := Scope(part); s {
		case ScopeRead, ScopeWrite:
			scopes = append(scopes, s)
		default:
			return nil, fmt.Errorf("unknown scope %q", part)
		}
	}
	return scopes, nil
}

// Has reports whether the principal was granted scope.
func (p *Principal) Has(scope Scope) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// RequireScope ensures the authenticated operator holds scope.
func RequireScope(scope Scope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewForbidden("operator required")
		}
		if !principal.Has(scope) {
			return apperrors.NewForbidden("missing scope " + string(scope))
		}
		return c.Next()
	}
}
