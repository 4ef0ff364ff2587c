package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// RequireScope ensures the principal carries one of the allowed scopes.
func RequireScope(allowed ...Scope) fiber.Handler {
	allowedSet := make(map[Scope]struct{}, len(allowed))
	for _, scope := range allowed {
		allowedSet[scope] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if _, ok := allowedSet[principal.Scope]; !ok {
			return fiber.NewError(http.StatusForbidden, "insufficient scope")
		}
		return c.Next()
	}
}
