package middleware

import (
	"errors"
	"strings"

	"sklep/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Context keys under which the authenticated identity is stored.
const (
	LocalUsername = "username"
	LocalRole     = "role"
)

// AuthRequired is a Fiber middleware that validates a Bearer access token and
// enforces an allowed-roles set (empty set = any authenticated role). It
// trusts the signed token's claims and performs no database lookup, so a role
// change takes effect only once the current access token expires.
//
// Failure modes: missing or malformed header -> 401; expired token -> 403
// with a distinct reason; otherwise invalid token -> 403; role outside a
// non-empty allow-list -> 403.
func AuthRequired(authService *services.AuthService, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		username, role, err := authService.ValidateAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, services.ErrTokenExpired) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"message": "Token has expired",
				})
			}
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		if len(allowed) > 0 && !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
			})
		}

		// Store identity in Fiber context for subsequent handlers
		c.Locals(LocalUsername, username)
		c.Locals(LocalRole, role)

		return c.Next()
	}
}
