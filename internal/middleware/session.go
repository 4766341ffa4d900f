package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kivu-cash/kivu_cash/internal/auth"
)

// SessionLocalsKey is where the authenticated session identifier is stored
// on the request context.
const SessionLocalsKey = "session_id"

// SessionAuth validates the bearer session token and exposes the session
// identifier to downstream handlers.
func SessionAuth(sessions *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		sessionID, err := sessions.Verify(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid session token")
		}
		c.Locals(SessionLocalsKey, sessionID)
		return c.Next()
	}
}
