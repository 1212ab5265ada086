package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tokengrid/tokengrid/internal/auth"
	"github.com/tokengrid/tokengrid/internal/config"
)

// JWTAuth validates bearer session tokens and binds the verified user id into
// the request locals. Handlers must take the caller identity from here, never
// from the request body.
func JWTAuth(cfg config.Config) fiber.Handler {
	secret := []byte(cfg.JWTSecret)
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "not authorized, no token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])

		userID, err := auth.VerifySessionToken(tokenStr, secret)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "not authorized, token failed")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}
