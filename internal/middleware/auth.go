package middleware

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"trail-profile-service/internal/auth"
	"trail-profile-service/internal/models"
)

// BasicAuth verifies HTTP Basic credentials against the external
// authenticator on every request and stores the resulting principal in
// request locals. The backend is never touched when verification fails.
func BasicAuth(verifier *auth.Verifier) fiber.Handler {
	return func(c fiber.Ctx) error {
		email, password, ok := parseBasicAuth(c.Get("Authorization"))
		if !ok {
			c.Set("WWW-Authenticate", "Basic")
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Detail: "Not authenticated",
			})
		}

		principal, err := verifier.Verify(email, password)
		if err != nil {
			if errors.Is(err, auth.ErrServiceUnavailable) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Detail: "Authentication service unavailable",
				})
			}
			c.Set("WWW-Authenticate", "Basic")
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Detail: "Invalid credentials",
			})
		}

		c.Locals("principal", principal)
		return c.Next()
	}
}

func parseBasicAuth(header string) (email, password string, ok bool) {
	if !strings.HasPrefix(header, "Basic ") {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}
