package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"inventory/internal/apperrors"
)

// Locals keys set by AuthRequired.
const (
	LocalUserID   = "userId"
	LocalUsername = "username"
	LocalRole     = "role"
)

// TokenValidator parses a bearer token into its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token. When
// enabled is false every request passes through untouched.
func AuthRequired(validator TokenValidator, enabled bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !enabled {
			return c.Next()
		}

		tokenString := bearerToken(c.Get(fiber.HeaderAuthorization))
		if tokenString == "" {
			return apperrors.ErrTokenRequired
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("jwt validation failed")
			return apperrors.ErrInvalidToken
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals(LocalUserID, claims["userId"])
		c.Locals(LocalUsername, claims["username"])
		c.Locals(LocalRole, claims["role"])

		return c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"; anything else yields "".
func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
