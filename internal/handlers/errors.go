package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"inventory/internal/apperrors"
)

// ErrorHandler turns errors returned by handlers into {error, code} bodies.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(apperrors.ErrorResponse{
			Error: fiberErr.Message,
			Code:  "HTTP_ERROR",
		})
	}

	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(httpErr.StatusCode).JSON(httpErr.ToErrorResponse())
}
