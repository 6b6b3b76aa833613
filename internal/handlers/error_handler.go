package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/logger"
)

// ErrorHandler maps every error kind to a status code and a single JSON
// shape. Unknown errors come back as a generic 500 so driver details never
// leak to the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, apperrors.ErrDuplicateAccount):
		status, message = fiber.StatusBadRequest, apperrors.ErrDuplicateAccount.Error()
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, message = fiber.StatusUnauthorized, apperrors.ErrInvalidCredentials.Error()
	case errors.Is(err, apperrors.ErrPropertyNotFound):
		status, message = fiber.StatusNotFound, apperrors.ErrPropertyNotFound.Error()
	case errors.Is(err, apperrors.ErrPhotoNotFound):
		status, message = fiber.StatusNotFound, apperrors.ErrPhotoNotFound.Error()
	case errors.Is(err, apperrors.ErrInvalidBid):
		status, message = fiber.StatusBadRequest, apperrors.ErrInvalidBid.Error()
	case errors.Is(err, apperrors.ErrInvalidPropertyID):
		status, message = fiber.StatusBadRequest, apperrors.ErrInvalidPropertyID.Error()
	case errors.Is(err, apperrors.ErrInvalidQuery):
		status, message = fiber.StatusBadRequest, apperrors.ErrInvalidQuery.Error()
	default:
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status, message = fiberErr.Code, fiberErr.Message
		}
	}

	if status == fiber.StatusInternalServerError {
		logger.Error("request failed", map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
			"error":  err.Error(),
		})
	}

	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}
