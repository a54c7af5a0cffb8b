package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"medicatalog/internal/domain"
	applog "medicatalog/internal/log"
	"medicatalog/internal/services"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	if _, ok := domain.IsValidation(err); ok {
		return fiber.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotOrderable), errors.Is(err, services.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrBadCreds):
		return fiber.StatusUnauthorized
	case domain.IsTransient(err):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// writeError sends the JSON error body for err. Internal details are logged,
// never returned.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	body := fiber.Map{"error": err.Error()}
	if ve, ok := domain.IsValidation(err); ok {
		body["field"] = ve.Field
		body["error"] = ve.Message
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field})
	}
	switch status {
	case fiber.StatusServiceUnavailable:
		applog.Error(c, "backend.unavailable", err, nil)
		body["error"] = "temporarily unavailable, retry"
		body["retry"] = true
	case fiber.StatusInternalServerError:
		applog.Error(c, "server.error", err, nil)
		body["error"] = "internal error"
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "field": field})
}
