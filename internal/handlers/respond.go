package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tabeshpress/order-panel/internal/validation"
)

// Response helpers shared by every handler. All error payloads keep the
// success/message envelope so the panel can handle them uniformly.

func validationFail(c *fiber.Ctx, errs validation.FieldErrors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success": false,
		"message": msg,
	})
}

// configMismatch reports a selection that passed the published form config but
// no longer prices, meaning the catalog changed under the client.
func configMismatch(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"success": false,
		"code":    "config_mismatch",
		"message": "The selected combination is no longer available, reload the form",
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}
