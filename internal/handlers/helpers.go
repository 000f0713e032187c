package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"sklep/internal/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto its HTTP response. Categorized
// errors surface their message with the taxonomy status; anything else is a
// 500 echoing kind and message.
func respondError(c *fiber.Ctx, err error) error {
	status := apierror.StatusCode(err)
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) && status != http.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{
			"message": apiErr.Message,
		})
	}
	log.Printf("Internal error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}

// respondValidationErrors turns validator failures into the shared 400
// response listing each offending field.
func respondValidationErrors(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
