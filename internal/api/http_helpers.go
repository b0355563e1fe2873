package api

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pilltrack/internal/services"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondMessage(c *fiber.Ctx, status int, success bool, message string) error {
	return c.Status(status).JSON(envelope{Success: success, Message: message})
}

func respondData(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(envelope{Success: true, Message: message, Data: data})
}

// apiError maps a service error to its status code and envelope.
func apiError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("api: %s %s failed: %v", c.Method(), c.Path(), err)
		return respondMessage(c, status, false, "System error")
	}
	return respondMessage(c, status, false, errorMessage(err))
}

func isServiceError(err error) bool {
	return errorStatus(err) != fiber.StatusInternalServerError || errors.Is(err, services.ErrStore)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrStore):
		return fiber.StatusInternalServerError
	case errors.Is(err, services.ErrNoActiveCycle),
		errors.Is(err, services.ErrNoActiveSchedule),
		errors.Is(err, services.ErrScheduleNotFound),
		errors.Is(err, services.ErrEntryNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCycleNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrUnsupportedTransition),
		errors.Is(err, services.ErrTransitionWindowClosed),
		errors.Is(err, services.ErrNothingToUpdate):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// errorMessage turns "validation error: missing required fields" into
// "Missing required fields" for the response body.
func errorMessage(err error) string {
	message := err.Error()
	if errors.Is(err, services.ErrValidation) {
		message = strings.TrimPrefix(message, services.ErrValidation.Error()+": ")
	}
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:]
}
