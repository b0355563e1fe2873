package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}
	c.Locals(contextUserKey, user)
	return c.Next()
}
