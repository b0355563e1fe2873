package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pilltrack/internal/models"
	"github.com/terraincognita07/pilltrack/internal/security"
)

const bearerPrefix = "bearer "

func bearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	rawToken := bearerToken(c)
	if rawToken == "" {
		return nil, errors.New("missing bearer token")
	}

	claims, err := security.ParseToken(handler.secretKey, rawToken)
	if err != nil {
		return nil, err
	}

	user, found, err := handler.repositories.Users.FindOptionalByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("token user no longer exists")
	}
	return &user, nil
}
