package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) StartCycle(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	request := startCycleRequest{}
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, err)
	}
	cycle, err := handler.cycles.StartCycle(user.ID, request.CycleStartDate, request.CycleLength)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusCreated, "Cycle created", handler.cycleView(cycle))
}

func (handler *Handler) LatestCycle(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	cycle, err := handler.cycles.LatestCycle(user.ID)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Cycle retrieved", handler.cycleView(cycle))
}

func (handler *Handler) DeleteCycle(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	cycleID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, err)
	}
	deleted, err := handler.cycles.DeleteCycle(user.ID, cycleID)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Cycle deleted", deletedView{Deleted: deleted})
}
