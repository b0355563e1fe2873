package api

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/pilltrack/internal/services"
)

const (
	testReminderLimit  = 3
	testReminderWindow = 10 * time.Minute
)

func (handler *Handler) SetupPillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	request := setupScheduleRequest{}
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, err)
	}

	result, err := handler.pillSchedules.SetupSchedule(services.SetupScheduleInput{
		UserID:          user.ID,
		PillType:        request.PillType,
		PillStartDate:   request.PillStartDate,
		ReminderTime:    request.ReminderTime,
		ReminderEnabled: request.ReminderEnabled,
	})
	if err != nil {
		return apiError(c, err)
	}

	message := "Pill schedule created"
	if result.Replaced {
		message = "Pill schedule replaced"
	}
	return respondData(c, fiber.StatusCreated, message, setupScheduleView{
		Count:    result.Count,
		Replaced: result.Replaced,
		Entries:  handler.entryViews(result.Entries),
	})
}

func (handler *Handler) UpdatePillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	request := updateScheduleRequest{}
	if err := decodeJSONBody(c, &request); err != nil {
		return apiError(c, err)
	}

	result, err := handler.pillSchedules.UpdateSchedule(services.UpdateScheduleInput{
		UserID:          user.ID,
		IsTaken:         request.IsTaken,
		IsActive:        request.IsActive,
		ReminderEnabled: request.ReminderEnabled,
		ReminderTime:    request.ReminderTime,
		PillType:        request.PillType,
	})
	if err != nil {
		if result.Switched && len(result.Switch.Steps) > 0 {
			log.Printf("api: pill type switch for user %d stopped after %d step(s): %v", user.ID, len(result.Switch.Steps), err)
		}
		return apiError(c, err)
	}

	view := updateScheduleView{Switched: result.Switched, Updated: result.Updated}
	message := "Pill schedule updated"
	if result.Switched {
		view.Switch = handler.switchView(result.Switch)
		message = fmt.Sprintf("Pill type changed from %s to %s", result.Switch.From, result.Switch.To)
	}
	return respondData(c, fiber.StatusOK, message, view)
}

func (handler *Handler) ListPillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	entries, err := handler.pillSchedules.ListSchedule(user.ID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Pill schedule retrieved", handler.entryViews(entries))
}

func (handler *Handler) WeeklyPillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	period, err := handler.pillSchedules.WeeklySchedule(user.ID, c.Query("start_date"))
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Weekly pill schedule retrieved", handler.periodView(period))
}

func (handler *Handler) MonthlyPillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	period, err := handler.pillSchedules.MonthlySchedule(user.ID, c.Query("start_date"))
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Monthly pill schedule retrieved", handler.periodView(period))
}

func (handler *Handler) MarkPillTaken(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	entryID, err := parseIDParam(c, "id")
	if err != nil {
		return apiError(c, err)
	}
	entry, err := handler.pillSchedules.MarkTaken(user.ID, entryID)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Pill marked as taken", handler.entryView(entry))
}

func (handler *Handler) PillStatistics(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	stats, err := handler.pillSchedules.Statistics(user.ID)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Pill statistics retrieved", newStatisticsView(stats))
}

func (handler *Handler) ClearPillSchedule(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	deleted, err := handler.pillSchedules.ClearSchedule(user.ID)
	if err != nil {
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Pill schedule cleared", deletedView{Deleted: deleted})
}

func (handler *Handler) SendTestReminder(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return respondMessage(c, fiber.StatusUnauthorized, false, "Unauthorized")
	}

	limiterKey := fmt.Sprintf("test-reminder:%d", user.ID)
	if !handler.reminderLimiter.allow(limiterKey, handler.now(), testReminderLimit, testReminderWindow) {
		return respondMessage(c, fiber.StatusTooManyRequests, false, "Too many test reminders, try again later")
	}

	reminder, err := handler.reminders.SendTestReminder(c.UserContext(), user.ID)
	if err != nil {
		if !isServiceError(err) {
			log.Printf("api: test reminder for user %d failed: %v", user.ID, err)
			return respondMessage(c, fiber.StatusBadGateway, false, "Reminder delivery failed")
		}
		return apiError(c, err)
	}
	return respondData(c, fiber.StatusOK, "Test reminder sent", reminderView{
		Email:        reminder.Email,
		PillNumber:   reminder.PillNumber,
		PillType:     reminder.RegimenType,
		ReminderTime: reminder.ReminderTime,
	})
}
