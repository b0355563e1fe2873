package services

import (
	"fmt"
	"strings"

	"github.com/terraincognita07/pilltrack/internal/models"
)

// UpdateScheduleInput tracks presence per field: a nil pointer means the
// field was absent, so an explicit false still applies.
type UpdateScheduleInput struct {
	UserID          uint
	IsTaken         *bool
	IsActive        *bool
	ReminderEnabled *bool
	ReminderTime    *string
	PillType        *string
}

func (input UpdateScheduleInput) HasChanges() bool {
	return input.IsTaken != nil ||
		input.IsActive != nil ||
		input.ReminderEnabled != nil ||
		input.ReminderTime != nil ||
		input.PillType != nil
}

type UpdateScheduleResult struct {
	Switched bool
	Switch   SwitchResult
	Updated  int64
}

func (service *PillScheduleService) UpdateSchedule(input UpdateScheduleInput) (UpdateScheduleResult, error) {
	if input.UserID == 0 {
		return UpdateScheduleResult{}, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if !input.HasChanges() {
		return UpdateScheduleResult{}, fmt.Errorf("%w: no updatable fields provided", ErrValidation)
	}
	if input.PillType != nil && strings.TrimSpace(*input.PillType) == "" {
		return UpdateScheduleResult{}, fmt.Errorf("%w: pill type must not be empty", ErrValidation)
	}
	if input.ReminderTime != nil {
		if _, _, err := ParseClock(*input.ReminderTime); err != nil {
			return UpdateScheduleResult{}, fmt.Errorf("%w: invalid reminder time, want HH:MM", ErrValidation)
		}
	}

	active, err := service.activeEntries(input.UserID)
	if err != nil {
		return UpdateScheduleResult{}, err
	}
	if len(active) == 0 {
		return UpdateScheduleResult{}, ErrNoActiveSchedule
	}

	if input.PillType != nil {
		target := strings.TrimSpace(*input.PillType)
		if target != active[0].RegimenType {
			switched, err := service.switchRegimen(input.UserID, active, target)
			return UpdateScheduleResult{Switched: true, Switch: switched}, err
		}
	}

	updates := service.fieldUpdates(input)
	if len(updates) == 0 {
		return UpdateScheduleResult{}, fmt.Errorf("%w: pill type unchanged", ErrNothingToUpdate)
	}

	updated, err := service.schedules.UpdateMany(models.PillScheduleFilter{
		UserID:   models.UintPtr(input.UserID),
		IsActive: models.BoolPtr(true),
	}, updates)
	if err != nil {
		return UpdateScheduleResult{}, fmt.Errorf("%w: update schedule: %w", ErrStore, err)
	}
	if updated == 0 {
		return UpdateScheduleResult{}, fmt.Errorf("%w: nothing to update or update failed", ErrNothingToUpdate)
	}
	return UpdateScheduleResult{Updated: updated}, nil
}

func (service *PillScheduleService) fieldUpdates(input UpdateScheduleInput) map[string]any {
	updates := make(map[string]any)
	if input.IsTaken != nil {
		updates["is_taken"] = *input.IsTaken
		if *input.IsTaken {
			updates["taken_at"] = service.now().UTC()
		} else {
			updates["taken_at"] = nil
		}
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ReminderEnabled != nil {
		updates["reminder_enabled"] = *input.ReminderEnabled
	}
	if input.ReminderTime != nil {
		updates["reminder_time"] = strings.TrimSpace(*input.ReminderTime)
	}
	return updates
}

func (service *PillScheduleService) MarkTaken(userID uint, entryID uint) (models.PillScheduleEntry, error) {
	filter := models.PillScheduleFilter{
		ID:     models.UintPtr(entryID),
		UserID: models.UintPtr(userID),
	}
	entry, found, err := service.schedules.FindOne(filter, models.OrderByPillNumberAsc)
	if err != nil {
		return models.PillScheduleEntry{}, fmt.Errorf("%w: load entry: %w", ErrStore, err)
	}
	if !found {
		return models.PillScheduleEntry{}, ErrEntryNotFound
	}

	takenAt := service.now().UTC()
	if _, err := service.schedules.UpdateMany(filter, map[string]any{
		"is_taken": true,
		"taken_at": takenAt,
	}); err != nil {
		return models.PillScheduleEntry{}, fmt.Errorf("%w: mark entry taken: %w", ErrStore, err)
	}

	entry.IsTaken = true
	entry.TakenAt = &takenAt
	return entry, nil
}

func (service *PillScheduleService) ClearSchedule(userID uint) (int64, error) {
	deleted, err := service.schedules.DeleteMany(models.PillScheduleFilter{UserID: models.UintPtr(userID)})
	if err != nil {
		return 0, fmt.Errorf("%w: clear schedule: %w", ErrStore, err)
	}
	return deleted, nil
}
