package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
)

type PillScheduleRepository interface {
	CreateBatch(entries []models.PillScheduleEntry) error
	Find(filter models.PillScheduleFilter, order models.PillScheduleOrder, limit int) ([]models.PillScheduleEntry, error)
	FindOne(filter models.PillScheduleFilter, order models.PillScheduleOrder) (models.PillScheduleEntry, bool, error)
	UpdateMany(filter models.PillScheduleFilter, updates map[string]any) (int64, error)
	DeleteMany(filter models.PillScheduleFilter) (int64, error)
}

type CycleResolver interface {
	FindLatestByUser(userID uint) (models.MenstrualCycle, bool, error)
}

type PillScheduleService struct {
	schedules PillScheduleRepository
	cycles    CycleResolver
	location  *time.Location
	now       func() time.Time
}

func NewPillScheduleService(schedules PillScheduleRepository, cycles CycleResolver, location *time.Location) *PillScheduleService {
	if location == nil {
		location = time.UTC
	}
	return &PillScheduleService{
		schedules: schedules,
		cycles:    cycles,
		location:  location,
		now:       time.Now,
	}
}

// WithClock replaces the time source. Used by tests and by the test-reminder path.
func (service *PillScheduleService) WithClock(now func() time.Time) *PillScheduleService {
	if now != nil {
		service.now = now
	}
	return service
}

func (service *PillScheduleService) Location() *time.Location {
	return service.location
}

func (service *PillScheduleService) today() time.Time {
	return DateAtLocation(service.now(), service.location)
}

type PillScheduleParams struct {
	UserID          uint
	CycleID         uint
	Regimen         Regimen
	StartDate       time.Time
	ReminderTime    string
	ReminderEnabled bool
}

// BuildPillSchedule expands a regimen into one entry per day starting at StartDate.
func BuildPillSchedule(params PillScheduleParams, location *time.Location) ([]models.PillScheduleEntry, error) {
	config, ok := LookupRegimen(params.Regimen)
	if !ok {
		return nil, fmt.Errorf("%w: unknown pill type %q", ErrValidation, params.Regimen)
	}

	startDay := DateAtLocation(params.StartDate, location)
	entries := make([]models.PillScheduleEntry, 0, config.TotalDays)
	for offset := 0; offset < config.TotalDays; offset++ {
		pillNumber := offset + 1
		entries = append(entries, models.PillScheduleEntry{
			UserID:          params.UserID,
			CycleID:         params.CycleID,
			PillStartDate:   startDay.AddDate(0, 0, offset),
			PillNumber:      pillNumber,
			RegimenType:     params.Regimen.String(),
			PillKind:        config.PillKindFor(pillNumber),
			IsActive:        true,
			ReminderEnabled: params.ReminderEnabled,
			ReminderTime:    params.ReminderTime,
		})
	}
	return entries, nil
}

type SetupScheduleInput struct {
	UserID          uint
	PillType        string
	PillStartDate   string
	ReminderTime    string
	ReminderEnabled *bool
}

type SetupScheduleResult struct {
	Entries  []models.PillScheduleEntry
	Count    int
	Replaced bool
}

func (service *PillScheduleService) SetupSchedule(input SetupScheduleInput) (SetupScheduleResult, error) {
	pillType := strings.TrimSpace(input.PillType)
	reminderTime := strings.TrimSpace(input.ReminderTime)
	if input.UserID == 0 || pillType == "" || strings.TrimSpace(input.PillStartDate) == "" || reminderTime == "" {
		return SetupScheduleResult{}, fmt.Errorf("%w: missing required fields", ErrValidation)
	}

	regimen, ok := ParseRegimen(pillType)
	if !ok {
		return SetupScheduleResult{}, fmt.Errorf("%w: invalid pill type, must be one of 21-day, 24+4, 21+7", ErrValidation)
	}
	startDate, err := ParseCalendarDate(input.PillStartDate, service.location)
	if err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: invalid start date format", ErrValidation)
	}
	if _, _, err := ParseClock(reminderTime); err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: invalid reminder time, want HH:MM", ErrValidation)
	}
	reminderEnabled := true
	if input.ReminderEnabled != nil {
		reminderEnabled = *input.ReminderEnabled
	}

	cycle, found, err := service.cycles.FindLatestByUser(input.UserID)
	if err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: resolve cycle: %w", ErrStore, err)
	}
	if !found {
		return SetupScheduleResult{}, ErrNoActiveCycle
	}

	_, replaced, err := service.schedules.FindOne(models.PillScheduleFilter{
		UserID:  models.UintPtr(input.UserID),
		CycleID: models.UintPtr(cycle.ID),
	}, models.OrderByPillNumberAsc)
	if err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: check existing schedule: %w", ErrStore, err)
	}

	// The wipe spans every cycle of the user, not only the resolved one.
	if _, err := service.schedules.DeleteMany(models.PillScheduleFilter{UserID: models.UintPtr(input.UserID)}); err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: delete previous schedule: %w", ErrStore, err)
	}

	entries, err := BuildPillSchedule(PillScheduleParams{
		UserID:          input.UserID,
		CycleID:         cycle.ID,
		Regimen:         regimen,
		StartDate:       startDate,
		ReminderTime:    reminderTime,
		ReminderEnabled: reminderEnabled,
	}, service.location)
	if err != nil {
		return SetupScheduleResult{}, err
	}
	if err := service.schedules.CreateBatch(entries); err != nil {
		return SetupScheduleResult{}, fmt.Errorf("%w: create schedule: %w", ErrStore, err)
	}

	return SetupScheduleResult{
		Entries:  entries,
		Count:    len(entries),
		Replaced: replaced,
	}, nil
}

func (service *PillScheduleService) activeEntries(userID uint) ([]models.PillScheduleEntry, error) {
	entries, err := service.schedules.Find(models.PillScheduleFilter{
		UserID:   models.UintPtr(userID),
		IsActive: models.BoolPtr(true),
	}, models.OrderByPillNumberAsc, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: load active schedule: %w", ErrStore, err)
	}
	return entries, nil
}

// CurrentPillNumber is the 1-based regimen day that today falls on.
func (service *PillScheduleService) CurrentPillNumber(first models.PillScheduleEntry) int {
	return DaysBetween(first.PillStartDate, service.now(), service.location) + 1
}
