package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
)

type CycleRepository interface {
	Create(cycle *models.MenstrualCycle) error
	FindLatestByUser(userID uint) (models.MenstrualCycle, bool, error)
	FindByUserAndID(userID uint, cycleID uint) (models.MenstrualCycle, bool, error)
	DeleteWithSchedules(userID uint, cycleID uint) (int64, error)
}

type CycleService struct {
	cycles   CycleRepository
	location *time.Location
}

func NewCycleService(cycles CycleRepository, location *time.Location) *CycleService {
	if location == nil {
		location = time.UTC
	}
	return &CycleService{cycles: cycles, location: location}
}

func (service *CycleService) StartCycle(userID uint, rawStart string, cycleLength int) (models.MenstrualCycle, error) {
	if strings.TrimSpace(rawStart) == "" {
		return models.MenstrualCycle{}, fmt.Errorf("%w: missing cycle start date", ErrValidation)
	}
	start, err := ParseCalendarDate(rawStart, service.location)
	if err != nil {
		return models.MenstrualCycle{}, fmt.Errorf("%w: invalid cycle start date", ErrValidation)
	}
	if cycleLength == 0 {
		cycleLength = models.DefaultCycleLength
	}
	if cycleLength < 15 || cycleLength > 90 {
		return models.MenstrualCycle{}, fmt.Errorf("%w: cycle length must be between 15 and 90 days", ErrValidation)
	}

	cycle := models.MenstrualCycle{
		UserID:         userID,
		CycleStartDate: start,
		CycleLength:    cycleLength,
	}
	if err := service.cycles.Create(&cycle); err != nil {
		return models.MenstrualCycle{}, fmt.Errorf("%w: create cycle: %w", ErrStore, err)
	}
	return cycle, nil
}

func (service *CycleService) LatestCycle(userID uint) (models.MenstrualCycle, error) {
	cycle, found, err := service.cycles.FindLatestByUser(userID)
	if err != nil {
		return models.MenstrualCycle{}, fmt.Errorf("%w: load cycle: %w", ErrStore, err)
	}
	if !found {
		return models.MenstrualCycle{}, ErrNoActiveCycle
	}
	return cycle, nil
}

// DeleteCycle removes a cycle and hard-deletes the pill entries derived from it.
func (service *CycleService) DeleteCycle(userID uint, cycleID uint) (int64, error) {
	_, found, err := service.cycles.FindByUserAndID(userID, cycleID)
	if err != nil {
		return 0, fmt.Errorf("%w: load cycle: %w", ErrStore, err)
	}
	if !found {
		return 0, ErrCycleNotFound
	}
	deleted, err := service.cycles.DeleteWithSchedules(userID, cycleID)
	if err != nil {
		return 0, fmt.Errorf("%w: delete cycle: %w", ErrStore, err)
	}
	return deleted, nil
}
