package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
)

type SchedulePeriod struct {
	From    time.Time
	To      time.Time
	Entries []models.PillScheduleEntry
}

// ListSchedule returns the user's entries ordered by date, bounded by the
// optional inclusive from/to calendar dates.
func (service *PillScheduleService) ListSchedule(userID uint, rawFrom string, rawTo string) ([]models.PillScheduleEntry, error) {
	filter := models.PillScheduleFilter{UserID: models.UintPtr(userID)}
	if strings.TrimSpace(rawFrom) != "" {
		from, err := ParseCalendarDate(rawFrom, service.location)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid startDate format", ErrValidation)
		}
		filter.DateFrom = &from
	}
	if strings.TrimSpace(rawTo) != "" {
		to, err := ParseCalendarDate(rawTo, service.location)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid endDate format", ErrValidation)
		}
		_, toEnd := DayRange(to, service.location)
		filter.DateBefore = &toEnd
	}

	entries, err := service.schedules.Find(filter, models.OrderByDateAsc, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: load schedule: %w", ErrStore, err)
	}
	if len(entries) == 0 {
		return nil, ErrScheduleNotFound
	}
	return entries, nil
}

func (service *PillScheduleService) WeeklySchedule(userID uint, rawStart string) (SchedulePeriod, error) {
	start, err := service.periodAnchor(rawStart)
	if err != nil {
		return SchedulePeriod{}, err
	}
	return service.schedulePeriod(userID, start, start.AddDate(0, 0, 7))
}

func (service *PillScheduleService) MonthlySchedule(userID uint, rawStart string) (SchedulePeriod, error) {
	anchor, err := service.periodAnchor(rawStart)
	if err != nil {
		return SchedulePeriod{}, err
	}
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, service.location)
	return service.schedulePeriod(userID, start, start.AddDate(0, 1, 0))
}

func (service *PillScheduleService) periodAnchor(rawStart string) (time.Time, error) {
	if strings.TrimSpace(rawStart) == "" {
		return service.today(), nil
	}
	start, err := ParseCalendarDate(rawStart, service.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid start_date format", ErrValidation)
	}
	return start, nil
}

func (service *PillScheduleService) schedulePeriod(userID uint, from time.Time, before time.Time) (SchedulePeriod, error) {
	entries, err := service.schedules.Find(models.PillScheduleFilter{
		UserID:     models.UintPtr(userID),
		IsActive:   models.BoolPtr(true),
		DateFrom:   &from,
		DateBefore: &before,
	}, models.OrderByDateAsc, 0)
	if err != nil {
		return SchedulePeriod{}, fmt.Errorf("%w: load schedule period: %w", ErrStore, err)
	}
	return SchedulePeriod{
		From:    from,
		To:      before.AddDate(0, 0, -1),
		Entries: entries,
	}, nil
}

type PillStatistics struct {
	TotalPills    int
	TakenPills    int
	MissedPills   int
	UpcomingPills int
	HormonePills  int
	PlaceboPills  int
	AdherenceRate float64
	CurrentStreak int
	RegimenType   string
}

func (service *PillScheduleService) Statistics(userID uint) (PillStatistics, error) {
	entries, err := service.schedules.Find(models.PillScheduleFilter{
		UserID:   models.UintPtr(userID),
		IsActive: models.BoolPtr(true),
	}, models.OrderByDateAsc, 0)
	if err != nil {
		return PillStatistics{}, fmt.Errorf("%w: load statistics: %w", ErrStore, err)
	}
	if len(entries) == 0 {
		return PillStatistics{}, ErrScheduleNotFound
	}
	return BuildPillStatistics(entries, service.now(), service.location), nil
}

// BuildPillStatistics expects entries ordered by date ascending.
func BuildPillStatistics(entries []models.PillScheduleEntry, now time.Time, location *time.Location) PillStatistics {
	today := DateAtLocation(now, location)
	stats := PillStatistics{TotalPills: len(entries)}
	if len(entries) > 0 {
		stats.RegimenType = entries[0].RegimenType
	}

	for _, entry := range entries {
		day := DateAtLocation(entry.PillStartDate, location)
		switch {
		case entry.IsTaken:
			stats.TakenPills++
		case day.Before(today):
			stats.MissedPills++
		default:
			stats.UpcomingPills++
		}
		if entry.PillKind == models.PillKindPlacebo {
			stats.PlaceboPills++
		} else {
			stats.HormonePills++
		}
	}

	if due := stats.TakenPills + stats.MissedPills; due > 0 {
		stats.AdherenceRate = math.Round(float64(stats.TakenPills)/float64(due)*1000) / 10
	}

	for index := len(entries) - 1; index >= 0; index-- {
		entry := entries[index]
		day := DateAtLocation(entry.PillStartDate, location)
		if day.After(today) {
			continue
		}
		if !entry.IsTaken {
			// today's pill may still be taken later
			if day.Equal(today) {
				continue
			}
			break
		}
		stats.CurrentStreak++
	}
	return stats
}
