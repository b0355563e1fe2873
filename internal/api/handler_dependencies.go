package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/services"
	"gorm.io/gorm"
)

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if strings.TrimSpace(options.SecretKey) == "" {
		return nil, errors.New("secret key is required")
	}
	if options.Dispatcher == nil {
		return nil, errors.New("reminder dispatcher is required")
	}
	location := options.Location
	if location == nil {
		location = time.UTC
	}

	handler := &Handler{
		secretKey:       []byte(options.SecretKey),
		location:        location,
		now:             time.Now,
		reminderLimiter: newAttemptLimiter(),
	}
	return handler.withDependencies(database, options), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, options HandlerOptions) *Handler {
	handler.repositories = db.NewRepositories(database)
	handler.pillSchedules = services.NewPillScheduleService(handler.repositories.PillSchedules, handler.repositories.Cycles, handler.location)
	handler.cycles = services.NewCycleService(handler.repositories.Cycles, handler.location)
	handler.reminders = services.NewReminderScanner(
		handler.repositories.PillSchedules,
		handler.repositories.Users,
		options.Dispatcher,
		handler.location,
		options.ReminderInterval,
	)
	return handler
}

// withClock pins every time-dependent component to now.
func (handler *Handler) withClock(now func() time.Time) *Handler {
	handler.now = now
	handler.pillSchedules.WithClock(now)
	handler.reminders.WithClock(now)
	return handler
}

// ReminderScanner exposes the scanner so the process can own its lifecycle.
func (handler *Handler) ReminderScanner() *services.ReminderScanner {
	return handler.reminders
}
