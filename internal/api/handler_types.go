package api

import (
	"time"

	"github.com/terraincognita07/pilltrack/internal/db"
	"github.com/terraincognita07/pilltrack/internal/services"
)

type Handler struct {
	secretKey       []byte
	location        *time.Location
	now             func() time.Time
	repositories    *db.Repositories
	pillSchedules   *services.PillScheduleService
	cycles          *services.CycleService
	reminders       *services.ReminderScanner
	reminderLimiter *attemptLimiter
}

type HandlerOptions struct {
	SecretKey        string
	Location         *time.Location
	Dispatcher       services.ReminderDispatcher
	ReminderInterval time.Duration
}
