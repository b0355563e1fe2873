package services

import "errors"

var (
	ErrValidation             = errors.New("validation error")
	ErrNoActiveCycle          = errors.New("no active cycle found for user")
	ErrInvalidTransition      = errors.New("invalid pill type transition")
	ErrUnsupportedTransition  = errors.New("unsupported pill type transition")
	ErrTransitionWindowClosed = errors.New("pill type transition window closed")
	ErrNothingToUpdate        = errors.New("nothing to update")
	ErrStore                  = errors.New("pill schedule store failed")

	ErrNoActiveSchedule = errors.New("no active pill schedule found for this user")
	ErrScheduleNotFound = errors.New("no pill tracking schedule found for this user")
	ErrEntryNotFound    = errors.New("pill schedule entry not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrCycleNotFound    = errors.New("cycle not found")
)
