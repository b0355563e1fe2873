package notify

import (
	"context"
	"errors"
	"log"

	"github.com/terraincognita07/pilltrack/internal/config"
	"github.com/terraincognita07/pilltrack/internal/services"
)

// LogDispatcher only writes reminders to the process log.
type LogDispatcher struct {
	branding Branding
}

func NewLogDispatcher(branding Branding) *LogDispatcher {
	return &LogDispatcher{branding: branding}
}

func (dispatcher *LogDispatcher) SendPillReminder(_ context.Context, reminder services.PillReminder) error {
	log.Printf("notify: %s <%s>", renderReminderText(dispatcher.branding, reminder), reminder.Email)
	return nil
}

// Fanout sends each reminder through every channel and reports all failures.
type Fanout []services.ReminderDispatcher

func (channels Fanout) SendPillReminder(ctx context.Context, reminder services.PillReminder) error {
	var errs []error
	for _, channel := range channels {
		if err := channel.SendPillReminder(ctx, reminder); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FromConfig wires every configured channel. Without any, reminders go to the log.
func FromConfig(cfg *config.Config) services.ReminderDispatcher {
	branding := Branding{AppName: cfg.AppName, AppURL: cfg.AppURL}

	channels := make(Fanout, 0, 2)
	if cfg.SMTP.Enabled() {
		channels = append(channels, NewMailDispatcher(cfg.SMTP, branding))
	}
	if cfg.Telegram.Enabled() {
		telegram, err := NewTelegramDispatcher(cfg.Telegram, branding)
		if err != nil {
			log.Printf("notify: telegram disabled: %v", err)
		} else {
			channels = append(channels, telegram)
		}
	}

	switch len(channels) {
	case 0:
		log.Printf("notify: no delivery channel configured, reminders are logged only")
		return NewLogDispatcher(branding)
	case 1:
		return channels[0]
	default:
		return channels
	}
}
