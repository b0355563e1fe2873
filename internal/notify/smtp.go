package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/pilltrack/internal/config"
	"github.com/terraincognita07/pilltrack/internal/services"
)

type sendMailFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// MailDispatcher delivers pill reminders as HTML mail.
type MailDispatcher struct {
	settings config.SMTPConfig
	branding Branding
	sendMail sendMailFunc
	now      func() time.Time
}

func NewMailDispatcher(settings config.SMTPConfig, branding Branding) *MailDispatcher {
	return &MailDispatcher{
		settings: settings,
		branding: branding,
		sendMail: smtp.SendMail,
		now:      time.Now,
	}
}

func (dispatcher *MailDispatcher) SendPillReminder(ctx context.Context, reminder services.PillReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipient := strings.TrimSpace(reminder.Email)
	if recipient == "" {
		return fmt.Errorf("mail reminder: user has no email address")
	}

	body, err := renderReminderHTML(dispatcher.branding, reminder)
	if err != nil {
		return err
	}
	message := dispatcher.buildMessage(recipient, reminderSubject(dispatcher.branding, reminder), body)

	var auth smtp.Auth
	if dispatcher.settings.Username != "" {
		auth = smtp.PlainAuth("", dispatcher.settings.Username, dispatcher.settings.Password, dispatcher.settings.Host)
	}
	addr := net.JoinHostPort(dispatcher.settings.Host, strconv.Itoa(dispatcher.settings.Port))
	if err := dispatcher.sendMail(addr, auth, dispatcher.settings.From, []string{recipient}, message); err != nil {
		return fmt.Errorf("mail reminder to %s: %w", recipient, err)
	}
	return nil
}

func (dispatcher *MailDispatcher) buildMessage(recipient string, subject string, htmlBody string) []byte {
	var builder strings.Builder
	headers := [][2]string{
		{"From", dispatcher.settings.From},
		{"To", recipient},
		{"Subject", subject},
		{"Date", dispatcher.now().Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), dispatcher.settings.Host)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}
	for _, header := range headers {
		builder.WriteString(header[0])
		builder.WriteString(": ")
		builder.WriteString(header[1])
		builder.WriteString("\r\n")
	}
	builder.WriteString("\r\n")
	builder.WriteString(strings.ReplaceAll(htmlBody, "\n", "\r\n"))
	return []byte(builder.String())
}
