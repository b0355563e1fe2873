package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/terraincognita07/pilltrack/internal/services"
)

// Branding is shared by every channel that renders reminder text.
type Branding struct {
	AppName string
	AppURL  string
}

var reminderMailTemplate = template.Must(template.New("pill_reminder").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #2d2d2d;">
  <p>Hi {{.Name}},</p>
  <p>It is {{.ReminderTime}}, time to take pill <strong>#{{.PillNumber}}</strong> of your {{.RegimenType}} pack.</p>
  {{if .AppURL}}<p><a href="{{.AppURL}}">Open {{.AppName}}</a> to mark it as taken.</p>{{end}}
  <p style="color: #888;">{{.AppName}}</p>
</body>
</html>`))

type reminderView struct {
	Name         string
	PillNumber   int
	RegimenType  string
	ReminderTime string
	AppName      string
	AppURL       string
}

func newReminderView(branding Branding, reminder services.PillReminder) reminderView {
	name := strings.TrimSpace(reminder.FullName)
	if name == "" {
		name = reminder.Email
	}
	return reminderView{
		Name:         name,
		PillNumber:   reminder.PillNumber,
		RegimenType:  reminder.RegimenType,
		ReminderTime: reminder.ReminderTime,
		AppName:      branding.AppName,
		AppURL:       branding.AppURL,
	}
}

func reminderSubject(branding Branding, reminder services.PillReminder) string {
	return fmt.Sprintf("%s: time for pill #%d", branding.AppName, reminder.PillNumber)
}

func renderReminderHTML(branding Branding, reminder services.PillReminder) (string, error) {
	var body bytes.Buffer
	if err := reminderMailTemplate.Execute(&body, newReminderView(branding, reminder)); err != nil {
		return "", fmt.Errorf("render reminder mail: %w", err)
	}
	return body.String(), nil
}

func renderReminderText(branding Branding, reminder services.PillReminder) string {
	view := newReminderView(branding, reminder)
	text := fmt.Sprintf("%s reminder for %s: take pill #%d of your %s pack (%s).",
		view.AppName, view.Name, view.PillNumber, view.RegimenType, view.ReminderTime)
	if view.AppURL != "" {
		text += "\n" + view.AppURL
	}
	return text
}
