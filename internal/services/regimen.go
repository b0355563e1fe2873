package services

import (
	"strings"

	"github.com/terraincognita07/pilltrack/internal/models"
)

type Regimen string

const (
	Regimen21Day   Regimen = "21-day"
	Regimen24Plus4 Regimen = "24+4"
	Regimen21Plus7 Regimen = "21+7"
)

type RegimenConfig struct {
	TotalDays   int
	HormoneDays int
}

var regimenConfigs = map[Regimen]RegimenConfig{
	Regimen21Day:   {TotalDays: 21, HormoneDays: 21},
	Regimen24Plus4: {TotalDays: 28, HormoneDays: 24},
	Regimen21Plus7: {TotalDays: 28, HormoneDays: 21},
}

// ParseRegimen accepts the three regimen names exactly; case is significant.
func ParseRegimen(raw string) (Regimen, bool) {
	regimen := Regimen(strings.TrimSpace(raw))
	if _, ok := regimenConfigs[regimen]; !ok {
		return "", false
	}
	return regimen, true
}

func LookupRegimen(regimen Regimen) (RegimenConfig, bool) {
	config, ok := regimenConfigs[regimen]
	return config, ok
}

func (regimen Regimen) String() string {
	return string(regimen)
}

// PillKindFor returns the kind of the 1-based pill position under this regimen.
func (config RegimenConfig) PillKindFor(pillNumber int) string {
	if pillNumber <= config.HormoneDays {
		return models.PillKindHormone
	}
	return models.PillKindPlacebo
}

// ReminderMaxDay is the largest day offset after a pill date at which a reminder is still sent.
func ReminderMaxDay(regimenType string) int {
	if regimenType == string(Regimen21Plus7) {
		return 27
	}
	return 20
}
