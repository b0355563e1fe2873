package services

import (
	"fmt"
	"log"

	"github.com/terraincognita07/pilltrack/internal/models"
)

const (
	lastSharedHormoneDay = 21
	fullRegimenLength    = 28
)

type regimenTransition struct {
	from Regimen
	to   Regimen
}

type SwitchStep struct {
	Name     string
	Affected int64
}

// SwitchResult describes what a regimen switch applied. Steps holds every
// store operation that completed, including those before a failing step;
// nothing is rolled back.
type SwitchResult struct {
	From              string
	To                string
	CurrentPillNumber int
	Created           []models.PillScheduleEntry
	Steps             []SwitchStep
}

func (service *PillScheduleService) SwitchRegimen(userID uint, target string) (SwitchResult, error) {
	active, err := service.activeEntries(userID)
	if err != nil {
		return SwitchResult{}, err
	}
	if len(active) == 0 {
		return SwitchResult{}, ErrNoActiveSchedule
	}
	return service.switchRegimen(userID, active, target)
}

func (service *PillScheduleService) switchRegimen(userID uint, active []models.PillScheduleEntry, target string) (SwitchResult, error) {
	first := active[0]
	switcher := &regimenSwitcher{
		service: service,
		userID:  userID,
		active:  active,
		first:   first,
		result: SwitchResult{
			From:              first.RegimenType,
			To:                target,
			CurrentPillNumber: service.CurrentPillNumber(first),
		},
	}

	from, fromOK := ParseRegimen(first.RegimenType)
	to, toOK := ParseRegimen(target)
	if !fromOK || !toOK {
		return switcher.result, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, first.RegimenType, target)
	}

	var err error
	switch (regimenTransition{from: from, to: to}) {
	case regimenTransition{from: Regimen21Day, to: Regimen21Plus7}:
		err = switcher.addPlaceboWeek()
	case regimenTransition{from: Regimen21Day, to: Regimen24Plus4}:
		err = switcher.extendTo24Plus4()
	case regimenTransition{from: Regimen24Plus4, to: Regimen21Day}:
		err = switcher.truncateTo21Day(true)
	case regimenTransition{from: Regimen24Plus4, to: Regimen21Plus7}:
		err = switcher.convertTailToPlacebo()
	case regimenTransition{from: Regimen21Plus7, to: Regimen21Day}:
		err = switcher.truncateTo21Day(false)
	case regimenTransition{from: Regimen21Plus7, to: Regimen24Plus4}:
		err = fmt.Errorf("%w: cannot change from 21+7 to 24+4", ErrUnsupportedTransition)
	default:
		err = fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}
	return switcher.result, err
}

type regimenSwitcher struct {
	service *PillScheduleService
	userID  uint
	active  []models.PillScheduleEntry
	first   models.PillScheduleEntry
	result  SwitchResult
}

func (switcher *regimenSwitcher) activeFilter() models.PillScheduleFilter {
	return models.PillScheduleFilter{
		UserID:   models.UintPtr(switcher.userID),
		IsActive: models.BoolPtr(true),
	}
}

func (switcher *regimenSwitcher) trailingFilter() models.PillScheduleFilter {
	filter := switcher.activeFilter()
	filter.MinPillNumber = lastSharedHormoneDay + 1
	return filter
}

func (switcher *regimenSwitcher) guardWindow() error {
	if switcher.result.CurrentPillNumber > lastSharedHormoneDay {
		return fmt.Errorf("%w: already past day %d (today is day %d)",
			ErrTransitionWindowClosed, lastSharedHormoneDay, switcher.result.CurrentPillNumber)
	}
	return nil
}

func (switcher *regimenSwitcher) update(step string, filter models.PillScheduleFilter, updates map[string]any) error {
	affected, err := switcher.service.schedules.UpdateMany(filter, updates)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStore, step, err)
	}
	switcher.result.Steps = append(switcher.result.Steps, SwitchStep{Name: step, Affected: affected})
	if affected == 0 {
		return fmt.Errorf("%w: %s changed no entries", ErrNothingToUpdate, step)
	}
	return nil
}

func (switcher *regimenSwitcher) setRegimen(regimen Regimen) error {
	return switcher.update("update regimen type", switcher.activeFilter(), map[string]any{
		"regimen_type": regimen.String(),
	})
}

// dropVoidedTail hard-deletes voided days from fromPillNumber on so that
// re-created days keep pill numbers unique within the cycle. Voided days below
// fromPillNumber are history and stay.
func (switcher *regimenSwitcher) dropVoidedTail(fromPillNumber int) error {
	deleted, err := switcher.service.schedules.DeleteMany(models.PillScheduleFilter{
		UserID:        models.UintPtr(switcher.userID),
		CycleID:       models.UintPtr(switcher.first.CycleID),
		IsActive:      models.BoolPtr(false),
		MinPillNumber: max(fromPillNumber, lastSharedHormoneDay+1),
	})
	if err != nil {
		return fmt.Errorf("%w: delete voided trailing days: %w", ErrStore, err)
	}
	switcher.result.Steps = append(switcher.result.Steps, SwitchStep{Name: "delete voided trailing days", Affected: deleted})
	return nil
}

func (switcher *regimenSwitcher) create(entries []models.PillScheduleEntry) error {
	if err := switcher.service.schedules.CreateBatch(entries); err != nil {
		return fmt.Errorf("%w: create trailing days: %w", ErrStore, err)
	}
	switcher.result.Created = append(switcher.result.Created, entries...)
	switcher.result.Steps = append(switcher.result.Steps, SwitchStep{Name: "create trailing days", Affected: int64(len(entries))})
	return nil
}

// trailingDays builds pill numbers 22..28 under regimen, dated by extrapolating
// from anchor. Days for which include returns false are skipped.
func (switcher *regimenSwitcher) trailingDays(regimen Regimen, anchor models.PillScheduleEntry, include func(pillNumber int) bool) []models.PillScheduleEntry {
	config, _ := LookupRegimen(regimen)
	location := switcher.service.location
	anchorDay := DateAtLocation(anchor.PillStartDate, location)

	entries := make([]models.PillScheduleEntry, 0, fullRegimenLength-lastSharedHormoneDay)
	for pillNumber := lastSharedHormoneDay + 1; pillNumber <= fullRegimenLength; pillNumber++ {
		if include != nil && !include(pillNumber) {
			continue
		}
		entries = append(entries, models.PillScheduleEntry{
			UserID:          switcher.userID,
			CycleID:         switcher.first.CycleID,
			PillStartDate:   anchorDay.AddDate(0, 0, pillNumber-anchor.PillNumber),
			PillNumber:      pillNumber,
			RegimenType:     regimen.String(),
			PillKind:        config.PillKindFor(pillNumber),
			IsActive:        true,
			ReminderEnabled: switcher.first.ReminderEnabled,
			ReminderTime:    switcher.first.ReminderTime,
		})
	}
	return entries
}

func (switcher *regimenSwitcher) entryByPillNumber(pillNumber int) (models.PillScheduleEntry, bool) {
	for _, entry := range switcher.active {
		if entry.PillNumber == pillNumber {
			return entry, true
		}
	}
	return models.PillScheduleEntry{}, false
}

func (switcher *regimenSwitcher) lastEntry() models.PillScheduleEntry {
	last := switcher.active[0]
	for _, entry := range switcher.active[1:] {
		if entry.PillNumber > last.PillNumber {
			last = entry
		}
	}
	return last
}

// 21-day -> 21+7: placebo days 22..28 that are still ahead of today.
func (switcher *regimenSwitcher) addPlaceboWeek() error {
	if err := switcher.setRegimen(Regimen21Plus7); err != nil {
		return err
	}

	current := switcher.result.CurrentPillNumber
	entries := switcher.trailingDays(Regimen21Plus7, switcher.first, func(pillNumber int) bool {
		return pillNumber > current
	})
	if len(entries) == 0 {
		return fmt.Errorf("%w: no placebo days left to add on day %d", ErrNothingToUpdate, current)
	}
	if err := switcher.dropVoidedTail(current + 1); err != nil {
		return err
	}
	return switcher.create(entries)
}

// 21-day -> 24+4: append days 22..28 (three hormone, four placebo).
func (switcher *regimenSwitcher) extendTo24Plus4() error {
	current := switcher.result.CurrentPillNumber

	var anchor models.PillScheduleEntry
	anchored := true
	switch {
	case current == lastSharedHormoneDay:
		anchor = switcher.lastEntry()
	case current < lastSharedHormoneDay:
		entry, found := switcher.entryByPillNumber(current)
		if !found {
			entry = switcher.first
		}
		anchor = entry
	default:
		anchored = false
		log.Printf("pill schedule: 21-day to 24+4 for user %d on day %d appends no days", switcher.userID, current)
	}

	if anchored {
		if err := switcher.dropVoidedTail(lastSharedHormoneDay + 1); err != nil {
			return err
		}
		if err := switcher.create(switcher.trailingDays(Regimen24Plus4, anchor, nil)); err != nil {
			return err
		}
	}
	return switcher.setRegimen(Regimen24Plus4)
}

// 24+4 or 21+7 -> 21-day: void days after 21.
func (switcher *regimenSwitcher) truncateTo21Day(guarded bool) error {
	if guarded {
		if err := switcher.guardWindow(); err != nil {
			return err
		}
	}
	if err := switcher.update("deactivate trailing days", switcher.trailingFilter(), map[string]any{
		"is_active": false,
	}); err != nil {
		return err
	}
	return switcher.setRegimen(Regimen21Day)
}

// 24+4 -> 21+7: days 22..28 become placebo.
func (switcher *regimenSwitcher) convertTailToPlacebo() error {
	if err := switcher.guardWindow(); err != nil {
		return err
	}
	filter := switcher.trailingFilter()
	filter.MaxPillNumber = fullRegimenLength
	if err := switcher.update("convert trailing days to placebo", filter, map[string]any{
		"pill_kind": models.PillKindPlacebo,
	}); err != nil {
		return err
	}
	return switcher.setRegimen(Regimen21Plus7)
}

func (result SwitchResult) AppliedSteps() int {
	applied := 0
	for _, step := range result.Steps {
		if step.Affected > 0 {
			applied++
		}
	}
	return applied
}
