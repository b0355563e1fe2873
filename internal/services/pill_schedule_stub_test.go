package services

import (
	"context"
	"sort"
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
)

type pillScheduleRepositoryStub struct {
	entries   []models.PillScheduleEntry
	nextID    uint
	findErr   error
	createErr error
	updateErr error
	deleteErr error
	updates   []map[string]any
}

func newPillScheduleRepositoryStub() *pillScheduleRepositoryStub {
	return &pillScheduleRepositoryStub{nextID: 1}
}

func (stub *pillScheduleRepositoryStub) CreateBatch(entries []models.PillScheduleEntry) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	for index := range entries {
		entries[index].ID = stub.nextID
		stub.nextID++
		stub.entries = append(stub.entries, entries[index])
	}
	return nil
}

func (stub *pillScheduleRepositoryStub) Find(filter models.PillScheduleFilter, order models.PillScheduleOrder, limit int) ([]models.PillScheduleEntry, error) {
	if stub.findErr != nil {
		return nil, stub.findErr
	}
	matched := make([]models.PillScheduleEntry, 0)
	for _, entry := range stub.entries {
		if filter.Matches(entry) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		switch order {
		case models.OrderByPillNumberDesc:
			return matched[i].PillNumber > matched[j].PillNumber
		case models.OrderByDateAsc:
			return matched[i].PillStartDate.Before(matched[j].PillStartDate)
		case models.OrderByDateDesc:
			return matched[i].PillStartDate.After(matched[j].PillStartDate)
		default:
			return matched[i].PillNumber < matched[j].PillNumber
		}
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (stub *pillScheduleRepositoryStub) FindOne(filter models.PillScheduleFilter, order models.PillScheduleOrder) (models.PillScheduleEntry, bool, error) {
	entries, err := stub.Find(filter, order, 1)
	if err != nil || len(entries) == 0 {
		return models.PillScheduleEntry{}, false, err
	}
	return entries[0], true, nil
}

func (stub *pillScheduleRepositoryStub) UpdateMany(filter models.PillScheduleFilter, updates map[string]any) (int64, error) {
	if stub.updateErr != nil {
		return 0, stub.updateErr
	}
	stub.updates = append(stub.updates, updates)

	var affected int64
	for index := range stub.entries {
		if !filter.Matches(stub.entries[index]) {
			continue
		}
		applyPillScheduleUpdates(&stub.entries[index], updates)
		affected++
	}
	return affected, nil
}

func (stub *pillScheduleRepositoryStub) DeleteMany(filter models.PillScheduleFilter) (int64, error) {
	if stub.deleteErr != nil {
		return 0, stub.deleteErr
	}
	kept := make([]models.PillScheduleEntry, 0, len(stub.entries))
	var deleted int64
	for _, entry := range stub.entries {
		if filter.Matches(entry) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	stub.entries = kept
	return deleted, nil
}

func (stub *pillScheduleRepositoryStub) byUser(userID uint) []models.PillScheduleEntry {
	entries, _ := stub.Find(models.PillScheduleFilter{UserID: models.UintPtr(userID)}, models.OrderByPillNumberAsc, 0)
	return entries
}

func applyPillScheduleUpdates(entry *models.PillScheduleEntry, updates map[string]any) {
	for column, value := range updates {
		switch column {
		case "is_taken":
			entry.IsTaken = value.(bool)
		case "taken_at":
			if takenAt, ok := value.(time.Time); ok {
				entry.TakenAt = &takenAt
			} else {
				entry.TakenAt = nil
			}
		case "is_active":
			entry.IsActive = value.(bool)
		case "reminder_enabled":
			entry.ReminderEnabled = value.(bool)
		case "reminder_time":
			entry.ReminderTime = value.(string)
		case "regimen_type":
			entry.RegimenType = value.(string)
		case "pill_kind":
			entry.PillKind = value.(string)
		}
	}
}

type cycleResolverStub struct {
	cycle models.MenstrualCycle
	found bool
	err   error
}

func (stub cycleResolverStub) FindLatestByUser(uint) (models.MenstrualCycle, bool, error) {
	return stub.cycle, stub.found, stub.err
}

type reminderUserRepositoryStub struct {
	users map[uint]models.User
	err   error
}

func (stub reminderUserRepositoryStub) FindOptionalByID(userID uint) (models.User, bool, error) {
	if stub.err != nil {
		return models.User{}, false, stub.err
	}
	user, ok := stub.users[userID]
	return user, ok, nil
}

type recordingDispatcher struct {
	sent []PillReminder
	err  error
}

func (dispatcher *recordingDispatcher) SendPillReminder(_ context.Context, reminder PillReminder) error {
	if dispatcher.err != nil {
		return dispatcher.err
	}
	dispatcher.sent = append(dispatcher.sent, reminder)
	return nil
}

func fixedClock(value time.Time) func() time.Time {
	return func() time.Time { return value }
}

func mustDate(t interface{ Fatalf(string, ...any) }, raw string, location *time.Location) time.Time {
	parsed, err := time.ParseInLocation("2006-01-02", raw, location)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return parsed
}
