package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/pilltrack/internal/models"
)

const DefaultReminderInterval = time.Minute

type PillReminder struct {
	Email        string
	FullName     string
	PillNumber   int
	RegimenType  string
	ReminderTime string
}

type ReminderDispatcher interface {
	SendPillReminder(ctx context.Context, reminder PillReminder) error
}

type ReminderUserRepository interface {
	FindOptionalByID(userID uint) (models.User, bool, error)
}

type ReminderScanReport struct {
	RunID      string
	Candidates int
	Users      int
	Due        int
	Sent       int
	Skipped    int
	Failed     int
}

type ReminderScanner struct {
	schedules  PillScheduleRepository
	users      ReminderUserRepository
	dispatcher ReminderDispatcher
	location   *time.Location
	interval   time.Duration
	now        func() time.Time

	mu      sync.Mutex
	running *ReminderScannerHandle
}

func NewReminderScanner(schedules PillScheduleRepository, users ReminderUserRepository, dispatcher ReminderDispatcher, location *time.Location, interval time.Duration) *ReminderScanner {
	if location == nil {
		location = time.UTC
	}
	if interval <= 0 {
		interval = DefaultReminderInterval
	}
	return &ReminderScanner{
		schedules:  schedules,
		users:      users,
		dispatcher: dispatcher,
		location:   location,
		interval:   interval,
		now:        time.Now,
	}
}

func (scanner *ReminderScanner) WithClock(now func() time.Time) *ReminderScanner {
	if now != nil {
		scanner.now = now
	}
	return scanner
}

// ReminderScannerHandle owns one running scan loop.
type ReminderScannerHandle struct {
	scanner *ReminderScanner
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Start launches the periodic scan. While a loop is running, further calls
// return the existing handle instead of starting a second one.
func (scanner *ReminderScanner) Start(ctx context.Context) *ReminderScannerHandle {
	scanner.mu.Lock()
	defer scanner.mu.Unlock()

	if scanner.running != nil {
		log.Printf("pill reminders: scanner already running")
		return scanner.running
	}

	handle := &ReminderScannerHandle{
		scanner: scanner,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	scanner.running = handle

	go handle.loop(ctx)
	log.Printf("pill reminders: scanner started (every %s, tz %s)", scanner.interval, scanner.location)
	return handle
}

func (scanner *ReminderScanner) IsRunning() bool {
	scanner.mu.Lock()
	defer scanner.mu.Unlock()
	return scanner.running != nil
}

func (handle *ReminderScannerHandle) loop(ctx context.Context) {
	defer close(handle.done)
	defer handle.release()

	ticker := time.NewTicker(handle.scanner.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-handle.stop:
			return
		case <-ticker.C:
			handle.scanner.runTick(ctx)
		}
	}
}

func (handle *ReminderScannerHandle) release() {
	handle.scanner.mu.Lock()
	defer handle.scanner.mu.Unlock()
	if handle.scanner.running == handle {
		handle.scanner.running = nil
	}
}

// Stop prevents further ticks and waits for an in-flight tick to finish its pass.
func (handle *ReminderScannerHandle) Stop() {
	handle.once.Do(func() {
		close(handle.stop)
	})
	<-handle.done
	log.Printf("pill reminders: scanner stopped")
}

func (handle *ReminderScannerHandle) Done() <-chan struct{} {
	return handle.done
}

func (scanner *ReminderScanner) runTick(ctx context.Context) {
	defer func() {
		if recovered := recover(); recovered != nil {
			log.Printf("pill reminders: tick panicked: %v", recovered)
		}
	}()

	report, err := scanner.ScanOnce(ctx)
	if err != nil {
		log.Printf("pill reminders: run %s failed: %v", report.RunID, err)
		return
	}
	if report.Sent > 0 || report.Failed > 0 {
		log.Printf("pill reminders: run %s sent %d/%d reminders", report.RunID, report.Sent, report.Due)
	}
}

// ScanOnce performs a single reminder pass against the current wall clock.
func (scanner *ReminderScanner) ScanOnce(ctx context.Context) (ReminderScanReport, error) {
	report := ReminderScanReport{RunID: uuid.NewString()}
	now := scanner.now().In(scanner.location)
	today, tomorrow := DayRange(now, scanner.location)

	candidates, err := scanner.schedules.Find(models.PillScheduleFilter{
		IsTaken:         models.BoolPtr(false),
		ReminderEnabled: models.BoolPtr(true),
		DateBefore:      &tomorrow,
	}, models.OrderByDateAsc, 0)
	if err != nil {
		return report, fmt.Errorf("%w: load reminder candidates: %w", ErrStore, err)
	}
	report.Candidates = len(candidates)

	latest := LatestEntryPerUser(candidates)
	report.Users = len(latest)

	for _, entry := range latest {
		if !scanner.reminderDue(entry, now, today) {
			continue
		}
		report.Due++

		sent, err := scanner.remind(ctx, entry)
		switch {
		case err != nil:
			report.Failed++
			log.Printf("pill reminders: run %s entry %d for user %d: %v", report.RunID, entry.ID, entry.UserID, err)
		case sent:
			report.Sent++
		default:
			report.Skipped++
		}
	}
	return report, nil
}

// LatestEntryPerUser keeps, for each user, the entry with the latest date.
// On equal dates the entry seen first wins. Output follows first-seen user order.
func LatestEntryPerUser(entries []models.PillScheduleEntry) []models.PillScheduleEntry {
	positions := make(map[uint]int, len(entries))
	latest := make([]models.PillScheduleEntry, 0)
	for _, entry := range entries {
		position, seen := positions[entry.UserID]
		if !seen {
			positions[entry.UserID] = len(latest)
			latest = append(latest, entry)
			continue
		}
		if entry.PillStartDate.After(latest[position].PillStartDate) {
			latest[position] = entry
		}
	}
	return latest
}

func (scanner *ReminderScanner) reminderDue(entry models.PillScheduleEntry, now time.Time, today time.Time) bool {
	if !entry.ReminderEnabled {
		return false
	}
	hour, minute, err := ParseClock(entry.ReminderTime)
	if err != nil {
		log.Printf("pill reminders: entry %d has unusable reminder time %q", entry.ID, entry.ReminderTime)
		return false
	}
	if now.Hour() != hour || now.Minute() != minute {
		return false
	}

	diffInDays := DaysBetween(entry.PillStartDate, today, scanner.location)
	return diffInDays >= 0 && diffInDays <= ReminderMaxDay(entry.RegimenType)
}

func (scanner *ReminderScanner) remind(ctx context.Context, entry models.PillScheduleEntry) (bool, error) {
	user, found, err := scanner.users.FindOptionalByID(entry.UserID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return false, nil
	}
	if err := scanner.dispatcher.SendPillReminder(ctx, reminderFor(user, entry)); err != nil {
		return false, err
	}
	return true, nil
}

// SendTestReminder dispatches a reminder for the user's first active entry
// immediately, without the time-of-day and day-window checks.
func (scanner *ReminderScanner) SendTestReminder(ctx context.Context, userID uint) (PillReminder, error) {
	user, found, err := scanner.users.FindOptionalByID(userID)
	if err != nil {
		return PillReminder{}, fmt.Errorf("%w: load user: %w", ErrStore, err)
	}
	if !found {
		return PillReminder{}, ErrUserNotFound
	}

	entry, found, err := scanner.schedules.FindOne(models.PillScheduleFilter{
		UserID:   models.UintPtr(userID),
		IsActive: models.BoolPtr(true),
	}, models.OrderByPillNumberAsc)
	if err != nil {
		return PillReminder{}, fmt.Errorf("%w: load schedule: %w", ErrStore, err)
	}
	if !found {
		return PillReminder{}, ErrScheduleNotFound
	}

	reminder := reminderFor(user, entry)
	if err := scanner.dispatcher.SendPillReminder(ctx, reminder); err != nil {
		return PillReminder{}, err
	}
	return reminder, nil
}

func reminderFor(user models.User, entry models.PillScheduleEntry) PillReminder {
	return PillReminder{
		Email:        user.Email,
		FullName:     user.FullName,
		PillNumber:   entry.PillNumber,
		RegimenType:  entry.RegimenType,
		ReminderTime: entry.ReminderTime,
	}
}
