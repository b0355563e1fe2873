package api

import (
	"time"

	"github.com/terraincognita07/pilltrack/internal/models"
	"github.com/terraincognita07/pilltrack/internal/services"
)

const dateLayout = "2006-01-02"

type pillEntryView struct {
	ID              uint    `json:"id"`
	CycleID         uint    `json:"cycle_id"`
	PillStartDate   string  `json:"pill_start_date"`
	PillNumber      int     `json:"pill_number"`
	RegimenType     string  `json:"pill_type"`
	PillKind        string  `json:"pill_status"`
	IsTaken         bool    `json:"is_taken"`
	TakenAt         *string `json:"taken_at,omitempty"`
	IsActive        bool    `json:"is_active"`
	ReminderEnabled bool    `json:"reminder_enabled"`
	ReminderTime    string  `json:"reminder_time"`
}

type setupScheduleView struct {
	Count    int             `json:"count"`
	Replaced bool            `json:"replaced"`
	Entries  []pillEntryView `json:"entries"`
}

type switchStepView struct {
	Name     string `json:"name"`
	Affected int64  `json:"affected"`
}

type switchView struct {
	From              string           `json:"from"`
	To                string           `json:"to"`
	CurrentPillNumber int              `json:"current_pill_number"`
	Created           []pillEntryView  `json:"created"`
	Steps             []switchStepView `json:"steps"`
}

type updateScheduleView struct {
	Switched bool        `json:"switched"`
	Switch   *switchView `json:"switch,omitempty"`
	Updated  int64       `json:"updated"`
}

type schedulePeriodView struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Entries []pillEntryView `json:"entries"`
}

type statisticsView struct {
	TotalPills    int     `json:"total_pills"`
	TakenPills    int     `json:"taken_pills"`
	MissedPills   int     `json:"missed_pills"`
	UpcomingPills int     `json:"upcoming_pills"`
	HormonePills  int     `json:"hormone_pills"`
	PlaceboPills  int     `json:"placebo_pills"`
	AdherenceRate float64 `json:"adherence_rate"`
	CurrentStreak int     `json:"current_streak"`
	PillType      string  `json:"pill_type"`
}

type reminderView struct {
	Email        string `json:"email"`
	PillNumber   int    `json:"pill_number"`
	PillType     string `json:"pill_type"`
	ReminderTime string `json:"reminder_time"`
}

type cycleView struct {
	ID             uint   `json:"id"`
	CycleStartDate string `json:"cycle_start_date"`
	CycleLength    int    `json:"cycle_length"`
}

type deletedView struct {
	Deleted int64 `json:"deleted"`
}

func (handler *Handler) entryView(entry models.PillScheduleEntry) pillEntryView {
	view := pillEntryView{
		ID:              entry.ID,
		CycleID:         entry.CycleID,
		PillStartDate:   entry.PillStartDate.In(handler.location).Format(dateLayout),
		PillNumber:      entry.PillNumber,
		RegimenType:     entry.RegimenType,
		PillKind:        entry.PillKind,
		IsTaken:         entry.IsTaken,
		IsActive:        entry.IsActive,
		ReminderEnabled: entry.ReminderEnabled,
		ReminderTime:    entry.ReminderTime,
	}
	if entry.TakenAt != nil {
		takenAt := entry.TakenAt.In(handler.location).Format(time.RFC3339)
		view.TakenAt = &takenAt
	}
	return view
}

func (handler *Handler) entryViews(entries []models.PillScheduleEntry) []pillEntryView {
	views := make([]pillEntryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, handler.entryView(entry))
	}
	return views
}

func (handler *Handler) switchView(result services.SwitchResult) *switchView {
	steps := make([]switchStepView, 0, len(result.Steps))
	for _, step := range result.Steps {
		steps = append(steps, switchStepView{Name: step.Name, Affected: step.Affected})
	}
	return &switchView{
		From:              result.From,
		To:                result.To,
		CurrentPillNumber: result.CurrentPillNumber,
		Created:           handler.entryViews(result.Created),
		Steps:             steps,
	}
}

func (handler *Handler) periodView(period services.SchedulePeriod) schedulePeriodView {
	return schedulePeriodView{
		From:    period.From.In(handler.location).Format(dateLayout),
		To:      period.To.In(handler.location).Format(dateLayout),
		Entries: handler.entryViews(period.Entries),
	}
}

func newStatisticsView(stats services.PillStatistics) statisticsView {
	return statisticsView{
		TotalPills:    stats.TotalPills,
		TakenPills:    stats.TakenPills,
		MissedPills:   stats.MissedPills,
		UpcomingPills: stats.UpcomingPills,
		HormonePills:  stats.HormonePills,
		PlaceboPills:  stats.PlaceboPills,
		AdherenceRate: stats.AdherenceRate,
		CurrentStreak: stats.CurrentStreak,
		PillType:      stats.RegimenType,
	}
}

func (handler *Handler) cycleView(cycle models.MenstrualCycle) cycleView {
	return cycleView{
		ID:             cycle.ID,
		CycleStartDate: cycle.CycleStartDate.In(handler.location).Format(dateLayout),
		CycleLength:    cycle.CycleLength,
	}
}
