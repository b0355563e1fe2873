package models

import "time"

const (
	PillKindHormone = "hormone"
	PillKindPlacebo = "placebo"
)

// PillScheduleEntry is one calendar day of a contraceptive regimen.
// PillStartDate is the day the entry represents.
type PillScheduleEntry struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"not null;index:idx_pill_schedule_user_pill"`
	CycleID         uint      `gorm:"not null;index"`
	PillStartDate   time.Time `gorm:"not null;index"`
	PillNumber      int       `gorm:"not null;index:idx_pill_schedule_user_pill"`
	RegimenType     string    `gorm:"not null"`
	PillKind        string    `gorm:"not null"`
	IsTaken         bool      `gorm:"not null"`
	TakenAt         *time.Time
	IsActive        bool   `gorm:"not null"`
	ReminderEnabled bool   `gorm:"not null"`
	ReminderTime    string `gorm:"not null"`
	CreatedAt       time.Time
}

func (PillScheduleEntry) TableName() string {
	return "pill_schedules"
}

type PillScheduleOrder int

const (
	OrderByPillNumberAsc PillScheduleOrder = iota
	OrderByPillNumberDesc
	OrderByDateAsc
	OrderByDateDesc
)

// PillScheduleFilter is a conjunction of optional field predicates.
// Nil pointers and zero bounds are not applied. DateFrom is inclusive,
// DateBefore is exclusive; pill number bounds are inclusive.
type PillScheduleFilter struct {
	ID              *uint
	UserID          *uint
	CycleID         *uint
	IsActive        *bool
	IsTaken         *bool
	ReminderEnabled *bool
	MinPillNumber   int
	MaxPillNumber   int
	DateFrom        *time.Time
	DateBefore      *time.Time
}

func (filter PillScheduleFilter) IsEmpty() bool {
	return filter.ID == nil &&
		filter.UserID == nil &&
		filter.CycleID == nil &&
		filter.IsActive == nil &&
		filter.IsTaken == nil &&
		filter.ReminderEnabled == nil &&
		filter.MinPillNumber == 0 &&
		filter.MaxPillNumber == 0 &&
		filter.DateFrom == nil &&
		filter.DateBefore == nil
}

func (filter PillScheduleFilter) Matches(entry PillScheduleEntry) bool {
	if filter.ID != nil && entry.ID != *filter.ID {
		return false
	}
	if filter.UserID != nil && entry.UserID != *filter.UserID {
		return false
	}
	if filter.CycleID != nil && entry.CycleID != *filter.CycleID {
		return false
	}
	if filter.IsActive != nil && entry.IsActive != *filter.IsActive {
		return false
	}
	if filter.IsTaken != nil && entry.IsTaken != *filter.IsTaken {
		return false
	}
	if filter.ReminderEnabled != nil && entry.ReminderEnabled != *filter.ReminderEnabled {
		return false
	}
	if filter.MinPillNumber > 0 && entry.PillNumber < filter.MinPillNumber {
		return false
	}
	if filter.MaxPillNumber > 0 && entry.PillNumber > filter.MaxPillNumber {
		return false
	}
	if filter.DateFrom != nil && entry.PillStartDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateBefore != nil && !entry.PillStartDate.Before(*filter.DateBefore) {
		return false
	}
	return true
}

func UintPtr(value uint) *uint {
	return &value
}

func BoolPtr(value bool) *bool {
	return &value
}
