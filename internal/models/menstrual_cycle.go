package models

import "time"

const DefaultCycleLength = 28

type MenstrualCycle struct {
	ID             uint      `gorm:"primaryKey"`
	UserID         uint      `gorm:"not null;index"`
	CycleStartDate time.Time `gorm:"type:date;not null"`
	CycleLength    int       `gorm:"not null;default:28"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
