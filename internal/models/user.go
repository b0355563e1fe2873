package models

import "time"

const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	FullName     string    `gorm:"not null;default:''"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null;default:customer"`
	CreatedAt    time.Time `gorm:"not null"`
}
