package models

import (
	"time"

	"gorm.io/gorm"
)

// User repräsentiert einen CMS-Account mit Rolle (admin, editor, viewer).
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name         string `json:"name"`
	Email        string `json:"email" gorm:"size:256;index:idx_users_email,unique,where:deleted_at IS NULL;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Role         string `json:"role" gorm:"default:'viewer'"` // admin, editor, viewer
	Active       bool   `json:"active"`
}

// TableName gibt explizit den Tabellennamen an.
func (User) TableName() string {
	return "users"
}
