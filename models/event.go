package models

import (
	"time"

	"gorm.io/gorm"
)

// Event repräsentiert eine Veranstaltung mit Zeitraum und Ort.
type Event struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:256;index:idx_events_slug,unique,where:deleted_at IS NULL"`
	Description string `json:"description" gorm:"type:text"` // Rich-Text
	Location    string `json:"location,omitempty"`

	StartsAt *time.Time `json:"starts_at,omitempty" gorm:"index"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`

	Status      string     `json:"status" gorm:"index;default:'draft'"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" gorm:"index"`

	ThumbnailID *uint  `json:"thumbnail_id,omitempty" gorm:"index"`
	Thumbnail   *Media `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID"`

	CreatedByID *uint `json:"created_by,omitempty" gorm:"index"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Event) TableName() string {
	return "events"
}
