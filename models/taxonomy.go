package models

import (
	"time"

	"gorm.io/gorm"
)

// Category ist die Pflicht-Rubrik für Artikel.
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:256;index:idx_categories_slug,unique,where:deleted_at IS NULL"`
	Description string `json:"description,omitempty"`

	CreatedByID *uint `json:"created_by,omitempty"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Category) TableName() string {
	return "categories"
}

// Tag ist ein frei vergebbares Schlagwort für Artikel (n:m über article_tags).
type Tag struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug" gorm:"size:256;index:idx_tags_slug,unique,where:deleted_at IS NULL"`

	CreatedByID *uint `json:"created_by,omitempty"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Tag) TableName() string {
	return "tags"
}

// Service ist eine Dienstleistungs-Referenz für Artikel und Fallstudien.
type Service struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:256;index:idx_services_slug,unique,where:deleted_at IS NULL"`
	Description string `json:"description,omitempty"`

	CreatedByID *uint `json:"created_by,omitempty"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Service) TableName() string {
	return "services"
}

// Industry ist eine Branchen-Referenz für Artikel und Fallstudien.
type Industry struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"size:256;index:idx_industries_slug,unique,where:deleted_at IS NULL"`
	Description string `json:"description,omitempty"`

	CreatedByID *uint `json:"created_by,omitempty"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Industry) TableName() string {
	return "industries"
}
