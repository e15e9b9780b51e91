package models

import (
	"time"

	"gorm.io/gorm"
)

// CaseStudy repräsentiert eine Kunden-Fallstudie (Problem/Lösung) mit optionalem Publikations-PDF.
type CaseStudy struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Title    string `json:"title" gorm:"not null"`
	Slug     string `json:"slug" gorm:"size:256;index:idx_case_studies_slug,unique,where:deleted_at IS NULL"`
	Client   string `json:"client,omitempty"`
	Overview string `json:"overview" gorm:"type:text"` // Rich-Text
	Problem  string `json:"problem" gorm:"type:text"`  // Rich-Text
	Solution string `json:"solution" gorm:"type:text"` // Rich-Text

	Status      string     `json:"status" gorm:"index;default:'draft'"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" gorm:"index"`

	ServiceID     *uint     `json:"service_id,omitempty" gorm:"index"`
	Service       *Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	IndustryID    *uint     `json:"industry_id,omitempty" gorm:"index"`
	Industry      *Industry `json:"industry,omitempty" gorm:"foreignKey:IndustryID"`
	ThumbnailID   *uint     `json:"thumbnail_id,omitempty" gorm:"index"`
	Thumbnail     *Media    `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID"`
	PublicationID *uint     `json:"publication_id,omitempty" gorm:"index"`
	Publication   *Media    `json:"publication,omitempty" gorm:"foreignKey:PublicationID"`

	CreatedByID *uint `json:"created_by,omitempty" gorm:"index"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (CaseStudy) TableName() string {
	return "case_studies"
}
