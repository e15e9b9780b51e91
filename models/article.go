package models

import (
	"time"

	"gorm.io/gorm"
)

// Article repräsentiert einen redaktionellen Artikel inklusive Lebenszyklus und Referenzen.
type Article struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Title   string `json:"title" gorm:"not null"`
	Slug    string `json:"slug" gorm:"size:256;index:idx_articles_slug,unique,where:deleted_at IS NULL"`
	Excerpt string `json:"excerpt,omitempty"`
	Body    string `json:"body" gorm:"type:text"` // Rich-Text, wird vor dem Speichern sanitisiert

	Status      string     `json:"status" gorm:"index;default:'draft'"` // draft, scheduled, published, archived
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty" gorm:"index"`

	CategoryID  uint      `json:"category_id" gorm:"index;not null"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ServiceID   *uint     `json:"service_id,omitempty" gorm:"index"`
	Service     *Service  `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	IndustryID  *uint     `json:"industry_id,omitempty" gorm:"index"`
	Industry    *Industry `json:"industry,omitempty" gorm:"foreignKey:IndustryID"`
	ThumbnailID *uint     `json:"thumbnail_id,omitempty" gorm:"index"`
	Thumbnail   *Media    `json:"thumbnail,omitempty" gorm:"foreignKey:ThumbnailID"`
	Tags        []Tag     `json:"tags,omitempty" gorm:"many2many:article_tags"`

	// SEO
	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`

	Featured bool `json:"featured" gorm:"default:false"`

	CreatedByID *uint `json:"created_by,omitempty" gorm:"index"`
	UpdatedByID *uint `json:"updated_by,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Article) TableName() string {
	return "articles"
}
