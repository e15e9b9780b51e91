package models

import "time"

// Media repräsentiert eine hochgeladene Datei. Medien werden als einzige Entität
// hart gelöscht, sobald kein Content-Item sie mehr referenziert.
type Media struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	FileName   string `json:"file_name" gorm:"not null"`
	StoredPath string `json:"stored_path" gorm:"uniqueIndex"` // modul/jahr/monat/uuid.ext
	URL        string `json:"url"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	Module     string `json:"module" gorm:"index"` // z.B. articles, case-studies, banners

	UploadedByID *uint `json:"uploaded_by,omitempty" gorm:"index"`
}

// TableName gibt explizit den Tabellennamen an.
func (Media) TableName() string {
	return "media"
}
