package services

import (
	"gorm.io/gorm"

	"content-hub/models"
)

// RefError benennt eine Fremdschlüssel-Referenz, die auf keine nicht-gelöschte
// Zeile zeigt. Der gesamte Schreibvorgang wird damit abgelehnt.
type RefError struct {
	Field string
}

func (e *RefError) Error() string {
	return e.Field + " does not exist"
}

// CheckRef prüft, ob die referenzierte Zeile existiert und nicht soft-gelöscht
// ist. Soft-gelöschte Zeilen gelten als abwesend.
func CheckRef(db *gorm.DB, model interface{}, id uint, field string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &RefError{Field: field}
	}
	return nil
}

// CheckTagRefs prüft eine Liste von Tag-IDs auf Existenz.
func CheckTagRefs(db *gorm.DB, ids []uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	if err := db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(uniqueIDs(ids)) {
		return nil, &RefError{Field: "tag_ids"}
	}
	return tags, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// UsageRelation zählt, wie viele nicht-gelöschte Content-Items einer Relation
// eine bestimmte Zeile referenzieren.
type UsageRelation struct {
	Name  string
	Count func(db *gorm.DB, id uint) (int64, error)
}

// ColumnUsage baut eine UsageRelation über eine einfache FK-Spalte.
func ColumnUsage(name string, model interface{}, column string) UsageRelation {
	return UsageRelation{
		Name: name,
		Count: func(db *gorm.DB, id uint) (int64, error) {
			var n int64
			err := db.Model(model).Where(column+" = ?", id).Count(&n).Error
			return n, err
		},
	}
}

// TagUsage zählt Artikel über die article_tags-Join-Tabelle.
func TagUsage() UsageRelation {
	return UsageRelation{
		Name: "articles",
		Count: func(db *gorm.DB, id uint) (int64, error) {
			var n int64
			err := db.Model(&models.Article{}).
				Joins("JOIN article_tags ON article_tags.article_id = articles.id").
				Where("article_tags.tag_id = ?", id).
				Count(&n).Error
			return n, err
		},
	}
}

// CountUsage liefert die Zählung je Relation plus Gesamtsumme. Relationen mit
// null Treffern tauchen nicht im Detail auf.
func CountUsage(db *gorm.DB, id uint, rels []UsageRelation) (map[string]int64, int64, error) {
	usage := make(map[string]int64)
	var total int64
	for _, rel := range rels {
		n, err := rel.Count(db, id)
		if err != nil {
			return nil, 0, err
		}
		if n > 0 {
			usage[rel.Name] += n
		}
		total += n
	}
	return usage, total, nil
}
