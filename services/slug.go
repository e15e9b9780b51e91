package services

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// ErrSlugRequired wird zurückgegeben, wenn weder Slug noch Titel vorhanden sind.
var ErrSlugRequired = errors.New("slug required: neither slug nor title given")

var (
	// slugStrip entfernt alles außer Kleinbuchstaben, Ziffern, Unterstrich und Bindestrich
	slugStrip = regexp.MustCompile(`[^a-z0-9_-]+`)
	// slugSpaces fasst Whitespace-Läufe zu einem Bindestrich zusammen
	slugSpaces = regexp.MustCompile(`\s+`)
	// slugHyphens fasst mehrfache Bindestriche zusammen
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify wandelt einen String in einen URL-tauglichen Slug um:
// Unicode-Akzente entfernen, Kleinbuchstaben, Whitespace zu Bindestrichen,
// Rest-Zeichen verwerfen, Bindestriche an den Rändern abschneiden.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)

	out = strings.ToLower(strings.TrimSpace(out))
	out = slugSpaces.ReplaceAllString(out, "-")
	out = slugStrip.ReplaceAllString(out, "")
	out = slugHyphens.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// ResolveSlug bestimmt den Slug aus explizitem Wert oder Titel. Beide Pfade
// laufen durch dieselbe Normalisierung, damit auch explizite Slugs nur
// [a-z0-9_-] enthalten.
func ResolveSlug(explicit, title string) (string, error) {
	src := strings.TrimSpace(explicit)
	if src == "" {
		src = strings.TrimSpace(title)
	}
	slug := Slugify(src)
	if slug == "" {
		return "", ErrSlugRequired
	}
	return slug, nil
}

// SlugTaken prüft, ob der Slug bereits von einer nicht-gelöschten Zeile desselben
// Typs belegt ist. excludeID schließt beim Update die eigene Zeile aus.
// Soft-gelöschte Zeilen werden von GORM automatisch ausgeblendet, deren Slugs
// sind also wieder frei.
func SlugTaken(db *gorm.DB, model interface{}, slug string, excludeID uint) (bool, error) {
	query := db.Model(model).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
