package models

// Status-Werte für den Lebenszyklus aller Content-Typen.
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ValidStatus prüft, ob ein Status-Wert zum geschlossenen Set gehört.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Rollen für User-Accounts.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ValidRole prüft, ob eine Rolle zum geschlossenen Set gehört.
func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}
