package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/services"
)

// Meta beschreibt die Pagination-Metadaten einer Listen-Antwort.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// ListResponse ist der Umschlag aller Listen-Endpunkte: {data, meta}.
type ListResponse struct {
	Data interface{} `json:"data"`
	Meta Meta        `json:"meta"`
}

func newMeta(total int64, page, limit int) Meta {
	return Meta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

// parsePagination liest page/limit mit Defaults und liefert den Offset dazu.
func parsePagination(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

// applySort wendet ein allow-gelistetes Sortierfeld samt Richtung an; bei
// unbekanntem Feld greift der stabile Fallback.
func applySort(q *gorm.DB, c *gin.Context, allowed map[string]string, fallback string) *gorm.DB {
	col, ok := allowed[c.Query("sortBy")]
	if !ok {
		return q.Order(fallback)
	}
	order := strings.ToLower(c.Query("order"))
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	return q.Order(col + " " + order)
}

// likePattern baut ein case-insensitives LIKE-Muster für die Freitextsuche.
func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// lifecycleState ist der gespeicherte Status/Zeitstempel-Stand einer Zeile.
type lifecycleState struct {
	Status      string
	PublishedAt *time.Time
	ScheduledAt *time.Time
}

// mergeLifecycle wendet die angeforderten Status- und Zeitstempel-Änderungen
// auf den gespeicherten Stand an und normalisiert das Ergebnis. Entscheidend
// ist der effektive Stand nach dem Merge: ein mitgesendetes null darf keine
// published-Zeile ohne published_at und keine scheduled-Zeile ohne
// scheduled_at hinterlassen.
func mergeLifecycle(updates map[string]interface{}, current lifecycleState, status *string, sent func(string) bool, publishedAt, scheduledAt *time.Time) error {
	if status == nil && !sent("published_at") && !sent("scheduled_at") {
		return nil
	}
	effStatus := current.Status
	if status != nil {
		effStatus = *status
	}
	effPublished := current.PublishedAt
	if sent("published_at") {
		effPublished = publishedAt
	}
	effScheduled := current.ScheduledAt
	if sent("scheduled_at") {
		effScheduled = scheduledAt
	}
	effStatus, effPublished, effScheduled, err := services.NormalizeLifecycle(effStatus, effPublished, effScheduled, time.Now())
	if err != nil {
		return err
	}
	updates["status"] = effStatus
	updates["published_at"] = effPublished
	updates["scheduled_at"] = effScheduled
	return nil
}

// handleWriteError mappt Fehler aus Validierung, Slug-Auflösung und Storage auf
// HTTP-Statuscodes. Validierungs- und Referenzfehler brechen den gesamten
// Schreibvorgang ab, bevor etwas persistiert wurde.
func handleWriteError(c *gin.Context, log *zap.Logger, err error) {
	var refErr *services.RefError
	switch {
	case errors.Is(err, services.ErrSlugRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrScheduleRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &refErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": refErr.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// Letzte Verteidigungslinie: partieller Unique-Index bei Slug-Races
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate slug"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		log.Error("Schreibvorgang fehlgeschlagen", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	}
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
