package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/middleware"
	"content-hub/models"
	"content-hub/services"
)

type eventInput struct {
	Title       *string    `json:"title"`
	Slug        *string    `json:"slug"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	Status      *string    `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ThumbnailID *uint      `json:"thumbnail_id"`
}

var eventSortFields = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"starts_at":    "starts_at",
	"title":        "title",
}

func eventFilter(c *gin.Context) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}
		if c.Query("upcoming") == "true" {
			q = q.Where("starts_at >= ?", time.Now())
		}
		if v := c.Query("q"); v != "" {
			p := likePattern(v)
			q = q.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", p, p)
		}
		return q
	}
}

// RegisterEventRoutes konfiguriert die CMS-Routen für Veranstaltungen.
func RegisterEventRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		var total int64
		if err := db.Model(&models.Event{}).Scopes(eventFilter(c)).Count(&total).Error; err != nil {
			log.Error("Event-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var events []models.Event
		query := db.Model(&models.Event{}).Scopes(eventFilter(c))
		query = applySort(query, c, eventSortFields, "starts_at desc")
		if err := query.Preload("Thumbnail").Limit(limit).Offset(offset).Find(&events).Error; err != nil {
			log.Error("Event-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: events, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var event models.Event
		if err := db.Preload("Thumbnail").First(&event, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			log.Error("Event-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, event)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var in eventInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if in.StartsAt != nil && in.EndsAt != nil && in.EndsAt.Before(*in.StartsAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ends_at must not be before starts_at"})
			return
		}
		if in.ThumbnailID != nil {
			if err := services.CheckRef(db, &models.Media{}, *in.ThumbnailID, "thumbnail"); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}

		slug, err := services.ResolveSlug(strVal(in.Slug), *in.Title)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		taken, err := services.SlugTaken(db, &models.Event{}, slug, 0)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use", "slug": slug})
			return
		}

		status, publishedAt, scheduledAt, err := services.NormalizeLifecycle(
			strVal(in.Status), in.PublishedAt, in.ScheduledAt, time.Now())
		if err != nil {
			handleWriteError(c, log, err)
			return
		}

		event := models.Event{
			Title:       strings.TrimSpace(*in.Title),
			Slug:        slug,
			Description: services.SanitizeRichText(strVal(in.Description)),
			Location:    strVal(in.Location),
			StartsAt:    in.StartsAt,
			EndsAt:      in.EndsAt,
			Status:      status,
			PublishedAt: publishedAt,
			ScheduledAt: scheduledAt,
			ThumbnailID: in.ThumbnailID,
			CreatedByID: &user.ID,
			UpdatedByID: &user.ID,
		}
		if err := db.Create(&event).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.Preload("Thumbnail").First(&event, event.ID)

		log.Info("Event angelegt", zap.Uint("id", event.ID), zap.String("slug", event.Slug))
		c.JSON(http.StatusCreated, event)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var event models.Event
		if err := db.First(&event, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			log.Error("Event-Abruf für Update fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var in eventInput
		if err := c.ShouldBindBodyWith(&in, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		var raw map[string]json.RawMessage
		_ = c.ShouldBindBodyWith(&raw, binding.JSON)
		sent := func(key string) bool { _, ok := raw[key]; return ok }

		updates := map[string]interface{}{}

		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title must not be empty"})
				return
			}
			updates["title"] = strings.TrimSpace(*in.Title)
		}
		if in.Description != nil {
			updates["description"] = services.SanitizeRichText(*in.Description)
		}
		if in.Location != nil {
			updates["location"] = *in.Location
		}
		if sent("starts_at") {
			updates["starts_at"] = in.StartsAt
		}
		if sent("ends_at") {
			updates["ends_at"] = in.EndsAt
		}

		// Zeitfenster nach Anwendung der Änderungen prüfen.
		startsAt, endsAt := event.StartsAt, event.EndsAt
		if sent("starts_at") {
			startsAt = in.StartsAt
		}
		if sent("ends_at") {
			endsAt = in.EndsAt
		}
		if startsAt != nil && endsAt != nil && endsAt.Before(*startsAt) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ends_at must not be before starts_at"})
			return
		}

		if in.Slug != nil || in.Title != nil {
			title := event.Title
			if in.Title != nil {
				title = *in.Title
			}
			slug, err := services.ResolveSlug(strVal(in.Slug), title)
			if err != nil {
				handleWriteError(c, log, err)
				return
			}
			if slug != event.Slug {
				taken, err := services.SlugTaken(db, &models.Event{}, slug, event.ID)
				if err != nil {
					handleWriteError(c, log, err)
					return
				}
				if taken {
					c.JSON(http.StatusConflict, gin.H{"error": "slug already in use", "slug": slug})
					return
				}
				updates["slug"] = slug
			}
		}

		if sent("thumbnail_id") {
			if in.ThumbnailID != nil {
				if err := services.CheckRef(db, &models.Media{}, *in.ThumbnailID, "thumbnail"); err != nil {
					handleWriteError(c, log, err)
					return
				}
			}
			updates["thumbnail_id"] = in.ThumbnailID
		}

		current := lifecycleState{Status: event.Status, PublishedAt: event.PublishedAt, ScheduledAt: event.ScheduledAt}
		if err := mergeLifecycle(updates, current, in.Status, sent, in.PublishedAt, in.ScheduledAt); err != nil {
			handleWriteError(c, log, err)
			return
		}

		updates["updated_by_id"] = user.ID
		if err := db.Model(&event).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.Preload("Thumbnail").First(&event, event.ID)

		log.Info("Event aktualisiert", zap.Uint("id", event.ID))
		c.JSON(http.StatusOK, event)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var event models.Event
		if err := db.First(&event, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			log.Error("Event-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		if err := db.Model(&event).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Uint("id", event.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Delete(&event).Error; err != nil {
			log.Error("Event-Delete fehlgeschlagen", zap.Uint("id", event.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
	})

	rg.POST("/bulk-delete", middleware.RequireRole(models.RoleAdmin), func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var req struct {
			IDs []uint `json:"ids" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ids is required"})
			return
		}

		if err := db.Model(&models.Event{}).Where("id IN ?", req.IDs).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		res := db.Where("id IN ?", req.IDs).Delete(&models.Event{})
		if res.Error != nil {
			log.Error("Event-Bulk-Delete fehlgeschlagen", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"affected": res.RowsAffected})
	})
}
