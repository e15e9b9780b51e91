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

type bannerInput struct {
	Title       *string    `json:"title"`
	Slug        *string    `json:"slug"`
	Description *string    `json:"description"`
	LinkURL     *string    `json:"link_url"`
	Position    *int       `json:"position"`
	Active      *bool      `json:"active"`
	Status      *string    `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	ThumbnailID *uint      `json:"thumbnail_id"`
}

var bannerSortFields = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"position":   "position",
	"title":      "title",
}

func bannerFilter(c *gin.Context) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}
		if v := c.Query("active"); v != "" {
			q = q.Where("active = ?", v == "true")
		}
		return q
	}
}

// RegisterBannerRoutes konfiguriert die CMS-Routen für Banner.
func RegisterBannerRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		var total int64
		if err := db.Model(&models.Banner{}).Scopes(bannerFilter(c)).Count(&total).Error; err != nil {
			log.Error("Banner-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var banners []models.Banner
		query := db.Model(&models.Banner{}).Scopes(bannerFilter(c))
		query = applySort(query, c, bannerSortFields, "position asc")
		if err := query.Preload("Thumbnail").Limit(limit).Offset(offset).Find(&banners).Error; err != nil {
			log.Error("Banner-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: banners, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var banner models.Banner
		if err := db.Preload("Thumbnail").First(&banner, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
				return
			}
			log.Error("Banner-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, banner)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var in bannerInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
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
		taken, err := services.SlugTaken(db, &models.Banner{}, slug, 0)
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

		banner := models.Banner{
			Title:       strings.TrimSpace(*in.Title),
			Slug:        slug,
			Description: services.SanitizeRichText(strVal(in.Description)),
			LinkURL:     strVal(in.LinkURL),
			Active:      true,
			Status:      status,
			PublishedAt: publishedAt,
			ScheduledAt: scheduledAt,
			ThumbnailID: in.ThumbnailID,
			CreatedByID: &user.ID,
			UpdatedByID: &user.ID,
		}
		if in.Position != nil {
			banner.Position = *in.Position
		}
		if in.Active != nil {
			banner.Active = *in.Active
		}
		if err := db.Create(&banner).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.Preload("Thumbnail").First(&banner, banner.ID)

		log.Info("Banner angelegt", zap.Uint("id", banner.ID), zap.String("slug", banner.Slug))
		c.JSON(http.StatusCreated, banner)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var banner models.Banner
		if err := db.First(&banner, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
				return
			}
			log.Error("Banner-Abruf für Update fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var in bannerInput
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
		if in.LinkURL != nil {
			updates["link_url"] = *in.LinkURL
		}
		if in.Position != nil {
			updates["position"] = *in.Position
		}
		if in.Active != nil {
			updates["active"] = *in.Active
		}

		if in.Slug != nil || in.Title != nil {
			title := banner.Title
			if in.Title != nil {
				title = *in.Title
			}
			slug, err := services.ResolveSlug(strVal(in.Slug), title)
			if err != nil {
				handleWriteError(c, log, err)
				return
			}
			if slug != banner.Slug {
				taken, err := services.SlugTaken(db, &models.Banner{}, slug, banner.ID)
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

		current := lifecycleState{Status: banner.Status, PublishedAt: banner.PublishedAt, ScheduledAt: banner.ScheduledAt}
		if err := mergeLifecycle(updates, current, in.Status, sent, in.PublishedAt, in.ScheduledAt); err != nil {
			handleWriteError(c, log, err)
			return
		}

		updates["updated_by_id"] = user.ID
		if err := db.Model(&banner).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.Preload("Thumbnail").First(&banner, banner.ID)

		log.Info("Banner aktualisiert", zap.Uint("id", banner.ID))
		c.JSON(http.StatusOK, banner)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var banner models.Banner
		if err := db.First(&banner, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
				return
			}
			log.Error("Banner-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		if err := db.Model(&banner).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Uint("id", banner.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Delete(&banner).Error; err != nil {
			log.Error("Banner-Delete fehlgeschlagen", zap.Uint("id", banner.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "banner deleted"})
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

		if err := db.Model(&models.Banner{}).Where("id IN ?", req.IDs).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		res := db.Where("id IN ?", req.IDs).Delete(&models.Banner{})
		if res.Error != nil {
			log.Error("Banner-Bulk-Delete fehlgeschlagen", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"affected": res.RowsAffected})
	})
}
