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

// articleInput ist das Eingabe-Schema für Create und partielles Update.
// Pointer-Felder unterscheiden "nicht gesetzt" von "leer".
type articleInput struct {
	Title           *string    `json:"title"`
	Slug            *string    `json:"slug"`
	Excerpt         *string    `json:"excerpt"`
	Body            *string    `json:"body"`
	Status          *string    `json:"status"`
	PublishedAt     *time.Time `json:"published_at"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	CategoryID      *uint      `json:"category_id"`
	ServiceID       *uint      `json:"service_id"`
	IndustryID      *uint      `json:"industry_id"`
	ThumbnailID     *uint      `json:"thumbnail_id"`
	TagIDs          *[]uint    `json:"tag_ids"`
	MetaTitle       *string    `json:"meta_title"`
	MetaDescription *string    `json:"meta_description"`
	Featured        *bool      `json:"featured"`
}

var articleSortFields = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"title":        "title",
}

// articleFilter baut das Filter-Prädikat für Liste und Count aus den
// Query-Parametern. Beide müssen dasselbe Prädikat verwenden, damit total zur
// gefilterten Menge passt.
func articleFilter(c *gin.Context) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v := c.Query("status"); v != "" {
			q = q.Where("articles.status = ?", v)
		}
		if v := c.Query("category_id"); v != "" {
			q = q.Where("articles.category_id = ?", v)
		}
		if v := c.Query("service_id"); v != "" {
			q = q.Where("articles.service_id = ?", v)
		}
		if v := c.Query("industry_id"); v != "" {
			q = q.Where("articles.industry_id = ?", v)
		}
		if v := c.Query("featured"); v != "" {
			q = q.Where("articles.featured = ?", v == "true")
		}
		if v := c.Query("tag_id"); v != "" {
			q = q.Joins("JOIN article_tags ON article_tags.article_id = articles.id").
				Where("article_tags.tag_id = ?", v)
		}
		if v := c.Query("q"); v != "" {
			p := likePattern(v)
			q = q.Where("LOWER(articles.title) LIKE ? OR LOWER(articles.excerpt) LIKE ?", p, p)
		}
		return q
	}
}

func articlePreloads(q *gorm.DB) *gorm.DB {
	return q.Preload("Category").Preload("Service").Preload("Industry").
		Preload("Thumbnail").Preload("Tags")
}

// RegisterArticleRoutes konfiguriert die CMS-Routen für Artikel.
func RegisterArticleRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		var total int64
		if err := db.Model(&models.Article{}).Scopes(articleFilter(c)).Count(&total).Error; err != nil {
			log.Error("Artikel-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var articles []models.Article
		query := db.Model(&models.Article{}).Scopes(articleFilter(c))
		query = applySort(query, c, articleSortFields, "created_at desc")
		if err := articlePreloads(query).Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
			log.Error("Artikel-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: articles, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var article models.Article
		if err := articlePreloads(db).First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			log.Error("Artikel-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var in articleInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if in.CategoryID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
			return
		}

		// Referenzen validieren, bevor irgendetwas geschrieben wird
		if err := services.CheckRef(db, &models.Category{}, *in.CategoryID, "category"); err != nil {
			handleWriteError(c, log, err)
			return
		}
		if in.ServiceID != nil {
			if err := services.CheckRef(db, &models.Service{}, *in.ServiceID, "service"); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}
		if in.IndustryID != nil {
			if err := services.CheckRef(db, &models.Industry{}, *in.IndustryID, "industry"); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}
		if in.ThumbnailID != nil {
			if err := services.CheckRef(db, &models.Media{}, *in.ThumbnailID, "thumbnail"); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}
		var tags []models.Tag
		if in.TagIDs != nil {
			var err error
			if tags, err = services.CheckTagRefs(db, *in.TagIDs); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}

		slug, err := services.ResolveSlug(strVal(in.Slug), *in.Title)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		taken, err := services.SlugTaken(db, &models.Article{}, slug, 0)
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

		article := models.Article{
			Title:           strings.TrimSpace(*in.Title),
			Slug:            slug,
			Excerpt:         strVal(in.Excerpt),
			Body:            services.SanitizeRichText(strVal(in.Body)),
			Status:          status,
			PublishedAt:     publishedAt,
			ScheduledAt:     scheduledAt,
			CategoryID:      *in.CategoryID,
			ServiceID:       in.ServiceID,
			IndustryID:      in.IndustryID,
			ThumbnailID:     in.ThumbnailID,
			Tags:            tags,
			MetaTitle:       strVal(in.MetaTitle),
			MetaDescription: strVal(in.MetaDescription),
			CreatedByID:     &user.ID,
			UpdatedByID:     &user.ID,
		}
		if in.Featured != nil {
			article.Featured = *in.Featured
		}

		if err := db.Create(&article).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		articlePreloads(db).First(&article, article.ID)

		log.Info("Artikel angelegt", zap.Uint("id", article.ID), zap.String("slug", article.Slug))
		c.JSON(http.StatusCreated, article)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var article models.Article
		if err := db.First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			log.Error("Artikel-Abruf für Update fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// Doppelt binden: typisiert für die Werte, roh für die Frage, ob ein
		// nullbares Feld überhaupt mitgesendet wurde.
		var in articleInput
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
		if in.Excerpt != nil {
			updates["excerpt"] = *in.Excerpt
		}
		if in.Body != nil {
			updates["body"] = services.SanitizeRichText(*in.Body)
		}
		if in.MetaTitle != nil {
			updates["meta_title"] = *in.MetaTitle
		}
		if in.MetaDescription != nil {
			updates["meta_description"] = *in.MetaDescription
		}
		if in.Featured != nil {
			updates["featured"] = *in.Featured
		}

		// Slug neu auflösen: expliziter Slug gewinnt, sonst Ableitung aus dem
		// neuen Titel; Eindeutigkeit ohne die eigene Zeile prüfen.
		if in.Slug != nil || in.Title != nil {
			title := article.Title
			if in.Title != nil {
				title = *in.Title
			}
			slug, err := services.ResolveSlug(strVal(in.Slug), title)
			if err != nil {
				handleWriteError(c, log, err)
				return
			}
			if slug != article.Slug {
				taken, err := services.SlugTaken(db, &models.Article{}, slug, article.ID)
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

		if in.CategoryID != nil {
			if err := services.CheckRef(db, &models.Category{}, *in.CategoryID, "category"); err != nil {
				handleWriteError(c, log, err)
				return
			}
			updates["category_id"] = *in.CategoryID
		}
		// Optionale Referenzen: mitgesendetes null räumt das Feld aus
		if sent("service_id") {
			if in.ServiceID != nil {
				if err := services.CheckRef(db, &models.Service{}, *in.ServiceID, "service"); err != nil {
					handleWriteError(c, log, err)
					return
				}
			}
			updates["service_id"] = in.ServiceID
		}
		if sent("industry_id") {
			if in.IndustryID != nil {
				if err := services.CheckRef(db, &models.Industry{}, *in.IndustryID, "industry"); err != nil {
					handleWriteError(c, log, err)
					return
				}
			}
			updates["industry_id"] = in.IndustryID
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

		current := lifecycleState{Status: article.Status, PublishedAt: article.PublishedAt, ScheduledAt: article.ScheduledAt}
		if err := mergeLifecycle(updates, current, in.Status, sent, in.PublishedAt, in.ScheduledAt); err != nil {
			handleWriteError(c, log, err)
			return
		}

		var tags []models.Tag
		if in.TagIDs != nil {
			var err error
			if tags, err = services.CheckTagRefs(db, *in.TagIDs); err != nil {
				handleWriteError(c, log, err)
				return
			}
		}

		updates["updated_by_id"] = user.ID
		if err := db.Model(&article).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		if in.TagIDs != nil {
			if err := db.Model(&article).Association("Tags").Replace(tags); err != nil {
				log.Error("Tag-Zuordnung fehlgeschlagen", zap.Uint("id", article.ID), zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
				return
			}
		}
		articlePreloads(db).First(&article, article.ID)

		log.Info("Artikel aktualisiert", zap.Uint("id", article.ID))
		c.JSON(http.StatusOK, article)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var article models.Article
		if err := db.First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			log.Error("Artikel-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// Soft-Delete: Zeile bleibt erhalten, deleted_at + letzter Bearbeiter
		if err := db.Model(&article).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Uint("id", article.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Delete(&article).Error; err != nil {
			log.Error("Artikel-Delete fehlgeschlagen", zap.Uint("id", article.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
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

		// Bereits gelöschte oder unbekannte IDs werden übersprungen und zählen
		// nicht als betroffen.
		if err := db.Model(&models.Article{}).Where("id IN ?", req.IDs).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		res := db.Where("id IN ?", req.IDs).Delete(&models.Article{})
		if res.Error != nil {
			log.Error("Artikel-Bulk-Delete fehlgeschlagen", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"affected": res.RowsAffected})
	})
}
