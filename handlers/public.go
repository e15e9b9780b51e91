package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/models"
)

// publishedOnly schränkt jede Public-Abfrage auf veröffentlichte Inhalte ein.
// Entwürfe, geplante und archivierte Inhalte sind von außen unsichtbar.
func publishedOnly(q *gorm.DB) *gorm.DB {
	return q.Where("status = ?", models.StatusPublished)
}

func setPublicCacheHeader(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=60")
}

// RegisterPublicRoutes konfiguriert die unauthentifizierte Lesezone der
// Website. Sie spiegelt die Inhalte der Verwaltungszone, liefert aber
// ausschließlich veröffentlichte, nicht gelöschte Daten aus.
func RegisterPublicRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/articles", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		filter := func(q *gorm.DB) *gorm.DB {
			q = publishedOnly(q)
			if v := c.Query("category"); v != "" {
				q = q.Joins("JOIN categories ON categories.id = articles.category_id").
					Where("categories.slug = ?", v)
			}
			if v := c.Query("featured"); v != "" {
				q = q.Where("articles.featured = ?", v == "true")
			}
			if v := c.Query("q"); v != "" {
				p := likePattern(v)
				q = q.Where("LOWER(articles.title) LIKE ? OR LOWER(articles.excerpt) LIKE ?", p, p)
			}
			return q
		}

		var total int64
		if err := db.Model(&models.Article{}).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("Public-Artikel-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var articles []models.Article
		if err := db.Model(&models.Article{}).Scopes(filter).
			Preload("Category").Preload("Service").Preload("Industry").
			Preload("Thumbnail").Preload("Tags").
			Order("articles.published_at desc").
			Limit(limit).Offset(offset).Find(&articles).Error; err != nil {
			log.Error("Public-Artikel-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, ListResponse{Data: articles, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/articles/:slug", func(c *gin.Context) {
		var article models.Article
		err := db.Scopes(publishedOnly).Where("slug = ?", c.Param("slug")).
			Preload("Category").Preload("Service").Preload("Industry").
			Preload("Thumbnail").Preload("Tags").
			First(&article).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			log.Error("Public-Artikel-Abruf fehlgeschlagen", zap.String("slug", c.Param("slug")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, article)
	})

	rg.GET("/case-studies", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		filter := func(q *gorm.DB) *gorm.DB {
			q = publishedOnly(q)
			if v := c.Query("service"); v != "" {
				q = q.Joins("JOIN services ON services.id = case_studies.service_id").
					Where("services.slug = ?", v)
			}
			if v := c.Query("industry"); v != "" {
				q = q.Joins("JOIN industries ON industries.id = case_studies.industry_id").
					Where("industries.slug = ?", v)
			}
			return q
		}

		var total int64
		if err := db.Model(&models.CaseStudy{}).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("Public-Fallstudien-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var studies []models.CaseStudy
		if err := db.Model(&models.CaseStudy{}).Scopes(filter).
			Preload("Service").Preload("Industry").Preload("Thumbnail").Preload("Publication").
			Order("case_studies.published_at desc").
			Limit(limit).Offset(offset).Find(&studies).Error; err != nil {
			log.Error("Public-Fallstudien-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, ListResponse{Data: studies, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/case-studies/:slug", func(c *gin.Context) {
		var study models.CaseStudy
		err := db.Scopes(publishedOnly).Where("slug = ?", c.Param("slug")).
			Preload("Service").Preload("Industry").Preload("Thumbnail").Preload("Publication").
			First(&study).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case study not found"})
				return
			}
			log.Error("Public-Fallstudien-Abruf fehlgeschlagen", zap.String("slug", c.Param("slug")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, study)
	})

	rg.GET("/events", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		filter := func(q *gorm.DB) *gorm.DB {
			q = publishedOnly(q)
			if c.Query("upcoming") == "true" {
				q = q.Where("starts_at >= ?", time.Now())
			}
			return q
		}

		var total int64
		if err := db.Model(&models.Event{}).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("Public-Event-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var events []models.Event
		if err := db.Model(&models.Event{}).Scopes(filter).
			Preload("Thumbnail").Order("starts_at asc").
			Limit(limit).Offset(offset).Find(&events).Error; err != nil {
			log.Error("Public-Event-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, ListResponse{Data: events, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/events/:slug", func(c *gin.Context) {
		var event models.Event
		err := db.Scopes(publishedOnly).Where("slug = ?", c.Param("slug")).
			Preload("Thumbnail").First(&event).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
				return
			}
			log.Error("Public-Event-Abruf fehlgeschlagen", zap.String("slug", c.Param("slug")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, event)
	})

	rg.GET("/banners", func(c *gin.Context) {
		var banners []models.Banner
		err := db.Scopes(publishedOnly).Where("active = ?", true).
			Preload("Thumbnail").Order("position asc").Find(&banners).Error
		if err != nil {
			log.Error("Public-Banner-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, gin.H{"data": banners})
	})

	// Flache Nachschlagelisten für Navigation und Filter-UI.
	rg.GET("/categories", publicLookupList[models.Category](db, log, "Public-Kategorien"))
	rg.GET("/tags", publicLookupList[models.Tag](db, log, "Public-Tags"))
	rg.GET("/services", publicLookupList[models.Service](db, log, "Public-Services"))
	rg.GET("/industries", publicLookupList[models.Industry](db, log, "Public-Branchen"))
}

func publicLookupList[T any](db *gorm.DB, log *zap.Logger, logName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var records []T
		if err := db.Model(new(T)).Order("name asc").Find(&records).Error; err != nil {
			log.Error(logName+"-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		setPublicCacheHeader(c)
		c.JSON(http.StatusOK, gin.H{"data": records})
	}
}
