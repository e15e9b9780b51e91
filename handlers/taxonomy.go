package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/middleware"
	"content-hub/models"
	"content-hub/services"
)

type lookupInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// lookupHooks kapselt die typabhängigen Zugriffe, damit alle vier
// Nachschlagetabellen denselben Routensatz teilen können.
type lookupHooks[T any] struct {
	// singular taucht in Fehlermeldungen und Logs auf ("category", "tag", ...).
	singular string
	// hasDescription steuert, ob das Beschreibungsfeld gebunden wird.
	hasDescription bool
	// usage listet die Relationen, die ein Löschen blockieren.
	usage []services.UsageRelation

	id    func(*T) uint
	slug  func(*T) string
	name  func(*T) string
	build func(in lookupInput, slug string, userID uint) T
}

func registerLookupRoutes[T any](rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger, hooks lookupHooks[T]) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 50)

		filter := func(q *gorm.DB) *gorm.DB {
			if v := c.Query("q"); v != "" {
				q = q.Where("LOWER(name) LIKE ?", likePattern(v))
			}
			return q
		}

		var total int64
		if err := db.Model(new(T)).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("Lookup-Count fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var records []T
		if err := db.Model(new(T)).Scopes(filter).Order("name asc").
			Limit(limit).Offset(offset).Find(&records).Error; err != nil {
			log.Error("Lookup-Liste fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: records, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var record T
		if err := db.First(&record, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": hooks.singular + " not found"})
				return
			}
			log.Error("Lookup-Abruf fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, record)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var in lookupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}

		slug, err := services.ResolveSlug(strVal(in.Slug), *in.Name)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		taken, err := services.SlugTaken(db, new(T), slug, 0)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		if taken {
			c.JSON(http.StatusConflict, gin.H{"error": "slug already in use", "slug": slug})
			return
		}

		record := hooks.build(in, slug, user.ID)
		if err := db.Create(&record).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}

		log.Info("Lookup angelegt", zap.String("type", hooks.singular),
			zap.Uint("id", hooks.id(&record)), zap.String("slug", slug))
		c.JSON(http.StatusCreated, record)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var record T
		if err := db.First(&record, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": hooks.singular + " not found"})
				return
			}
			log.Error("Lookup-Abruf für Update fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var in lookupInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
				return
			}
			updates["name"] = strings.TrimSpace(*in.Name)
		}
		if hooks.hasDescription && in.Description != nil {
			updates["description"] = *in.Description
		}

		if in.Slug != nil || in.Name != nil {
			name := hooks.name(&record)
			if in.Name != nil {
				name = *in.Name
			}
			slug, err := services.ResolveSlug(strVal(in.Slug), name)
			if err != nil {
				handleWriteError(c, log, err)
				return
			}
			if slug != hooks.slug(&record) {
				taken, err := services.SlugTaken(db, new(T), slug, hooks.id(&record))
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

		updates["updated_by_id"] = user.ID
		if err := db.Model(&record).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.First(&record, hooks.id(&record))

		c.JSON(http.StatusOK, record)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var record T
		if err := db.First(&record, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": hooks.singular + " not found"})
				return
			}
			log.Error("Lookup-Abruf für Delete fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		usage, total, err := services.CountUsage(db, hooks.id(&record), hooks.usage)
		if err != nil {
			log.Error("Nutzungszählung fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if total > 0 {
			usage["total"] = total
			c.JSON(http.StatusConflict, gin.H{
				"error": hooks.singular + " is still in use",
				"usage": usage,
			})
			return
		}

		if err := db.Model(&record).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Delete(&record).Error; err != nil {
			log.Error("Lookup-Delete fehlgeschlagen", zap.String("type", hooks.singular), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": hooks.singular + " deleted"})
	})
}

// RegisterLookupRoutes hängt die vier Nachschlagetabellen unter das CMS-Routing.
func RegisterLookupRoutes(api *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	registerLookupRoutes(api.Group("/categories"), db, log, lookupHooks[models.Category]{
		singular:       "category",
		hasDescription: true,
		usage: []services.UsageRelation{
			services.ColumnUsage("articles", &models.Article{}, "category_id"),
		},
		id:   func(r *models.Category) uint { return r.ID },
		slug: func(r *models.Category) string { return r.Slug },
		name: func(r *models.Category) string { return r.Name },
		build: func(in lookupInput, slug string, userID uint) models.Category {
			return models.Category{
				Name:        strings.TrimSpace(*in.Name),
				Slug:        slug,
				Description: strVal(in.Description),
				CreatedByID: &userID,
				UpdatedByID: &userID,
			}
		},
	})

	registerLookupRoutes(api.Group("/tags"), db, log, lookupHooks[models.Tag]{
		singular: "tag",
		usage:    []services.UsageRelation{services.TagUsage()},
		id:       func(r *models.Tag) uint { return r.ID },
		slug:     func(r *models.Tag) string { return r.Slug },
		name:     func(r *models.Tag) string { return r.Name },
		build: func(in lookupInput, slug string, userID uint) models.Tag {
			return models.Tag{
				Name:        strings.TrimSpace(*in.Name),
				Slug:        slug,
				CreatedByID: &userID,
				UpdatedByID: &userID,
			}
		},
	})

	registerLookupRoutes(api.Group("/services"), db, log, lookupHooks[models.Service]{
		singular:       "service",
		hasDescription: true,
		usage: []services.UsageRelation{
			services.ColumnUsage("articles", &models.Article{}, "service_id"),
			services.ColumnUsage("case_studies", &models.CaseStudy{}, "service_id"),
		},
		id:   func(r *models.Service) uint { return r.ID },
		slug: func(r *models.Service) string { return r.Slug },
		name: func(r *models.Service) string { return r.Name },
		build: func(in lookupInput, slug string, userID uint) models.Service {
			return models.Service{
				Name:        strings.TrimSpace(*in.Name),
				Slug:        slug,
				Description: strVal(in.Description),
				CreatedByID: &userID,
				UpdatedByID: &userID,
			}
		},
	})

	registerLookupRoutes(api.Group("/industries"), db, log, lookupHooks[models.Industry]{
		singular:       "industry",
		hasDescription: true,
		usage: []services.UsageRelation{
			services.ColumnUsage("articles", &models.Article{}, "industry_id"),
			services.ColumnUsage("case_studies", &models.CaseStudy{}, "industry_id"),
		},
		id:   func(r *models.Industry) uint { return r.ID },
		slug: func(r *models.Industry) string { return r.Slug },
		name: func(r *models.Industry) string { return r.Name },
		build: func(in lookupInput, slug string, userID uint) models.Industry {
			return models.Industry{
				Name:        strings.TrimSpace(*in.Name),
				Slug:        slug,
				Description: strVal(in.Description),
				CreatedByID: &userID,
				UpdatedByID: &userID,
			}
		},
	})
}
