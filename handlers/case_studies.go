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

type caseStudyInput struct {
	Title         *string    `json:"title"`
	Slug          *string    `json:"slug"`
	Client        *string    `json:"client"`
	Overview      *string    `json:"overview"`
	Problem       *string    `json:"problem"`
	Solution      *string    `json:"solution"`
	Status        *string    `json:"status"`
	PublishedAt   *time.Time `json:"published_at"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	ServiceID     *uint      `json:"service_id"`
	IndustryID    *uint      `json:"industry_id"`
	ThumbnailID   *uint      `json:"thumbnail_id"`
	PublicationID *uint      `json:"publication_id"`
}

var caseStudySortFields = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"published_at": "published_at",
	"title":        "title",
}

func caseStudyFilter(c *gin.Context) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}
		if v := c.Query("service_id"); v != "" {
			q = q.Where("service_id = ?", v)
		}
		if v := c.Query("industry_id"); v != "" {
			q = q.Where("industry_id = ?", v)
		}
		if v := c.Query("q"); v != "" {
			p := likePattern(v)
			q = q.Where("LOWER(title) LIKE ? OR LOWER(client) LIKE ?", p, p)
		}
		return q
	}
}

func caseStudyPreloads(q *gorm.DB) *gorm.DB {
	return q.Preload("Service").Preload("Industry").Preload("Thumbnail").Preload("Publication")
}

// checkCaseStudyRefs validiert die optionalen Referenzen einer Fallstudie.
func checkCaseStudyRefs(db *gorm.DB, in *caseStudyInput) error {
	if in.ServiceID != nil {
		if err := services.CheckRef(db, &models.Service{}, *in.ServiceID, "service"); err != nil {
			return err
		}
	}
	if in.IndustryID != nil {
		if err := services.CheckRef(db, &models.Industry{}, *in.IndustryID, "industry"); err != nil {
			return err
		}
	}
	if in.ThumbnailID != nil {
		if err := services.CheckRef(db, &models.Media{}, *in.ThumbnailID, "thumbnail"); err != nil {
			return err
		}
	}
	if in.PublicationID != nil {
		if err := services.CheckRef(db, &models.Media{}, *in.PublicationID, "publication"); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCaseStudyRoutes konfiguriert die CMS-Routen für Fallstudien.
func RegisterCaseStudyRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 10)

		var total int64
		if err := db.Model(&models.CaseStudy{}).Scopes(caseStudyFilter(c)).Count(&total).Error; err != nil {
			log.Error("Fallstudien-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var studies []models.CaseStudy
		query := db.Model(&models.CaseStudy{}).Scopes(caseStudyFilter(c))
		query = applySort(query, c, caseStudySortFields, "created_at desc")
		if err := caseStudyPreloads(query).Limit(limit).Offset(offset).Find(&studies).Error; err != nil {
			log.Error("Fallstudien-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: studies, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var study models.CaseStudy
		if err := caseStudyPreloads(db).First(&study, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case study not found"})
				return
			}
			log.Error("Fallstudien-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, study)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var in caseStudyInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if err := checkCaseStudyRefs(db, &in); err != nil {
			handleWriteError(c, log, err)
			return
		}

		slug, err := services.ResolveSlug(strVal(in.Slug), *in.Title)
		if err != nil {
			handleWriteError(c, log, err)
			return
		}
		taken, err := services.SlugTaken(db, &models.CaseStudy{}, slug, 0)
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

		study := models.CaseStudy{
			Title:         strings.TrimSpace(*in.Title),
			Slug:          slug,
			Client:        strVal(in.Client),
			Overview:      services.SanitizeRichText(strVal(in.Overview)),
			Problem:       services.SanitizeRichText(strVal(in.Problem)),
			Solution:      services.SanitizeRichText(strVal(in.Solution)),
			Status:        status,
			PublishedAt:   publishedAt,
			ScheduledAt:   scheduledAt,
			ServiceID:     in.ServiceID,
			IndustryID:    in.IndustryID,
			ThumbnailID:   in.ThumbnailID,
			PublicationID: in.PublicationID,
			CreatedByID:   &user.ID,
			UpdatedByID:   &user.ID,
		}
		if err := db.Create(&study).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		caseStudyPreloads(db).First(&study, study.ID)

		log.Info("Fallstudie angelegt", zap.Uint("id", study.ID), zap.String("slug", study.Slug))
		c.JSON(http.StatusCreated, study)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var study models.CaseStudy
		if err := db.First(&study, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case study not found"})
				return
			}
			log.Error("Fallstudien-Abruf für Update fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var in caseStudyInput
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
		if in.Client != nil {
			updates["client"] = *in.Client
		}
		if in.Overview != nil {
			updates["overview"] = services.SanitizeRichText(*in.Overview)
		}
		if in.Problem != nil {
			updates["problem"] = services.SanitizeRichText(*in.Problem)
		}
		if in.Solution != nil {
			updates["solution"] = services.SanitizeRichText(*in.Solution)
		}

		if in.Slug != nil || in.Title != nil {
			title := study.Title
			if in.Title != nil {
				title = *in.Title
			}
			slug, err := services.ResolveSlug(strVal(in.Slug), title)
			if err != nil {
				handleWriteError(c, log, err)
				return
			}
			if slug != study.Slug {
				taken, err := services.SlugTaken(db, &models.CaseStudy{}, slug, study.ID)
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

		for _, ref := range []struct {
			key   string
			model interface{}
			field string
			value *uint
		}{
			{"service_id", &models.Service{}, "service", in.ServiceID},
			{"industry_id", &models.Industry{}, "industry", in.IndustryID},
			{"thumbnail_id", &models.Media{}, "thumbnail", in.ThumbnailID},
			{"publication_id", &models.Media{}, "publication", in.PublicationID},
		} {
			if !sent(ref.key) {
				continue
			}
			if ref.value != nil {
				if err := services.CheckRef(db, ref.model, *ref.value, ref.field); err != nil {
					handleWriteError(c, log, err)
					return
				}
			}
			updates[ref.key] = ref.value
		}

		current := lifecycleState{Status: study.Status, PublishedAt: study.PublishedAt, ScheduledAt: study.ScheduledAt}
		if err := mergeLifecycle(updates, current, in.Status, sent, in.PublishedAt, in.ScheduledAt); err != nil {
			handleWriteError(c, log, err)
			return
		}

		updates["updated_by_id"] = user.ID
		if err := db.Model(&study).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		caseStudyPreloads(db).First(&study, study.ID)

		log.Info("Fallstudie aktualisiert", zap.Uint("id", study.ID))
		c.JSON(http.StatusOK, study)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		var study models.CaseStudy
		if err := db.First(&study, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "case study not found"})
				return
			}
			log.Error("Fallstudien-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		if err := db.Model(&study).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Uint("id", study.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if err := db.Delete(&study).Error; err != nil {
			log.Error("Fallstudien-Delete fehlgeschlagen", zap.Uint("id", study.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "case study deleted"})
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

		if err := db.Model(&models.CaseStudy{}).Where("id IN ?", req.IDs).Update("updated_by_id", user.ID).Error; err != nil {
			log.Error("Bearbeiter-Stempel fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		res := db.Where("id IN ?", req.IDs).Delete(&models.CaseStudy{})
		if res.Error != nil {
			log.Error("Fallstudien-Bulk-Delete fehlgeschlagen", zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"affected": res.RowsAffected})
	})
}
