package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/config"
	"content-hub/middleware"
	"content-hub/models"
	"content-hub/services"
	"content-hub/storage"
)

var moduleNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var mediaSortFields = map[string]string{
	"created_at": "created_at",
	"file_name":  "file_name",
	"size":       "size",
}

// mediaUsage listet alle Spalten, die eine Mediendatei referenzieren können.
// Solange eine davon trifft, wird das harte Löschen verweigert.
func mediaUsage() []services.UsageRelation {
	return []services.UsageRelation{
		services.ColumnUsage("articles", &models.Article{}, "thumbnail_id"),
		services.ColumnUsage("case_studies", &models.CaseStudy{}, "thumbnail_id"),
		services.ColumnUsage("case_studies", &models.CaseStudy{}, "publication_id"),
		services.ColumnUsage("events", &models.Event{}, "thumbnail_id"),
		services.ColumnUsage("banners", &models.Banner{}, "thumbnail_id"),
	}
}

// RegisterMediaRoutes konfiguriert Upload, Liste und den bewachten Hard-Delete
// für Mediendateien.
func RegisterMediaRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger, store storage.Storage, cfg *config.Config) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 20)

		filter := func(q *gorm.DB) *gorm.DB {
			if v := c.Query("module"); v != "" {
				q = q.Where("module = ?", v)
			}
			if v := c.Query("q"); v != "" {
				q = q.Where("LOWER(file_name) LIKE ?", likePattern(v))
			}
			return q
		}

		var total int64
		if err := db.Model(&models.Media{}).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("Medien-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var files []models.Media
		query := db.Model(&models.Media{}).Scopes(filter)
		query = applySort(query, c, mediaSortFields, "created_at desc")
		if err := query.Limit(limit).Offset(offset).Find(&files).Error; err != nil {
			log.Error("Medien-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: files, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var media models.Media
		if err := db.First(&media, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
				return
			}
			log.Error("Medien-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, media)
	})

	rg.POST("/", func(c *gin.Context) {
		user := middleware.CurrentUser(c)

		module := c.PostForm("module")
		if !moduleNamePattern.MatchString(module) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "module is required (lowercase letters, digits, hyphens)"})
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > cfg.MediaMaxSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("file exceeds maximum size of %d bytes", cfg.MediaMaxSize),
			})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			log.Error("Upload konnte nicht geöffnet werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			log.Error("Upload konnte nicht gelesen werden", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		now := time.Now()
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		key := fmt.Sprintf("%s/%d/%02d/%s%s", module, now.Year(), now.Month(), uuid.NewString(), ext)

		url, err := store.Save(c.Request.Context(), key, data, contentType)
		if err != nil {
			log.Error("Medien-Storage-Save fehlgeschlagen", zap.String("key", key), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error"})
			return
		}

		media := models.Media{
			FileName:     filepath.Base(fileHeader.Filename),
			StoredPath:   key,
			URL:          url,
			MimeType:     contentType,
			Size:         fileHeader.Size,
			Module:       module,
			UploadedByID: &user.ID,
		}
		if err := db.Create(&media).Error; err != nil {
			// Metadaten-Insert fehlgeschlagen: gespeicherte Datei wieder entfernen,
			// damit kein verwaistes Objekt zurückbleibt.
			if delErr := store.Delete(c.Request.Context(), key); delErr != nil {
				log.Warn("Rollback der hochgeladenen Datei fehlgeschlagen",
					zap.String("key", key), zap.Error(delErr))
			}
			handleWriteError(c, log, err)
			return
		}

		log.Info("Mediendatei hochgeladen", zap.Uint("id", media.ID),
			zap.String("key", key), zap.Int64("size", media.Size))
		c.JSON(http.StatusCreated, media)
	})

	rg.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), func(c *gin.Context) {
		var media models.Media
		if err := db.First(&media, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "media not found"})
				return
			}
			log.Error("Medien-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		usage, total, err := services.CountUsage(db, media.ID, mediaUsage())
		if err != nil {
			log.Error("Medien-Nutzungszählung fehlgeschlagen", zap.Uint("id", media.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if total > 0 {
			usage["total"] = total
			c.JSON(http.StatusConflict, gin.H{
				"error": "media is still in use",
				"usage": usage,
			})
			return
		}

		if err := db.Delete(&media).Error; err != nil {
			log.Error("Medien-Delete fehlgeschlagen", zap.Uint("id", media.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		// Die Datei selbst ist nachrangig: ein Fehler hier lässt den erfolgreichen
		// Metadaten-Delete bestehen und wird nur protokolliert.
		if err := store.Delete(c.Request.Context(), media.StoredPath); err != nil {
			log.Warn("Mediendatei konnte nicht entfernt werden",
				zap.String("key", media.StoredPath), zap.Error(err))
		}

		log.Info("Mediendatei gelöscht", zap.Uint("id", media.ID), zap.String("key", media.StoredPath))
		c.JSON(http.StatusOK, gin.H{"message": "media deleted"})
	})
}
