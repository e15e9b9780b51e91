package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"content-hub/middleware"
	"content-hub/models"
)

type userInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// RegisterUserRoutes konfiguriert die Account-Verwaltung. Die Routen werden in
// main nur für Admins freigeschaltet.
func RegisterUserRoutes(rg *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	rg.GET("/", func(c *gin.Context) {
		page, limit, offset := parsePagination(c, 20)

		filter := func(q *gorm.DB) *gorm.DB {
			if v := c.Query("role"); v != "" {
				q = q.Where("role = ?", v)
			}
			if v := c.Query("q"); v != "" {
				p := likePattern(v)
				q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", p, p)
			}
			return q
		}

		var total int64
		if err := db.Model(&models.User{}).Scopes(filter).Count(&total).Error; err != nil {
			log.Error("User-Count fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var users []models.User
		if err := db.Model(&models.User{}).Scopes(filter).Order("email asc").
			Limit(limit).Offset(offset).Find(&users).Error; err != nil {
			log.Error("User-Liste fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, ListResponse{Data: users, Meta: newMeta(total, page, limit)})
	})

	rg.GET("/:id", func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Error("User-Abruf fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, user)
	})

	rg.POST("/", func(c *gin.Context) {
		var in userInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if in.Email == nil || !strings.Contains(*in.Email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
			return
		}
		if in.Password == nil || len(*in.Password) < 8 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
			return
		}
		role := models.RoleViewer
		if in.Role != nil {
			if !models.ValidRole(*in.Role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role: " + *in.Role})
				return
			}
			role = *in.Role
		}

		email := strings.ToLower(strings.TrimSpace(*in.Email))
		var existing int64
		if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
			log.Error("Email-Prüfung fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if existing > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Passwort-Hashing fehlgeschlagen", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		user := models.User{
			Name:         strVal(in.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         role,
			Active:       true,
		}
		if in.Active != nil {
			user.Active = *in.Active
		}
		if err := db.Create(&user).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}

		log.Info("User angelegt", zap.Uint("id", user.ID), zap.String("email", user.Email), zap.String("role", user.Role))
		c.JSON(http.StatusCreated, user)
	})

	rg.PUT("/:id", func(c *gin.Context) {
		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Error("User-Abruf für Update fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var in userInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*in.Email))
			if !strings.Contains(email, "@") {
				c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
				return
			}
			if email != user.Email {
				var existing int64
				if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&existing).Error; err != nil {
					log.Error("Email-Prüfung fehlgeschlagen", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
					return
				}
				if existing > 0 {
					c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
					return
				}
				updates["email"] = email
			}
		}
		if in.Password != nil {
			if len(*in.Password) < 8 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
			if err != nil {
				log.Error("Passwort-Hashing fehlgeschlagen", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			updates["password_hash"] = string(hash)
		}
		if in.Role != nil {
			if !models.ValidRole(*in.Role) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role: " + *in.Role})
				return
			}
			updates["role"] = *in.Role
		}
		if in.Active != nil {
			updates["active"] = *in.Active
		}

		if err := db.Model(&user).Updates(updates).Error; err != nil {
			handleWriteError(c, log, err)
			return
		}
		db.First(&user, user.ID)

		log.Info("User aktualisiert", zap.Uint("id", user.ID))
		c.JSON(http.StatusOK, user)
	})

	rg.DELETE("/:id", func(c *gin.Context) {
		actor := middleware.CurrentUser(c)

		var user models.User
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			log.Error("User-Abruf für Delete fehlgeschlagen", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if actor != nil && actor.ID == user.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot delete your own account"})
			return
		}

		if err := db.Delete(&user).Error; err != nil {
			log.Error("User-Delete fehlgeschlagen", zap.Uint("id", user.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		log.Info("User gelöscht", zap.Uint("id", user.ID), zap.String("email", user.Email))
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	})
}
