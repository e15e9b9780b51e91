package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"content-hub/config"
	"content-hub/middleware"
	"content-hub/models"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterAuthRoutes konfiguriert Login und die Me-Abfrage. Der Login selbst
// ist die einzige unauthentifizierte Route der Verwaltungszone.
func RegisterAuthRoutes(public, protected *gin.RouterGroup, db *gorm.DB, log *zap.Logger, cfg *config.Config) {
	public.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		var user models.User
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			// Unbekannte Mail und falsches Passwort sind nicht unterscheidbar.
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if !user.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})
			return
		}

		token, err := middleware.GenerateToken(cfg, &user)
		if err != nil {
			log.Error("Token-Erzeugung fehlgeschlagen", zap.Uint("user_id", user.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Info("Login erfolgreich", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	})

	protected.GET("/me", func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, user)
	})
}
