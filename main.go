package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"content-hub/config"
	"content-hub/handlers"
	"content-hub/middleware"
	"content-hub/models"
	"content-hub/services"
	"content-hub/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var publishedCounter prometheus.Counter

func init() {
	publishedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "content_published_total",
			Help: "Total number of scheduled content items auto-published by the sweep job.",
		},
	)
	prometheus.MustRegister(publishedCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to content database.")

	// Auto-Migration
	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(
		&models.User{},
		&models.Media{},
		&models.Category{},
		&models.Tag{},
		&models.Service{},
		&models.Industry{},
		&models.Article{},
		&models.CaseStudy{},
		&models.Event{},
		&models.Banner{},
	); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Seeding
	seedAdminUser(db, cfg, logging)

	// Setup Media-Storage
	var store storage.Storage
	switch cfg.MediaStorage {
	case "s3":
		s3Store, err := storage.NewS3Storage(cfg)
		if err != nil {
			logging.Fatal("S3 storage creation failed", zap.Error(err))
		}
		store = s3Store
		logging.Info("Media storage: S3", zap.String("bucket", cfg.S3Bucket))
	default:
		localStore, err := storage.NewLocalStorage(cfg.MediaDir, cfg.MediaBaseURL)
		if err != nil {
			logging.Fatal("Local storage creation failed", zap.Error(err))
		}
		store = localStore
		logging.Info("Media storage: local", zap.String("dir", cfg.MediaDir))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Verwaltungszone: Login offen, alles andere hinter JWT + Rollenprüfung.
	api := router.Group("/api")
	authFree := router.Group("/api/auth")
	protected := api.Group("/auth")
	protected.Use(middleware.AuthRequired(db, cfg))
	handlers.RegisterAuthRoutes(authFree, protected, db, logging, cfg)

	api.Use(middleware.AuthRequired(db, cfg))
	api.Use(middleware.RequireWriteRole())

	handlers.RegisterArticleRoutes(api.Group("/articles"), db, logging)
	handlers.RegisterCaseStudyRoutes(api.Group("/case-studies"), db, logging)
	handlers.RegisterEventRoutes(api.Group("/events"), db, logging)
	handlers.RegisterBannerRoutes(api.Group("/banners"), db, logging)
	handlers.RegisterLookupRoutes(api, db, logging)
	handlers.RegisterMediaRoutes(api.Group("/media"), db, logging, store, cfg)

	users := api.Group("/users")
	users.Use(middleware.RequireRole(models.RoleAdmin))
	handlers.RegisterUserRoutes(users, db, logging)

	// Public-Zone: unauthentifiziert, nur veröffentlichte Inhalte.
	public := router.Group("/public")
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		public.Use(middleware.PublicCache(rdb, cfg.PublicCacheTTL, logging))
		logging.Info("Public response cache enabled", zap.String("redis", cfg.RedisAddr))
	}
	handlers.RegisterPublicRoutes(public, db, logging)

	// Lokale Medien direkt ausliefern; bei S3 zeigt die URL auf den Bucket.
	if cfg.MediaStorage != "s3" {
		router.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	// Setup Cron
	sweeper := services.NewSweeper(db, logging)
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SweepSchedule, func() {
		logging.Info("Running scheduled publish sweep...")
		count, err := sweeper.Run(context.Background())
		if err != nil {
			logging.Error("Publish sweep failed", zap.Error(err))
		} else {
			logging.Info("Publish sweep completed", zap.Int64("published", count))
		}
		publishedCounter.Add(float64(count))
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// seedAdminUser legt den initialen Admin-Account an, aber nur solange die
// users-Tabelle komplett leer ist.
func seedAdminUser(db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Warn("Failed to hash admin password", zap.Error(err))
		return
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.Warn("Failed to seed admin user", zap.Error(err))
	} else {
		logger.Info("Default admin user seeded.", zap.String("email", admin.Email))
	}
}
