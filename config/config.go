package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	// Auth
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	TokenLifetime time.Duration `envconfig:"TOKEN_LIFETIME" default:"24h"`

	// Seed-Admin, wird nur angelegt wenn die users-Tabelle leer ist
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@content-hub.local"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"change-me-now"`

	// Publish-Sweep (scheduled -> published)
	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"*/5 * * * *"`

	// Medien-Storage: "local" oder "s3"
	MediaStorage string `envconfig:"MEDIA_STORAGE" default:"local"`
	MediaDir     string `envconfig:"MEDIA_DIR" default:"./media"`
	MediaBaseURL string `envconfig:"MEDIA_BASE_URL" default:"/media"`
	MediaMaxSize int64  `envconfig:"MEDIA_MAX_SIZE" default:"10485760"`

	// S3-Zugang (nur bei MEDIA_STORAGE=s3 erforderlich)
	S3Key    string `envconfig:"S3_KEY"`
	S3Secret string `envconfig:"S3_SECRET"`
	S3URL    string `envconfig:"S3_URL"`
	S3Region string `envconfig:"S3_REGION"`
	S3Bucket string `envconfig:"S3_BUCKET"`

	// Optionaler Response-Cache für die Public-Zone
	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	PublicCacheTTL time.Duration `envconfig:"PUBLIC_CACHE_TTL" default:"60s"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
