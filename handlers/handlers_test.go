package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"content-hub/config"
	"content-hub/middleware"
	"content-hub/models"
	"content-hub/storage"
)

// testEnv fährt den kompletten Routenbaum gegen eine In-Memory-Datenbank hoch.
// Die Authentifizierung wird durch einen injizierten Admin ersetzt; die echten
// JWT-Pfade sind im middleware-Paket getestet.
type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	admin  *models.User
	cfg    *config.Config
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
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
	))

	admin := &models.User{Name: "Admin", Email: "admin@test.local", PasswordHash: "x",
		Role: models.RoleAdmin, Active: true}
	require.NoError(t, db.Create(admin).Error)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		TokenLifetime: time.Hour,
		MediaStorage:  "local",
		MediaDir:      t.TempDir(),
		MediaBaseURL:  "/media",
		MediaMaxSize:  1 << 20,
	}
	store, err := storage.NewLocalStorage(cfg.MediaDir, cfg.MediaBaseURL)
	require.NoError(t, err)

	log := zap.NewNop()
	router := gin.New()

	authFree := router.Group("/api/auth")

	api := router.Group("/api")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, admin)
		c.Next()
	})
	RegisterAuthRoutes(authFree, api.Group("/auth"), db, log, cfg)
	RegisterArticleRoutes(api.Group("/articles"), db, log)
	RegisterCaseStudyRoutes(api.Group("/case-studies"), db, log)
	RegisterEventRoutes(api.Group("/events"), db, log)
	RegisterBannerRoutes(api.Group("/banners"), db, log)
	RegisterLookupRoutes(api, db, log)
	RegisterMediaRoutes(api.Group("/media"), db, log, store, cfg)

	users := api.Group("/users")
	RegisterUserRoutes(users, db, log)

	RegisterPublicRoutes(router.Group("/public"), db, log)

	return &testEnv{db: db, router: router, admin: admin, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func (e *testEnv) seedCategory(t *testing.T, name, slug string) *models.Category {
	t.Helper()
	cat := models.Category{Name: name, Slug: slug}
	require.NoError(t, e.db.Create(&cat).Error)
	return &cat
}

func (e *testEnv) seedMedia(t *testing.T, key string) *models.Media {
	t.Helper()
	media := models.Media{FileName: "bild.png", StoredPath: key,
		URL: "/media/" + key, MimeType: "image/png", Size: 4, Module: "articles"}
	require.NoError(t, e.db.Create(&media).Error)
	return &media
}

func statusBody(w *httptest.ResponseRecorder) string {
	return http.StatusText(w.Code) + ": " + w.Body.String()
}
