package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCacheTest(t *testing.T) (*gin.Engine, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hits := 0
	router := gin.New()
	router.Use(PublicCache(rdb, 60*time.Second, zap.NewNop()))
	router.GET("/public/articles", func(c *gin.Context) {
		hits++
		c.Header("Cache-Control", "public, max-age=60")
		c.JSON(http.StatusOK, gin.H{"data": []string{"eintrag"}})
	})
	router.POST("/public/articles", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, &hits
}

func TestPublicCacheServesSecondRequestFromRedis(t *testing.T) {
	router, hits := setupCacheTest(t)

	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/public/articles", nil))
	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, 1, *hits)

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/public/articles", nil))
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, *hits, "zweiter Request darf den Handler nicht erreichen")
	assert.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestPublicCacheHitKeepsCacheControlHeader(t *testing.T) {
	router, _ := setupCacheTest(t)

	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/public/articles", nil))
	require.Equal(t, "public, max-age=60", w1.Header().Get("Cache-Control"))

	// Der Hit-Pfad muss dieselbe Cache-Direktive tragen wie der Miss-Pfad.
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/public/articles", nil))
	assert.Equal(t, "public, max-age=60", w2.Header().Get("Cache-Control"))
}

func TestPublicCacheIgnoresNonGET(t *testing.T) {
	router, hits := setupCacheTest(t)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/public/articles", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, *hits)
}
