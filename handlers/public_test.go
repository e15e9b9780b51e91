package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/models"
)

func (e *testEnv) seedArticle(t *testing.T, title, slug, status string) *models.Article {
	t.Helper()
	cat := models.Category{Name: "Rubrik " + slug, Slug: "rubrik-" + slug}
	require.NoError(t, e.db.Create(&cat).Error)

	article := models.Article{Title: title, Slug: slug, Status: status, CategoryID: cat.ID}
	if status == models.StatusPublished {
		now := time.Now()
		article.PublishedAt = &now
	}
	require.NoError(t, e.db.Create(&article).Error)
	return &article
}

func TestPublicArticlesHideDrafts(t *testing.T) {
	env := setupTest(t)
	env.seedArticle(t, "Sichtbar", "sichtbar", models.StatusPublished)
	env.seedArticle(t, "Entwurf", "entwurf", models.StatusDraft)
	env.seedArticle(t, "Archiv", "archiv", models.StatusArchived)

	w := env.do(t, http.MethodGet, "/public/articles", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 1, meta["total"])
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))
}

func TestPublicArticleDetailBySlug(t *testing.T) {
	env := setupTest(t)
	env.seedArticle(t, "Sichtbar", "sichtbar", models.StatusPublished)
	env.seedArticle(t, "Entwurf", "entwurf", models.StatusDraft)

	w := env.do(t, http.MethodGet, "/public/articles/sichtbar", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))
	assert.Equal(t, "Sichtbar", decode(t, w)["title"])

	// Entwürfe sind über die Public-Zone nicht erreichbar, auch nicht per Slug.
	w = env.do(t, http.MethodGet, "/public/articles/entwurf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicArticleHiddenAfterSoftDelete(t *testing.T) {
	env := setupTest(t)
	article := env.seedArticle(t, "Weg", "weg", models.StatusPublished)

	w := env.do(t, http.MethodGet, "/public/articles/weg", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	require.NoError(t, env.db.Delete(article).Error)
	w = env.do(t, http.MethodGet, "/public/articles/weg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicBannersOnlyActivePublishedOrdered(t *testing.T) {
	env := setupTest(t)
	now := time.Now()

	for _, b := range []models.Banner{
		{Title: "Zweiter", Slug: "zweiter", Status: models.StatusPublished, Active: true, Position: 2, PublishedAt: &now},
		{Title: "Erster", Slug: "erster", Status: models.StatusPublished, Active: true, Position: 1, PublishedAt: &now},
		{Title: "Inaktiv", Slug: "inaktiv", Status: models.StatusPublished, Active: true, Position: 0, PublishedAt: &now},
		{Title: "Entwurf", Slug: "entwurf-banner", Status: models.StatusDraft, Active: true, Position: 0},
	} {
		banner := b
		require.NoError(t, env.db.Create(&banner).Error)
	}
	require.NoError(t, env.db.Model(&models.Banner{}).
		Where("slug = ?", "inaktiv").Update("active", false).Error)

	w := env.do(t, http.MethodGet, "/public/banners", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	data := decode(t, w)["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "Erster", data[0].(map[string]interface{})["title"])
	assert.Equal(t, "Zweiter", data[1].(map[string]interface{})["title"])
}

func TestPublicEventsUpcomingFilter(t *testing.T) {
	env := setupTest(t)
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	for _, e := range []models.Event{
		{Title: "Vorbei", Slug: "vorbei", Status: models.StatusPublished, StartsAt: &past, PublishedAt: &now},
		{Title: "Kommend", Slug: "kommend", Status: models.StatusPublished, StartsAt: &future, PublishedAt: &now},
	} {
		event := e
		require.NoError(t, env.db.Create(&event).Error)
	}

	w := env.do(t, http.MethodGet, "/public/events", nil)
	body := decode(t, w)
	assert.Len(t, body["data"], 2)

	w = env.do(t, http.MethodGet, "/public/events?upcoming=true", nil)
	body = decode(t, w)
	require.Len(t, body["data"], 1)
	assert.Equal(t, "Kommend", body["data"].([]interface{})[0].(map[string]interface{})["title"])
}

func TestPublicLookupLists(t *testing.T) {
	env := setupTest(t)
	env.seedCategory(t, "News", "news")
	require.NoError(t, env.db.Create(&models.Tag{Name: "Go", Slug: "go"}).Error)

	w := env.do(t, http.MethodGet, "/public/categories", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))
	assert.Len(t, decode(t, w)["data"], 1)

	w = env.do(t, http.MethodGet, "/public/tags", nil)
	assert.Len(t, decode(t, w)["data"], 1)
}
