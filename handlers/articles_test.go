package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/models"
)

func TestCreateArticleDerivesSlugAndSanitizes(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title":       "Mein Erster Artikel",
		"body":        `<p>ok</p><script>alert("xss")</script>`,
		"category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))

	body := decode(t, w)
	assert.Equal(t, "mein-erster-artikel", body["slug"])
	assert.Equal(t, models.StatusDraft, body["status"])
	assert.Contains(t, body["body"], "<p>ok</p>")
	assert.NotContains(t, body["body"], "script")

	var stored models.Article
	require.NoError(t, env.db.First(&stored, "slug = ?", "mein-erster-artikel").Error)
	require.NotNil(t, stored.CreatedByID)
	assert.Equal(t, env.admin.ID, *stored.CreatedByID)
}

func TestCreateArticleRequiresTitleAndCategory(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{"category_id": cat.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{"title": "Ohne Rubrik"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Referenz auf nicht existierende Rubrik
	w = env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Kaputt", "category_id": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "does not exist")
}

func TestCreateArticleDuplicateSlugConflicts(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Doppelt", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))

	w = env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Anders", "slug": "doppelt", "category_id": cat.ID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "doppelt", decode(t, w)["slug"])
}

func TestDeletedArticleFreesItsSlug(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Wiederkehr", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/articles/%v", id), nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	// Gelöschte Artikel sind unsichtbar und geben ihren Slug frei.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/articles/%v", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Wiederkehr", "category_id": cat.ID,
	})
	assert.Equal(t, http.StatusCreated, w.Code, statusBody(w))
}

func TestArticleScheduledRequiresScheduledAt(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Geplant", "status": models.StatusScheduled, "category_id": cat.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Geplant", "status": models.StatusScheduled, "category_id": cat.ID,
		"scheduled_at": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusCreated, w.Code, statusBody(w))
}

func TestArticleListPaginationMeta(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
			"title": fmt.Sprintf("Artikel %d", i), "category_id": cat.ID,
		})
		require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	}

	w := env.do(t, http.MethodGet, "/api/articles/?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	body := decode(t, w)
	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 3, meta["total"])
	assert.EqualValues(t, 1, meta["page"])
	assert.EqualValues(t, 2, meta["limit"])
	assert.EqualValues(t, 2, meta["totalPages"])
	assert.Len(t, body["data"], 2)

	w = env.do(t, http.MethodGet, "/api/articles/?page=2&limit=2", nil)
	body = decode(t, w)
	assert.Len(t, body["data"], 1)
}

func TestUpdateArticlePartialAndNullableRefs(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")
	media := env.seedMedia(t, "articles/2026/08/thumb.png")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Original", "category_id": cat.ID, "thumbnail_id": media.ID,
		"excerpt": "bleibt",
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	// Nur der Titel wird geändert; explizites null löst die Thumbnail-Referenz.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/articles/%v", id), map[string]interface{}{
		"title":        "Geändert",
		"thumbnail_id": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	var stored models.Article
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, "Geändert", stored.Title)
	assert.Equal(t, "bleibt", stored.Excerpt)
	assert.Nil(t, stored.ThumbnailID)
	assert.Equal(t, "geandert", stored.Slug, "slug follows the new title when none is sent")
	require.NotNil(t, stored.UpdatedByID)
	assert.Equal(t, env.admin.ID, *stored.UpdatedByID)
}

func TestUpdateArticleTagsReplace(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")
	tagA := models.Tag{Name: "Go", Slug: "go"}
	tagB := models.Tag{Name: "Cloud", Slug: "cloud"}
	require.NoError(t, env.db.Create(&tagA).Error)
	require.NoError(t, env.db.Create(&tagB).Error)

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Mit Tags", "category_id": cat.ID, "tag_ids": []uint{tagA.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/articles/%v", id), map[string]interface{}{
		"tag_ids": []uint{tagB.ID},
	})
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	var stored models.Article
	require.NoError(t, env.db.Preload("Tags").First(&stored, id).Error)
	require.Len(t, stored.Tags, 1)
	assert.Equal(t, tagB.ID, stored.Tags[0].ID)
}

func TestBulkDeleteArticles(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	var ids []uint
	for i := 0; i < 3; i++ {
		article := models.Article{Title: fmt.Sprintf("A%d", i), Slug: fmt.Sprintf("a%d", i),
			Status: models.StatusDraft, CategoryID: cat.ID}
		require.NoError(t, env.db.Create(&article).Error)
		ids = append(ids, article.ID)
	}

	w := env.do(t, http.MethodPost, "/api/articles/bulk-delete", map[string]interface{}{
		"ids": ids[:2],
	})
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))
	assert.EqualValues(t, 2, decode(t, w)["affected"])

	var remaining int64
	require.NoError(t, env.db.Model(&models.Article{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestUpdateArticlePublishWithNullTimestampStillStamps(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Freigabe", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	// Explizites null zum Statuswechsel darf keine published-Zeile ohne
	// Zeitstempel hinterlassen.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/articles/%v", id), map[string]interface{}{
		"status": models.StatusPublished, "published_at": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	var stored models.Article
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, models.StatusPublished, stored.Status)
	require.NotNil(t, stored.PublishedAt)
	assert.WithinDuration(t, time.Now(), *stored.PublishedAt, time.Minute)
}

func TestUpdateArticleScheduledWithNullTimestampRejected(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	scheduledAt := time.Now().Add(time.Hour)
	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Geplant", "status": models.StatusScheduled, "category_id": cat.ID,
		"scheduled_at": scheduledAt.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	// Der Sweep kann eine scheduled-Zeile ohne scheduled_at nie auswerten,
	// also wird der Merge abgelehnt, obwohl die Zeile vorher eines hatte.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/articles/%v", id), map[string]interface{}{
		"status": models.StatusScheduled, "scheduled_at": nil,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, statusBody(w))

	// Gleiches Ergebnis ohne expliziten Status: der gespeicherte Status zählt.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/articles/%v", id), map[string]interface{}{
		"scheduled_at": nil,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, statusBody(w))

	var stored models.Article
	require.NoError(t, env.db.First(&stored, id).Error)
	assert.Equal(t, models.StatusScheduled, stored.Status)
	require.NotNil(t, stored.ScheduledAt)
	assert.WithinDuration(t, scheduledAt, *stored.ScheduledAt, time.Second)
}

func TestDeleteArticleStampsEditor(t *testing.T) {
	env := setupTest(t)
	cat := env.seedCategory(t, "News", "news")

	w := env.do(t, http.MethodPost, "/api/articles/", map[string]interface{}{
		"title": "Weg damit", "category_id": cat.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, statusBody(w))
	id := decode(t, w)["id"]

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/articles/%v", id), nil)
	require.Equal(t, http.StatusOK, w.Code, statusBody(w))

	var stored models.Article
	require.NoError(t, env.db.Unscoped().First(&stored, id).Error)
	require.NotNil(t, stored.UpdatedByID)
	assert.Equal(t, env.admin.ID, *stored.UpdatedByID)
	assert.True(t, stored.DeletedAt.Valid)
}
