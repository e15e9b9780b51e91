package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"content-hub/models"
)

func TestSweeperPublishesDueContent(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)

	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)

	due := models.Article{Title: "Fällig", Slug: "faellig", Status: models.StatusScheduled,
		ScheduledAt: &past, CategoryID: cat.ID}
	notYet := models.Article{Title: "Später", Slug: "spaeter", Status: models.StatusScheduled,
		ScheduledAt: &future, CategoryID: cat.ID}
	draft := models.Article{Title: "Entwurf", Slug: "entwurf", Status: models.StatusDraft, CategoryID: cat.ID}
	require.NoError(t, db.Create(&due).Error)
	require.NoError(t, db.Create(&notYet).Error)
	require.NoError(t, db.Create(&draft).Error)

	dueEvent := models.Event{Title: "Messe", Slug: "messe", Status: models.StatusScheduled, ScheduledAt: &past}
	require.NoError(t, db.Create(&dueEvent).Error)

	count, err := NewSweeper(db, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	var got models.Article
	require.NoError(t, db.First(&got, due.ID).Error)
	assert.Equal(t, models.StatusPublished, got.Status)
	require.NotNil(t, got.PublishedAt)
	assert.WithinDuration(t, time.Now(), *got.PublishedAt, 5*time.Second)

	got = models.Article{}
	require.NoError(t, db.First(&got, notYet.ID).Error)
	assert.Equal(t, models.StatusScheduled, got.Status)

	got = models.Article{}
	require.NoError(t, db.First(&got, draft.ID).Error)
	assert.Equal(t, models.StatusDraft, got.Status)

	var gotEvent models.Event
	require.NoError(t, db.First(&gotEvent, dueEvent.ID).Error)
	assert.Equal(t, models.StatusPublished, gotEvent.Status)
}

func TestSweeperIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)

	past := time.Now().Add(-time.Minute)
	article := models.Article{Title: "A", Slug: "a", Status: models.StatusScheduled,
		ScheduledAt: &past, CategoryID: cat.ID}
	require.NoError(t, db.Create(&article).Error)

	sweeper := NewSweeper(db, zap.NewNop())

	count, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count, "a second sweep must not touch anything")
}

func TestSweeperSkipsSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)

	past := time.Now().Add(-time.Minute)
	article := models.Article{Title: "A", Slug: "a", Status: models.StatusScheduled,
		ScheduledAt: &past, CategoryID: cat.ID}
	require.NoError(t, db.Create(&article).Error)
	require.NoError(t, db.Delete(&article).Error)

	count, err := NewSweeper(db, zap.NewNop()).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	var got models.Article
	require.NoError(t, db.Unscoped().First(&got, article.ID).Error)
	assert.Equal(t, models.StatusScheduled, got.Status)
}
