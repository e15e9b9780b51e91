package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/models"
)

func TestCheckRef(t *testing.T) {
	db := newTestDB(t)
	svc := models.Service{Name: "Beratung", Slug: "beratung"}
	require.NoError(t, db.Create(&svc).Error)

	assert.NoError(t, CheckRef(db, &models.Service{}, svc.ID, "service"))

	err := CheckRef(db, &models.Service{}, 9999, "service")
	var refErr *RefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "service does not exist", refErr.Error())
}

func TestCheckRefTreatsSoftDeletedAsAbsent(t *testing.T) {
	db := newTestDB(t)
	svc := models.Service{Name: "Beratung", Slug: "beratung"}
	require.NoError(t, db.Create(&svc).Error)
	require.NoError(t, db.Delete(&svc).Error)

	var refErr *RefError
	assert.ErrorAs(t, CheckRef(db, &models.Service{}, svc.ID, "service"), &refErr)
}

func TestCheckTagRefs(t *testing.T) {
	db := newTestDB(t)
	tagA := models.Tag{Name: "Go", Slug: "go"}
	tagB := models.Tag{Name: "Cloud", Slug: "cloud"}
	require.NoError(t, db.Create(&tagA).Error)
	require.NoError(t, db.Create(&tagB).Error)

	tags, err := CheckTagRefs(db, []uint{tagA.ID, tagB.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// Doppelte IDs zählen nur einmal.
	tags, err = CheckTagRefs(db, []uint{tagA.ID, tagA.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	var refErr *RefError
	_, err = CheckTagRefs(db, []uint{tagA.ID, 9999})
	assert.ErrorAs(t, err, &refErr)

	tags, err = CheckTagRefs(db, nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestCountUsage(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	svc := models.Service{Name: "Beratung", Slug: "beratung"}
	require.NoError(t, db.Create(&svc).Error)

	require.NoError(t, db.Create(&models.Article{
		Title: "A", Slug: "a", Status: models.StatusDraft,
		CategoryID: cat.ID, ServiceID: &svc.ID,
	}).Error)
	require.NoError(t, db.Create(&models.CaseStudy{
		Title: "B", Slug: "b", Status: models.StatusDraft, ServiceID: &svc.ID,
	}).Error)

	rels := []UsageRelation{
		ColumnUsage("articles", &models.Article{}, "service_id"),
		ColumnUsage("case_studies", &models.CaseStudy{}, "service_id"),
	}
	usage, total, err := CountUsage(db, svc.ID, rels)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), usage["articles"])
	assert.Equal(t, int64(1), usage["case_studies"])

	// Relationen ohne Treffer tauchen nicht im Detail auf.
	usage, total, err = CountUsage(db, 9999, rels)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, usage)
}

func TestTagUsageCountsOnlyLiveArticles(t *testing.T) {
	db := newTestDB(t)
	cat := seedCategory(t, db)
	tag := models.Tag{Name: "Go", Slug: "go"}
	require.NoError(t, db.Create(&tag).Error)

	article := models.Article{
		Title: "A", Slug: "a", Status: models.StatusDraft,
		CategoryID: cat.ID, Tags: []models.Tag{tag},
	}
	require.NoError(t, db.Create(&article).Error)

	usage, total, err := CountUsage(db, tag.ID, []UsageRelation{TagUsage()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), usage["articles"])

	// Nach Soft-Delete des Artikels blockiert der Tag nicht mehr.
	require.NoError(t, db.Delete(&article).Error)
	_, total, err = CountUsage(db, tag.ID, []UsageRelation{TagUsage()})
	require.NoError(t, err)
	assert.Zero(t, total)
}
