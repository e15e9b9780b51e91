package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-hub/models"
)

func TestNormalizeLifecycleDefaultsToDraft(t *testing.T) {
	now := time.Now()
	status, publishedAt, scheduledAt, err := NormalizeLifecycle("", nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, status)
	assert.Nil(t, publishedAt)
	assert.Nil(t, scheduledAt)
}

func TestNormalizeLifecyclePublishedGetsTimestamp(t *testing.T) {
	now := time.Now()
	status, publishedAt, _, err := NormalizeLifecycle(models.StatusPublished, nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPublished, status)
	require.NotNil(t, publishedAt)
	assert.Equal(t, now, *publishedAt)

	// Ein explizites published_at bleibt erhalten.
	explicit := now.Add(-24 * time.Hour)
	_, publishedAt, _, err = NormalizeLifecycle(models.StatusPublished, &explicit, nil, now)
	require.NoError(t, err)
	assert.Equal(t, explicit, *publishedAt)
}

func TestNormalizeLifecycleScheduledRequiresTime(t *testing.T) {
	now := time.Now()
	_, _, _, err := NormalizeLifecycle(models.StatusScheduled, nil, nil, now)
	assert.ErrorIs(t, err, ErrScheduleRequired)

	due := now.Add(time.Hour)
	status, _, scheduledAt, err := NormalizeLifecycle(models.StatusScheduled, nil, &due, now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, status)
	assert.Equal(t, due, *scheduledAt)
}

func TestNormalizeLifecycleRejectsUnknownStatus(t *testing.T) {
	_, _, _, err := NormalizeLifecycle("live", nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
