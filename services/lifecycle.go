package services

import (
	"errors"
	"fmt"
	"time"

	"content-hub/models"
)

var (
	// ErrInvalidStatus: Status außerhalb des geschlossenen Sets.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrScheduleRequired: status=scheduled ohne scheduled_at.
	ErrScheduleRequired = errors.New("scheduled_at required for status scheduled")
)

// NormalizeLifecycle hält Status und Zeitstempel konsistent: published impliziert
// ein konkretes published_at (Default: jetzt), scheduled verlangt ein
// scheduled_at, das später vom Sweep ausgewertet wird. Leerer Status wird zu
// draft.
func NormalizeLifecycle(status string, publishedAt, scheduledAt *time.Time, now time.Time) (string, *time.Time, *time.Time, error) {
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		return "", nil, nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	switch status {
	case models.StatusPublished:
		if publishedAt == nil {
			publishedAt = &now
		}
	case models.StatusScheduled:
		if scheduledAt == nil {
			return "", nil, nil, ErrScheduleRequired
		}
	}
	return status, publishedAt, scheduledAt, nil
}
