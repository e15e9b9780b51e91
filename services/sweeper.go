package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"content-hub/models"
)

// Sweeper setzt fällige geplante Inhalte auf published. Ein Lauf ist ein
// Batch-Update pro Content-Typ ohne Reihenfolge-Garantie und idempotent:
// ohne fällige Zeilen passiert nichts.
type Sweeper struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewSweeper erstellt einen neuen Sweeper.
func NewSweeper(db *gorm.DB, logger *zap.Logger) *Sweeper {
	return &Sweeper{DB: db, Logger: logger}
}

// Run führt einen Sweep über alle planbaren Content-Typen aus und gibt die
// Anzahl veröffentlichter Items zurück. Ein Fehler bei einem Typ bricht den
// Lauf nicht ab; der erste Fehler wird nach dem Durchlauf gemeldet.
func (s *Sweeper) Run(ctx context.Context) (int64, error) {
	now := time.Now()
	var total int64
	var firstErr error

	for _, target := range []struct {
		name  string
		model interface{}
	}{
		{"articles", &models.Article{}},
		{"case_studies", &models.CaseStudy{}},
		{"events", &models.Event{}},
		{"banners", &models.Banner{}},
	} {
		// Soft-gelöschte Zeilen blendet GORM hier automatisch aus.
		res := s.DB.WithContext(ctx).Model(target.model).
			Where("status = ? AND scheduled_at <= ?", models.StatusScheduled, now).
			Updates(map[string]interface{}{
				"status":       models.StatusPublished,
				"published_at": now,
			})
		if res.Error != nil {
			s.Logger.Error("Publish-Sweep für Typ fehlgeschlagen",
				zap.String("type", target.name), zap.Error(res.Error))
			if firstErr == nil {
				firstErr = res.Error
			}
			continue
		}
		if res.RowsAffected > 0 {
			s.Logger.Info("Fällige Inhalte veröffentlicht",
				zap.String("type", target.name), zap.Int64("count", res.RowsAffected))
		}
		total += res.RowsAffected
	}
	return total, firstErr
}
