// Package retention reclaims anonymous ownership records after their
// expiry window, and optionally the study guides nothing references anymore.
// It runs from the cron scheduler, never on the request path.
package retention

import (
	"context"
	"time"

	"github.com/berea-app/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Sweeper struct {
	db           *gorm.DB
	purgeOrphans bool
	logger       *zap.Logger
}

// Result reports what one sweep reclaimed.
type Result struct {
	ExpiredLinks   int64 `json:"expired_links"`
	OrphanedGuides int64 `json:"orphaned_guides"`
}

func NewSweeper(db *gorm.DB, purgeOrphans bool, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{db: db, purgeOrphans: purgeOrphans, logger: logger.Named("RetentionSweeper")}
}

// Sweep deletes anonymous ownership records whose expiry has passed. When
// orphan purging is enabled, guide rows left with zero references in either
// ledger are deleted too; keeping them instead trades storage for
// recompute-avoidance and is equally correct.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	res := s.db.WithContext(ctx).Unscoped().
		Where("expires_at <= ?", now).
		Delete(&models.AnonStudyGuideModel{})
	if res.Error != nil {
		return result, res.Error
	}
	result.ExpiredLinks = res.RowsAffected

	if s.purgeOrphans {
		res = s.db.WithContext(ctx).Unscoped().
			Where("id NOT IN (?)", s.db.Model(&models.UserStudyGuideModel{}).Select("guide_id")).
			Where("id NOT IN (?)", s.db.Model(&models.AnonStudyGuideModel{}).Select("guide_id")).
			Delete(&models.StudyGuideModel{})
		if res.Error != nil {
			return result, res.Error
		}
		result.OrphanedGuides = res.RowsAffected
	}

	if result.ExpiredLinks > 0 || result.OrphanedGuides > 0 {
		s.logger.Info("sweep completed",
			zap.Int64("expired_links", result.ExpiredLinks),
			zap.Int64("orphaned_guides", result.OrphanedGuides),
		)
	}
	return result, nil
}
