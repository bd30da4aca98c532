package app

import (
	"context"
	"fmt"
	"time"

	"github.com/berea-app/core/internal/config"
	"github.com/berea-app/core/internal/modules/retention"
	pkgcron "github.com/berea-app/core/internal/pkg/cron"
	"github.com/berea-app/core/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	sweeper := retention.NewSweeper(db, cfg.Guide.PurgeOrphans, logger)

	sched.Register(pkgcron.Job{
		Name:        "sweep_anonymous_guides",
		Description: "reclaim expired anonymous study guide records",
		Interval:    cfg.Guide.SweepInterval(),
		Fn: func(ctx context.Context) error {
			res, err := sweeper.Sweep(ctx, time.Now())
			if err != nil {
				cronLogger.Warn("retention sweep failed", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("retention sweep done, %d expired links, %d orphaned guides", res.ExpiredLinks, res.OrphanedGuides))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "purge_expired_sessions",
		Description: "remove expired and revoked user sessions",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := session.PurgeExpired(db, time.Now())
			if err != nil {
				cronLogger.Warn("session purge failed", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("session purge done, removed %d sessions", n))
			return nil
		},
	})
}
