package jobs

import (
	"context"
	"time"

	"court_transfer_app_go/config"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StartScheduler registers the background jobs and starts the cron runner.
// Callers stop it on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config, storage services.StorageProvider) (*cron.Cron, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(cfg.AttachmentSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := SweepOrphanAttachments(ctx, database, storage, cfg.AttachmentSweepGrace, time.Now()); err != nil {
			logging.L().Error("attachment sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}

	if _, err := c.AddFunc("@every 30m", services.Monitor.Cleanup); err != nil {
		return nil, err
	}

	c.Start()
	logging.L().Info("scheduler started", zap.String("attachment_sweep", cfg.AttachmentSweepSchedule))
	return c, nil
}
