package jobs

import (
	"context"
	"fmt"
	"time"

	"court_transfer_app_go/logging"
	"court_transfer_app_go/metrics"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SweepOrphanAttachments deletes stored attachment files that no request
// references and that are older than grace. The grace period keeps files of
// a create transaction that has not committed yet.
func SweepOrphanAttachments(ctx context.Context, database *gorm.DB, storage services.StorageProvider, grace time.Duration, now time.Time) (int, error) {
	objects, err := storage.List(ctx, services.AttachmentPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list attachments: %w", err)
	}
	if len(objects) == 0 {
		return 0, nil
	}

	var referenced []string
	if err := database.WithContext(ctx).Model(&models.TransferRequestSource{}).Pluck("path_name", &referenced).Error; err != nil {
		return 0, fmt.Errorf("failed to load attachment references: %w", err)
	}
	known := make(map[string]bool, len(referenced))
	for _, key := range referenced {
		known[key] = true
	}

	runID := uuid.NewString()
	cutoff := now.Add(-grace)
	removed := 0
	for _, obj := range objects {
		if known[obj.Key] || obj.LastModified.After(cutoff) {
			continue
		}
		if err := storage.Delete(ctx, obj.Key); err != nil {
			logging.L().Error("failed to delete orphan attachment", zap.String("run_id", runID), zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		metrics.AttachmentsSwept.Add(float64(removed))
		logging.L().Info("removed orphan attachments", zap.String("run_id", runID), zap.Int("count", removed))
	}
	return removed, nil
}
