package webhook_log

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brightharbor/storefront/internal/models"
	"github.com/brightharbor/storefront/pkg/logctx"
	"github.com/brightharbor/storefront/pkg/tool"
)

// Service persists the webhook audit log. Log writes are fail-soft: a failed
// write is reported to the operational log but never aborts the pipeline.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// LogReceived writes the initial processed=false row for an inbound event.
func (s *Service) LogReceived(ctx context.Context, entry *models.WebhookLog) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = tool.GenerateUUIDV7()
	}
	entry.Processed = false
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to save webhook log", "event_id", entry.EventID, "err", err)
	}
}

// MarkProcessed rewrites the row for eventID as successfully handled.
func (s *Service) MarkProcessed(ctx context.Context, eventID string) {
	now := time.Now()
	err := s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":     true,
			"error_message": nil,
			"processed_at":  &now,
		}).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to mark webhook log processed", "event_id", eventID, "err", err)
	}
}

// MarkFailed records the handler error message against the row for eventID.
func (s *Service) MarkFailed(ctx context.Context, eventID, errMsg string) {
	err := s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":     false,
			"error_message": errMsg,
		}).Error
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("failed to mark webhook log failed", "event_id", eventID, "err", err)
	}
}

// HasProcessed reports whether a processed=true row already exists for
// eventID, used by the strict idempotency pre-check.
func (s *Service) HasProcessed(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.WebhookLog{}).
		Where("event_id = ? AND processed = ?", eventID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Recent returns the newest log rows for the admin dashboard.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.WebhookLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*models.WebhookLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
