package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/herald/internal/pkg/goerror"
)

const defaultRetentionDays = 90

// CleanupReadNotifications deletes notifications that were read and are older
// than the retention window. Unread rows are never removed.
func (s *Usecase) CleanupReadNotifications(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "CleanupReadNotifications")
	defer span.End()

	retention := s.cfg.GetDay("notification.retention_days")
	if retention <= 0 {
		retention = defaultRetentionDays * 24 * time.Hour
	}
	before := s.clock.Now().Add(-retention)

	deleted, err := s.repoDB.DeleteReadNotificationsBefore(ctx, before)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete read notifications", "before", before, "error", err)
		return 0, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "read notifications cleaned up", "deleted", deleted, "before", before)
	return deleted, nil
}
