package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
)

// sendChannels hands n to email, and to SMS when it is urgent, outside the
// caller's request. Failures are logged only.
func (s *Usecase) sendChannels(ctx context.Context, n entity.Notification) {
	ctx = context.WithoutCancel(ctx)

	s.goroutine.Go(ctx, "notification.channels", func(ctx context.Context) error {
		contact, err := s.repoDirectory.GetUserContact(ctx, n.RecipientID)
		if errors.Is(err, goerror.ErrNotFound) {
			slog.WarnContext(ctx, "notification recipient has no contact", "recipient_id", n.RecipientID)
			return nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo get user contact", "recipient_id", n.RecipientID, "error", err)
			return err
		}

		if contact.Email != "" {
			if err := s.repoChannel.SendEmail(ctx, *contact, n); err != nil {
				slog.ErrorContext(ctx, "failed to send notification email", "notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
			}
		}

		if n.Priority == entity.PriorityUrgent && contact.Phone != "" && s.repoChannel.SMSEnabled() {
			if err := s.repoChannel.SendSMS(ctx, *contact, n); err != nil {
				slog.ErrorContext(ctx, "failed to send notification sms", "notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
			}
		}

		return nil
	})
}
