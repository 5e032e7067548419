package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
)

// Connect registers an authenticated session, greets it and sends its unread
// count.
func (s *Usecase) Connect(ctx context.Context, sess gateway.Session) error {
	ctx, span := s.startSpan(ctx, "Connect")
	defer span.End()

	if err := s.realtime.Register(sess); err != nil {
		slog.ErrorContext(ctx, "failed to register realtime session", "connection_id", sess.Info().ID, "error", err)
		return err
	}

	info := sess.Info()
	_ = sess.Send(gateway.EventConnected, gateway.ConnectedData{
		ConnectionID: info.ID,
		UserID:       info.UserID,
		TenantID:     info.TenantID,
	})

	if count, err := s.unreadCount(ctx, identityOf(info)); err == nil {
		_ = sess.Send(gateway.EventUnreadCount, gateway.UnreadCountData{Count: count})
	}

	slog.InfoContext(ctx, "realtime session connected", "connection_id", info.ID, "user_id", info.UserID, "tenant_id", info.TenantID)
	return nil
}

func (s *Usecase) Disconnect(ctx context.Context, sess gateway.Session) {
	s.realtime.Unregister(sess)
	slog.InfoContext(ctx, "realtime session disconnected", "connection_id", sess.Info().ID, "user_id", sess.Info().UserID)
}

// HandleClientOp answers one client operation on sess. The reply reuses the
// operation name and ref; failures reply with an error event.
func (s *Usecase) HandleClientOp(ctx context.Context, sess gateway.Session, f gateway.InboundFrame) {
	ctx, span := s.startSpan(ctx, "HandleClientOp")
	defer span.End()

	id := identityOf(sess.Info())

	var (
		data any
		err  error
	)
	switch f.Event {
	case gateway.OpMarkRead:
		var in MarkReadInput
		if err = decodeOp(f.Data, &in); err == nil {
			data, err = s.markRead(ctx, id, in)
		}
	case gateway.OpGetUnreadCount:
		var count int64
		count, err = s.unreadCount(ctx, id)
		data = gateway.UnreadCountData{Count: count}
	case gateway.OpGetNotifications:
		var in FeedInput
		if err = decodeOp(f.Data, &in); err == nil {
			data, err = s.listFeed(ctx, id, in)
		}
	default:
		err = goerror.NewInvalidFormat("unknown operation " + f.Event)
	}

	if err != nil {
		if rerr := sess.Reply(f.Ref, gateway.EventError, gateway.ErrorData{Message: clientMessage(err)}); rerr != nil {
			slog.WarnContext(ctx, "failed to reply client operation", "op", f.Event, "error", rerr)
		}
		return
	}

	if rerr := sess.Reply(f.Ref, f.Event, data); rerr != nil {
		slog.WarnContext(ctx, "failed to reply client operation", "op", f.Event, "error", rerr)
	}
}

func decodeOp(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerror.NewInvalidFormat()
	}
	return nil
}

// clientMessage hides server error details from connected clients.
func clientMessage(err error) string {
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		return "Internal server error"
	}
	if gerr.Type() == goerror.TypeValidation && gerr.Unwrap() != nil {
		return gerr.Error()
	}
	return gerr.Msg()
}
