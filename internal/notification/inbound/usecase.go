package inbound

import (
	"context"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
)

type ucRealtime interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	Connect(ctx context.Context, sess gateway.Session) error
	Disconnect(ctx context.Context, sess gateway.Session)
	HandleClientOp(ctx context.Context, sess gateway.Session, f gateway.InboundFrame)
}

type uc interface {
	ucRealtime

	ListFeed(ctx context.Context, in usecase.FeedInput) (*entity.Page, error)
	UnreadCount(ctx context.Context) (int64, error)
	GetNotification(ctx context.Context, notificationID string) (*entity.Notification, error)
	MarkRead(ctx context.Context, in usecase.MarkReadInput) (*usecase.MarkReadOutput, error)
	Dispatch(ctx context.Context, in usecase.DispatchInput) (*entity.Notification, error)
	DispatchBulk(ctx context.Context, recipientIDs []string, in usecase.DispatchInput) usecase.BulkResult
}

// publisher hands decoded domain events to in-process subscribers.
type publisher interface {
	PublishAndWait(ctx context.Context, evt eventbus.Event) error
}
