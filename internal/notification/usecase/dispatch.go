package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/idempotency"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
)

// ErrDuplicateDispatch reports a keyed dispatch that already ran. Callers
// treat it as success.
var ErrDuplicateDispatch = errors.New("notification: duplicate dispatch")

// dispatchKeyTTL outlives the widest deadline reminder band.
const dispatchKeyTTL = 72 * time.Hour

type DispatchInput struct {
	Type        entity.Type         `json:"type" validate:"required,enum"`
	Priority    entity.Priority     `json:"priority" validate:"required,enum"`
	RecipientID string              `json:"recipient_id" validate:"required,max=64"`
	CompanyID   string              `json:"company_id" validate:"max=64"`
	Title       string              `json:"title" validate:"required,max=200"`
	Body        string              `json:"body" validate:"required,max=2000"`
	Data        valueobject.JSONMap `json:"data"`
	ActionURL   string              `json:"action_url" validate:"omitempty,max=500,action_url"`
	EntityType  string              `json:"entity_type" validate:"max=64"`
	EntityID    string              `json:"entity_id" validate:"max=64"`
	SkipEmail   bool                `json:"skip_email"`
	// IdempotencyKey deduplicates the dispatch when set. DispatchBulk derives
	// one key per recipient from it.
	IdempotencyKey string `json:"idempotency_key" validate:"max=255"`
}

// Dispatch stores one notification, pushes it to the recipient when online and
// fans it out to the asynchronous channels. The row survives any delivery
// failure.
func (s *Usecase) Dispatch(ctx context.Context, in DispatchInput) (*entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "Dispatch")
	defer span.End()

	if in.Priority == "" {
		in.Priority = entity.PriorityNormal
	}
	if in.Data == nil {
		in.Data = valueobject.JSONMap{}
	}

	if err := s.validator.Validate(in); err != nil {
		s.failures.Add(ctx, 1)
		return nil, goerror.NewInvalidInput(err)
	}

	if in.IdempotencyKey == "" || s.idem == nil {
		return s.dispatch(ctx, in)
	}

	var (
		n   *entity.Notification
		ran bool
	)
	err := s.idem.Exec(ctx, "notification:dispatch:"+in.IdempotencyKey, func(ctx context.Context) error {
		ran = true
		var err error
		n, err = s.dispatch(ctx, in)
		return err
	}, idempotency.WithStateTTL(dispatchKeyTTL))
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyInProgress):
		slog.InfoContext(ctx, "duplicate dispatch skipped", "key", in.IdempotencyKey, "type", in.Type, "recipient_id", in.RecipientID)
		return nil, ErrDuplicateDispatch
	case ran && n != nil:
		// stored already, only the completion mark was lost
		slog.WarnContext(ctx, "failed to mark dispatch completed", "key", in.IdempotencyKey, "notification_id", n.ID, "error", err)
		return n, nil
	case ran:
		return nil, err
	default:
		slog.WarnContext(ctx, "idempotency tracker unavailable, dispatching without dedup", "key", in.IdempotencyKey, "error", err)
		return s.dispatch(ctx, in)
	}
}

func (s *Usecase) dispatch(ctx context.Context, in DispatchInput) (*entity.Notification, error) {
	n, err := s.repoDB.CreateNotification(ctx, entity.CreateNotification{
		ID:          s.uuid.Generate(),
		Type:        in.Type,
		Priority:    in.Priority,
		RecipientID: in.RecipientID,
		CompanyID:   in.CompanyID,
		Title:       in.Title,
		Body:        in.Body,
		Data:        in.Data,
		ActionURL:   in.ActionURL,
		EntityType:  in.EntityType,
		EntityID:    in.EntityID,
	})
	if err != nil {
		s.failures.Add(ctx, 1)
		slog.ErrorContext(ctx, "failed to repo create notification", "type", in.Type, "recipient_id", in.RecipientID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", n.Type.String()),
		attribute.String("priority", n.Priority.String()),
	))

	if s.realtime.IsOnline(n.RecipientID) {
		if s.realtime.DeliverNotification(*n) {
			s.markDelivered(ctx, n)
		}
		s.pushUnreadCounts(ctx, n.RecipientID)
	}

	if !in.SkipEmail {
		s.sendChannels(ctx, *n)
	}

	if err := s.repoMQ.PublishNotificationCreated(ctx, *n); err != nil {
		slog.WarnContext(ctx, "failed to publish notification created", "notification_id", n.ID, "error", err)
	}

	return n, nil
}

func (s *Usecase) markDelivered(ctx context.Context, n *entity.Notification) {
	at := s.clock.Now()
	if err := s.repoDB.MarkNotificationDelivered(ctx, n.ID, at); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notification delivered", "notification_id", n.ID, "error", err)
		return
	}

	n.DeliveryStatus = entity.DeliveryStatusDelivered
	n.DeliveredAt = &at
	s.delivered.Add(ctx, 1)
}

// pushUnreadCounts sends every connection of userID the unread count of its
// own tenant scope.
func (s *Usecase) pushUnreadCounts(ctx context.Context, userID string) {
	for _, tenant := range s.realtime.TenantsOf(userID) {
		count, err := s.repoDB.CountNotifications(ctx, entity.Filter{RecipientID: userID, CompanyID: tenant, UnreadOnly: true})
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo count unread notifications", "user_id", userID, "company_id", tenant, "error", err)
			continue
		}
		s.realtime.PushToUserInTenant(userID, tenant, gateway.EventUnreadCount, gateway.UnreadCountData{Count: count})
	}
}

// BulkFailure is one recipient whose dispatch failed.
type BulkFailure struct {
	RecipientID string `json:"recipient_id"`
	Error       string `json:"error"`
}

type BulkResult struct {
	Created    []entity.Notification `json:"created"`
	Duplicates []string              `json:"duplicates,omitempty"`
	Failures   []BulkFailure         `json:"failures,omitempty"`
}

// DispatchBulk dispatches in to every distinct recipient independently. With
// an idempotency key K each recipient r gets the key "K:r:type".
func (s *Usecase) DispatchBulk(ctx context.Context, recipientIDs []string, in DispatchInput) BulkResult {
	ctx, span := s.startSpan(ctx, "DispatchBulk")
	defer span.End()

	var res BulkResult
	base := in.IdempotencyKey
	for _, recipient := range lo.Uniq(lo.Compact(recipientIDs)) {
		one := in
		one.RecipientID = recipient
		if base != "" {
			one.IdempotencyKey = base + ":" + recipient + ":" + in.Type.String()
		}

		n, err := s.Dispatch(ctx, one)
		switch {
		case errors.Is(err, ErrDuplicateDispatch):
			res.Duplicates = append(res.Duplicates, recipient)
		case err != nil:
			slog.ErrorContext(ctx, "failed to dispatch notification", "type", in.Type, "recipient_id", recipient, "error", err)
			res.Failures = append(res.Failures, BulkFailure{RecipientID: recipient, Error: err.Error()})
		default:
			res.Created = append(res.Created, *n)
		}
	}

	return res
}
