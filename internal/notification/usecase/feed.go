package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
)

const (
	defaultFeedSize = 20
	maxFeedSize     = 50
)

type FeedInput struct {
	Cursor     *time.Time  `json:"cursor"`
	Limit      int         `json:"limit" validate:"gte=0"`
	UnreadOnly bool        `json:"unread_only"`
	Type       entity.Type `json:"type" validate:"omitempty,enum"`
}

type MarkReadInput struct {
	ID  string   `json:"id" validate:"max=64"`
	IDs []string `json:"ids" validate:"max=100,dive,required,max=64"`
	All bool     `json:"all"`
}

type MarkReadOutput struct {
	Updated     int64 `json:"updated"`
	UnreadCount int64 `json:"unread_count"`
}

func (s *Usecase) ListFeed(ctx context.Context, in FeedInput) (*entity.Page, error) {
	ctx, span := s.startSpan(ctx, "ListFeed")
	defer span.End()

	id, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	return s.listFeed(ctx, id, in)
}

func (s *Usecase) listFeed(ctx context.Context, id Identity, in FeedInput) (*entity.Page, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	limit := in.Limit
	if limit == 0 {
		limit = s.cfg.GetInt("notification.feed.default_size")
	}
	if limit <= 0 {
		limit = defaultFeedSize
	}
	ceiling := s.cfg.GetInt("notification.feed.max_size")
	if ceiling <= 0 || ceiling > maxFeedSize {
		ceiling = maxFeedSize
	}
	limit = min(limit, ceiling)

	f := entity.Filter{RecipientID: id.UserID, CompanyID: id.CompanyID, UnreadOnly: in.UnreadOnly, Type: in.Type}
	items, err := s.repoDB.ListNotifications(ctx, f, in.Cursor, limit+1)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list notifications", "user_id", id.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	page := &entity.Page{Items: items}
	if len(items) > limit {
		page.Items = items[:limit]
		next := page.Items[limit-1].CreatedAt
		page.NextCursor = &next
	}
	if page.Items == nil {
		page.Items = []entity.Notification{}
	}

	return page, nil
}

func (s *Usecase) UnreadCount(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "UnreadCount")
	defer span.End()

	id, err := s.requireAuth(ctx)
	if err != nil {
		return 0, err
	}

	return s.unreadCount(ctx, id)
}

func (s *Usecase) unreadCount(ctx context.Context, id Identity) (int64, error) {
	count, err := s.repoDB.CountNotifications(ctx, entity.Filter{RecipientID: id.UserID, CompanyID: id.CompanyID, UnreadOnly: true})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count unread notifications", "user_id", id.UserID, "error", err)
		return 0, goerror.NewServer(err)
	}

	return count, nil
}

func (s *Usecase) GetNotification(ctx context.Context, notificationID string) (*entity.Notification, error) {
	ctx, span := s.startSpan(ctx, "GetNotification")
	defer span.End()

	id, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	n, err := s.repoDB.GetNotification(ctx, entity.Filter{RecipientID: id.UserID, CompanyID: id.CompanyID}, notificationID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewNotFound("notification not found")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get notification", "user_id", id.UserID, "notification_id", notificationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return n, nil
}

// MarkRead marks unread notifications of the caller as read. Rows that are
// already read keep their read_at and are not an error.
func (s *Usecase) MarkRead(ctx context.Context, in MarkReadInput) (*MarkReadOutput, error) {
	ctx, span := s.startSpan(ctx, "MarkRead")
	defer span.End()

	id, err := s.requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	return s.markRead(ctx, id, in)
}

func (s *Usecase) markRead(ctx context.Context, id Identity, in MarkReadInput) (*MarkReadOutput, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ids := in.IDs
	if in.ID != "" {
		ids = append(ids, in.ID)
	}
	if !in.All && len(ids) == 0 {
		return nil, goerror.NewInvalidInput(nil, "ids", "ids is required unless all is set")
	}

	f := entity.Filter{RecipientID: id.UserID, CompanyID: id.CompanyID, UnreadOnly: true}
	if !in.All {
		f.IDs = ids
	}

	updated, err := s.repoDB.MarkNotificationsRead(ctx, f, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark notifications read", "user_id", id.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if updated > 0 {
		s.pushUnreadCounts(ctx, id.UserID)
	}

	count, err := s.unreadCount(ctx, id)
	if err != nil {
		return nil, err
	}

	return &MarkReadOutput{Updated: updated, UnreadCount: count}, nil
}
