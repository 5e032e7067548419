package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
)

const notificationColumns = `id::text, type, priority, recipient_id, COALESCE(company_id, ''), title, body, data,
	action_url, entity_type, entity_id, read, read_at, delivery_status, delivered_at, created_at`

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var (
		n        entity.Notification
		typ      string
		priority string
		status   string
		data     valueobject.JSONMap
	)
	err := row.Scan(&n.ID, &typ, &priority, &n.RecipientID, &n.CompanyID, &n.Title, &n.Body, &data,
		&n.ActionURL, &n.EntityType, &n.EntityID, &n.Read, &n.ReadAt, &status, &n.DeliveredAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}

	n.Type = entity.Type(typ)
	n.Priority = entity.Priority(priority)
	n.DeliveryStatus = entity.DeliveryStatus(status)
	n.Data = data
	return &n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateNotification inserts a pending row. created_at comes from
// clock_timestamp() so rows inserted by one transaction still order.
func (s *DB) CreateNotification(ctx context.Context, in entity.CreateNotification) (_ *entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "CreateNotification")
	defer func() { s.endSpan(span, err) }()

	data := in.Data
	if data == nil {
		data = valueobject.JSONMap{}
	}

	row := s.conn.QueryRow(ctx, `
		INSERT INTO notifications (id, type, priority, recipient_id, company_id, title, body, data,
			action_url, entity_type, entity_id, delivery_status, created_at)
		VALUES (@id, @type, @priority, @recipient_id, @company_id, @title, @body, @data,
			@action_url, @entity_type, @entity_id, @status, clock_timestamp())
		RETURNING `+notificationColumns,
		pgx.NamedArgs{
			"id":           in.ID,
			"type":         in.Type.String(),
			"priority":     in.Priority.String(),
			"recipient_id": in.RecipientID,
			"company_id":   nullable(in.CompanyID),
			"title":        in.Title,
			"body":         in.Body,
			"data":         data,
			"action_url":   in.ActionURL,
			"entity_type":  in.EntityType,
			"entity_id":    in.EntityID,
			"status":       entity.DeliveryStatusPending.String(),
		})

	n, err := scanNotification(row)
	if err != nil {
		return nil, s.mapError(err)
	}

	return n, nil
}

// ListNotifications returns up to limit rows newest first, strictly older
// than before when it is set.
func (s *DB) ListNotifications(ctx context.Context, f entity.Filter, before *time.Time, limit int) (_ []entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "ListNotifications")
	defer func() { s.endSpan(span, err) }()

	where, args, ok := filterSQL(f)
	if !ok {
		return []entity.Notification{}, nil
	}
	if before != nil {
		where += " AND created_at < @before"
		args["before"] = *before
	}
	args["limit"] = limit

	rows, err := s.conn.Query(ctx, `SELECT `+notificationColumns+` FROM notifications `+where+
		` ORDER BY created_at DESC, id DESC LIMIT @limit`, args)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]entity.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, *n)
	}

	return out, s.mapError(rows.Err())
}

func (s *DB) CountNotifications(ctx context.Context, f entity.Filter) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountNotifications")
	defer func() { s.endSpan(span, err) }()

	where, args, ok := filterSQL(f)
	if !ok {
		return 0, nil
	}

	var count int64
	if err := s.conn.QueryRow(ctx, `SELECT count(*) FROM notifications `+where, args).Scan(&count); err != nil {
		return 0, s.mapError(err)
	}

	return count, nil
}

func (s *DB) GetNotification(ctx context.Context, f entity.Filter, id string) (_ *entity.Notification, err error) {
	ctx, span := s.startSpan(ctx, "GetNotification")
	defer func() { s.endSpan(span, err) }()

	if !uid.Valid(id) {
		return nil, goerror.ErrNotFound
	}

	f.IDs = []string{id}
	where, args, _ := filterSQL(f)

	n, err := scanNotification(s.conn.QueryRow(ctx, `SELECT `+notificationColumns+` FROM notifications `+where, args))
	if err != nil {
		return nil, s.mapError(err)
	}

	return n, nil
}

// MarkNotificationsRead flags the unread rows matched by f. Rows already read
// keep their read_at.
func (s *DB) MarkNotificationsRead(ctx context.Context, f entity.Filter, at time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationsRead")
	defer func() { s.endSpan(span, err) }()

	f.UnreadOnly = true
	where, args, ok := filterSQL(f)
	if !ok {
		return 0, nil
	}
	args["read_at"] = at

	tag, err := s.conn.Exec(ctx, `UPDATE notifications SET read = TRUE, read_at = @read_at `+where, args)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func (s *DB) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) (err error) {
	ctx, span := s.startSpan(ctx, "MarkNotificationDelivered")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE notifications SET delivery_status = @delivered, delivered_at = @at
		WHERE id = @id AND delivery_status = @pending`,
		pgx.NamedArgs{
			"id":        id,
			"at":        at,
			"delivered": entity.DeliveryStatusDelivered.String(),
			"pending":   entity.DeliveryStatusPending.String(),
		})
	return s.mapError(err)
}

// DeleteReadNotificationsBefore removes read rows created before the cutoff.
func (s *DB) DeleteReadNotificationsBefore(ctx context.Context, before time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteReadNotificationsBefore")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `DELETE FROM notifications WHERE read = TRUE AND created_at < @before`,
		pgx.NamedArgs{"before": before})
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
