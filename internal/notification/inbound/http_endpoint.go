package inbound

import (
	"errors"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
	"github.com/shandysiswandi/herald/internal/pkg/router"
)

type HTTPEndpoint struct {
	uc uc
}

// ListInbox returns the caller's notification feed.
// @Summary List inbox
// @Description Returns notifications of the authenticated user, newest first. Pass the returned next_cursor as cursor to read older items.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param cursor query string false "RFC 3339 created_at of the last item already seen"
// @Param limit query int false "Page size (default 20, max 50)"
// @Param unread_only query bool false "Only unread notifications"
// @Param type query string false "Notification type"
// @Success 200 {object} router.successResponse{data=InboxResponse} "Notification feed"
// @Failure 400 {object} router.errorResponse "Invalid query"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox [get]
func (h *HTTPEndpoint) ListInbox(r *router.Request) (any, error) {
	cursor, err := r.GetQueryTime("cursor")
	if err != nil {
		return nil, err
	}
	limit, err := r.GetQueryInt("limit")
	if err != nil {
		return nil, err
	}
	unreadOnly, err := r.GetQueryBool("unread_only")
	if err != nil {
		return nil, err
	}

	page, err := h.uc.ListFeed(r.Context(), usecase.FeedInput{
		Cursor:     cursor,
		Limit:      limit,
		UnreadOnly: unreadOnly,
		Type:       entity.Type(r.GetQuery("type")),
	})
	if err != nil {
		return nil, err
	}

	return InboxResponse{
		Notifications: toNotificationResponses(page.Items),
		nextCursor:    page.NextCursor,
	}, nil
}

// UnreadCount returns the number of unread notifications.
// @Summary Unread count
// @Description Returns how many notifications of the authenticated user are unread.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=UnreadCountResponse} "Unread count"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/unread-count [get]
func (h *HTTPEndpoint) UnreadCount(r *router.Request) (any, error) {
	count, err := h.uc.UnreadCount(r.Context())
	if err != nil {
		return nil, err
	}

	return UnreadCountResponse{Count: count}, nil
}

// GetInbox returns one notification.
// @Summary Get notification
// @Description Returns a single notification of the authenticated user.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} router.successResponse{data=NotificationDetailResponse} "Notification"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "Notification not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id} [get]
func (h *HTTPEndpoint) GetInbox(r *router.Request) (any, error) {
	if r.GetParam("id") == "unread-count" {
		return h.UnreadCount(r)
	}

	n, err := h.uc.GetNotification(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return NotificationDetailResponse{Notification: toNotificationResponse(*n)}, nil
}

// MarkInboxRead marks one notification as read.
// @Summary Mark notification read
// @Description Marks a notification as read. Marking an already read notification is not an error.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} router.successResponse{data=MarkReadResponse} "Read state"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/{id}/read [patch]
func (h *HTTPEndpoint) MarkInboxRead(r *router.Request) (any, error) {
	out, err := h.uc.MarkRead(r.Context(), usecase.MarkReadInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	return toMarkReadResponse(out), nil
}

// MarkInboxReadMany marks several notifications as read.
// @Summary Mark notifications read
// @Description Marks up to 100 notifications as read.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body MarkReadRequest true "Notification ids"
// @Success 200 {object} router.successResponse{data=MarkReadResponse} "Read state"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/read [put]
func (h *HTTPEndpoint) MarkInboxReadMany(r *router.Request) (any, error) {
	var req MarkReadRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	out, err := h.uc.MarkRead(r.Context(), usecase.MarkReadInput{IDs: req.IDs})
	if err != nil {
		return nil, err
	}

	return toMarkReadResponse(out), nil
}

// MarkAllInboxRead marks every notification as read.
// @Summary Mark all notifications read
// @Description Marks every unread notification of the authenticated user as read.
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=MarkReadResponse} "Read state"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/inbox/read-all [put]
func (h *HTTPEndpoint) MarkAllInboxRead(r *router.Request) (any, error) {
	out, err := h.uc.MarkRead(r.Context(), usecase.MarkReadInput{All: true})
	if err != nil {
		return nil, err
	}

	return toMarkReadResponse(out), nil
}

// Dispatch sends a notification on behalf of an administrator.
// @Summary Dispatch notification
// @Description Stores and delivers a notification. With recipient_ids every distinct recipient gets its own copy.
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body DispatchRequest true "Notification payload"
// @Success 201 {object} router.successResponse{data=DispatchResponse} "Dispatch result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notification/dispatch [post]
func (h *HTTPEndpoint) Dispatch(r *router.Request) (any, error) {
	var req DispatchRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if len(req.RecipientIDs) > 0 {
		return toDispatchResponse(h.uc.DispatchBulk(r.Context(), req.RecipientIDs, req.input())), nil
	}

	n, err := h.uc.Dispatch(r.Context(), req.input())
	if errors.Is(err, usecase.ErrDuplicateDispatch) {
		return toDispatchResponse(usecase.BulkResult{Duplicates: []string{req.RecipientID}}), nil
	}
	if err != nil {
		return nil, err
	}

	return toDispatchResponse(usecase.BulkResult{Created: []entity.Notification{*n}}), nil
}
