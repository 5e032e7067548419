package inbound

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/router"
)

func newRequest(method, target, body string, params ...httprouter.Param) *router.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(params) > 0 {
		req = req.WithContext(context.WithValue(req.Context(), httprouter.ParamsKey, httprouter.Params(params)))
	}
	return &router.Request{Request: req}
}

func TestHTTPEndpoint_ListInbox(t *testing.T) {
	// Arrange
	cursor := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakeUsecase{page: &entity.Page{
		Items:      []entity.Notification{{ID: "n1", Type: entity.TypeOrderCreated, Priority: entity.PriorityHigh}},
		NextCursor: &cursor,
	}}
	end := &HTTPEndpoint{uc: fake}

	// Act
	resp, err := end.ListInbox(newRequest(http.MethodGet, "/api/v1/notification/inbox?limit=5&unread_only=true&type=ORDER_CREATED&cursor=2026-03-02T00:00:00Z", ""))

	// Assert
	if err != nil {
		t.Fatalf("ListInbox() error = %v", err)
	}
	if fake.feedIn.Limit != 5 || !fake.feedIn.UnreadOnly || fake.feedIn.Type != entity.TypeOrderCreated || fake.feedIn.Cursor == nil {
		t.Fatalf("feed input = %+v", fake.feedIn)
	}
	inbox, ok := resp.(InboxResponse)
	if !ok {
		t.Fatalf("response type = %T", resp)
	}
	if len(inbox.Notifications) != 1 || inbox.Notifications[0].Priority != "HIGH" {
		t.Fatalf("notifications = %+v", inbox.Notifications)
	}
	if inbox.Meta()["next_cursor"] != "2026-03-01T10:00:00Z" {
		t.Fatalf("meta = %v", inbox.Meta())
	}
}

func TestHTTPEndpoint_ListInboxRejectsBadQuery(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &fakeUsecase{}}

	// Act
	_, err := end.ListInbox(newRequest(http.MethodGet, "/api/v1/notification/inbox?limit=abc", ""))

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("ListInbox() error = %v, want invalid format", err)
	}
}

func TestHTTPEndpoint_GetInboxServesUnreadCount(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &fakeUsecase{count: 4}}

	// Act
	resp, err := end.GetInbox(newRequest(http.MethodGet, "/api/v1/notification/inbox/unread-count", "",
		httprouter.Param{Key: "id", Value: "unread-count"}))

	// Assert
	if err != nil {
		t.Fatalf("GetInbox() error = %v", err)
	}
	if got, ok := resp.(UnreadCountResponse); !ok || got.Count != 4 {
		t.Fatalf("response = %+v", resp)
	}
}

func TestHTTPEndpoint_MarkRead(t *testing.T) {
	// Arrange
	fake := &fakeUsecase{count: 2}
	end := &HTTPEndpoint{uc: fake}

	// Act
	_, errOne := end.MarkInboxRead(newRequest(http.MethodPatch, "/api/v1/notification/inbox/n1/read", "",
		httprouter.Param{Key: "id", Value: "n1"}))
	oneIn := fake.markIn
	_, errMany := end.MarkInboxReadMany(newRequest(http.MethodPut, "/api/v1/notification/inbox/read", `{"ids":["n1","n2"]}`))
	manyIn := fake.markIn
	resp, errAll := end.MarkAllInboxRead(newRequest(http.MethodPut, "/api/v1/notification/inbox/read-all", ""))

	// Assert
	if errOne != nil || errMany != nil || errAll != nil {
		t.Fatalf("errors = %v, %v, %v", errOne, errMany, errAll)
	}
	if oneIn.ID != "n1" || len(manyIn.IDs) != 2 || !fake.markIn.All {
		t.Fatalf("inputs = %+v, %+v, %+v", oneIn, manyIn, fake.markIn)
	}
	if got := resp.(MarkReadResponse); got.UnreadCount != 2 {
		t.Fatalf("response = %+v", got)
	}
}

func TestHTTPEndpoint_Dispatch(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		dispatchFn  func(usecase.DispatchInput) (*entity.Notification, error)
		wantCreated int
		wantDup     int
		wantBulk    int
	}{
		{
			name:        "single recipient",
			body:        `{"type":"SYSTEM","priority":"LOW","recipient_id":"u1","title":"t","body":"b"}`,
			wantCreated: 1,
		},
		{
			name:     "bulk recipients",
			body:     `{"type":"SYSTEM","recipient_ids":["u1","u2"],"title":"t","body":"b"}`,
			wantBulk: 2, wantCreated: 2,
		},
		{
			name: "duplicate",
			body: `{"type":"SYSTEM","recipient_id":"u1","title":"t","body":"b","idempotency_key":"k"}`,
			dispatchFn: func(usecase.DispatchInput) (*entity.Notification, error) {
				return nil, usecase.ErrDuplicateDispatch
			},
			wantDup: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			fake := &fakeUsecase{dispatchFn: tt.dispatchFn}
			end := &HTTPEndpoint{uc: fake}

			// Act
			resp, err := end.Dispatch(newRequest(http.MethodPost, "/api/v1/notification/dispatch", tt.body))

			// Assert
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			got := resp.(DispatchResponse)
			if len(got.Created) != tt.wantCreated || len(got.Duplicates) != tt.wantDup {
				t.Fatalf("response = %+v", got)
			}
			if len(fake.bulkIDs) != tt.wantBulk {
				t.Fatalf("bulk ids = %v", fake.bulkIDs)
			}
			if got.StatusCode() != http.StatusCreated {
				t.Fatalf("status = %d", got.StatusCode())
			}
		})
	}
}

func TestHTTPEndpoint_DispatchRejectsUnknownFields(t *testing.T) {
	// Arrange
	end := &HTTPEndpoint{uc: &fakeUsecase{}}

	// Act
	_, err := end.Dispatch(newRequest(http.MethodPost, "/api/v1/notification/dispatch", `{"recipient":"u1"}`))

	// Assert
	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("Dispatch() error = %v, want invalid format", err)
	}
}
