package inbound

import (
	"net/http"

	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/router"
)

func RegisterHTTPEndpoint(r *router.Router, uc uc, rt RealtimeConfig) {
	end := &HTTPEndpoint{uc: uc}
	live := newRealtimeEndpoint(uc, rt)

	r.GET("/api/v1/notification/inbox", end.ListInbox)
	// also serves /inbox/unread-count, httprouter cannot mix a static and a
	// wildcard segment at the same position.
	r.GET("/api/v1/notification/inbox/:id", end.GetInbox)
	r.PATCH("/api/v1/notification/inbox/:id/read", end.MarkInboxRead)
	r.PUT("/api/v1/notification/inbox/read", end.MarkInboxReadMany)
	r.PUT("/api/v1/notification/inbox/read-all", end.MarkAllInboxRead)

	r.POST("/api/v1/notification/dispatch", end.Dispatch, router.RequireRole(jwt.RoleAdmin))

	r.GETRaw("/api/v1/notification/stream", http.HandlerFunc(live.StreamNotifications))
	r.GETRaw(router.PathRealtime, http.HandlerFunc(live.WebSocket))
}
