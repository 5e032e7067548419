package inbound

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/router"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
)

const ssePing = 25 * time.Second

type RealtimeConfig struct {
	Limiter        *gateway.ConnectLimiter
	SendBuffer     int
	Ping           time.Duration
	AllowedOrigins []string
	UUID           uid.StringID
	Clock          clock.Clocker
	Instrument     instrument.Instrumentation
}

// RealtimeEndpoint serves the websocket and server-sent event transports.
type RealtimeEndpoint struct {
	uc       ucRealtime
	uuid     uid.StringID
	clock    clock.Clocker
	limiter  *gateway.ConnectLimiter
	upgrader websocket.Upgrader
	buffer   int
	ping     time.Duration
	rejected metric.Int64Counter
}

func newRealtimeEndpoint(uc ucRealtime, cfg RealtimeConfig) *RealtimeEndpoint {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = gateway.NewConnectLimiter(0, 0)
	}

	//nolint:errcheck // instrument creation on a valid meter does not fail in practice
	rejected, _ := cfg.Instrument.Meter("gateway").Int64Counter("gateway.rejected")

	return &RealtimeEndpoint{
		uc:      uc,
		uuid:    cfg.UUID,
		clock:   cfg.Clock,
		limiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		buffer:   cfg.SendBuffer,
		ping:     cfg.Ping,
		rejected: rejected,
	}
}

// originChecker allows every origin when allowed is empty or holds "*".
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// clientIP keys the connect limiter. The router already replaced RemoteAddr
// with the real client ip; a bare listener still carries the port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func handshakeToken(r *http.Request) string {
	if token := router.BearerToken(r); token != "" {
		return token
	}
	return r.URL.Query().Get("token")
}

func (e *RealtimeEndpoint) reject(ctx context.Context, transport, reason string) {
	e.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("reason", reason),
	))
}

func (e *RealtimeEndpoint) info(userID, userName, tenantID string) gateway.Info {
	return gateway.Info{
		ID:        e.uuid.Generate(),
		UserID:    userID,
		UserName:  userName,
		TenantID:  tenantID,
		CreatedAt: e.clock.Now(),
	}
}

// WebSocket upgrades the connection, authenticates the handshake and serves
// client operations until the peer goes away.
// @Summary Real-time notifications (WebSocket)
// @Description Bidirectional JSON frames {"event","ref","data"}. Authenticate with the Authorization header or the token query parameter.
// @Tags Notification
// @Param token query string false "Access token"
// @Success 101 "Switching Protocols"
// @Router /ws/notifications [get]
func (e *RealtimeEndpoint) WebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(ctx, "failed to upgrade websocket", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	if !e.limiter.Allow(clientIP(r)) {
		e.reject(ctx, "websocket", "rate_limited")
		gateway.Reject(conn, "Too many connection attempts")
		return
	}

	claims, err := e.uc.Authenticate(ctx, handshakeToken(r))
	if err != nil {
		e.reject(ctx, "websocket", "unauthorized")
		gateway.Reject(conn, "Authentication required")
		return
	}

	sess := gateway.NewWebSocket(conn, e.info(claims.UserID, claims.UserName, claims.CompanyID), e.buffer, e.ping)
	go sess.WritePump()

	if err := e.uc.Connect(ctx, sess); err != nil {
		_ = sess.Close()
		return
	}

	var ops sync.WaitGroup
	err = sess.ReadLoop(func(f gateway.InboundFrame) {
		ops.Go(func() { e.uc.HandleClientOp(ctx, sess, f) })
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		slog.DebugContext(ctx, "websocket read loop ended", "connection_id", sess.Info().ID, "error", err)
	}

	e.uc.Disconnect(ctx, sess)
	ops.Wait()
	_ = sess.Close()
}

// StreamNotifications streams notification events to the client using SSE.
// @Summary Stream notifications
// @Description Streams notification:new and unread-count events using Server-Sent Events (SSE).
// @Tags Notification
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "SSE stream"
// @Failure 401 {string} string "Unauthorized"
// @Failure 429 {string} string "Too many connection attempts"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/notification/stream [get]
func (e *RealtimeEndpoint) StreamNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if !e.limiter.Allow(clientIP(r)) {
		e.reject(ctx, "sse", "rate_limited")
		http.Error(w, "Too many connection attempts", http.StatusTooManyRequests)
		return
	}

	claims := jwt.GetAuth(ctx)
	if claims == nil {
		e.reject(ctx, "sse", "unauthorized")
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sess := gateway.NewSSE(e.info(claims.UserID, claims.UserName, claims.CompanyID), e.buffer)
	if err := e.uc.Connect(ctx, sess); err != nil {
		return
	}
	defer func() {
		e.uc.Disconnect(context.WithoutCancel(ctx), sess)
		_ = sess.Close()
	}()

	// heartbeat ping, so proxies won't drop idle connections.
	ticker := time.NewTicker(ssePing)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sess.Done():
			return

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case f := <-sess.Frames():
			payload, err := json.Marshal(f.Data)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal data", "event", f.Event, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Event, payload); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
