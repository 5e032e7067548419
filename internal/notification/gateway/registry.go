package gateway

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
)

// Registry tracks live sessions by connection, by user and by tenant. It is
// the only shared in-memory state of the gateway.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
	byUser   map[string]map[string]struct{}
	byTenant map[string]map[string]struct{}

	connections metric.Int64UpDownCounter
}

// NewRegistry builds an empty registry. meter may be nil.
func NewRegistry(meter metric.Meter) *Registry {
	if meter == nil {
		meter = instrument.NewNoop().Meter("gateway")
	}
	//nolint:errcheck // instrument creation on a valid meter does not fail in practice
	conns, _ := meter.Int64UpDownCounter("gateway.connections")

	return &Registry{
		sessions:    make(map[string]Session),
		byUser:      make(map[string]map[string]struct{}),
		byTenant:    make(map[string]map[string]struct{}),
		connections: conns,
	}
}

func (r *Registry) Register(s Session) error {
	info := s.Info()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[info.ID]; exists {
		return ErrDuplicateSession
	}

	r.sessions[info.ID] = s
	if r.byUser[info.UserID] == nil {
		r.byUser[info.UserID] = make(map[string]struct{})
	}
	r.byUser[info.UserID][info.ID] = struct{}{}

	if info.TenantID != "" {
		if r.byTenant[info.TenantID] == nil {
			r.byTenant[info.TenantID] = make(map[string]struct{})
		}
		r.byTenant[info.TenantID][info.UserID] = struct{}{}
	}

	r.connections.Add(context.Background(), 1)
	return nil
}

// Unregister removes s and prunes the user and tenant indexes once nothing
// references them.
func (r *Registry) Unregister(s Session) {
	info := s.Info()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[info.ID]; !exists {
		return
	}
	delete(r.sessions, info.ID)
	r.connections.Add(context.Background(), -1)

	conns := r.byUser[info.UserID]
	delete(conns, info.ID)
	if len(conns) == 0 {
		delete(r.byUser, info.UserID)
	}

	if info.TenantID == "" {
		return
	}
	for id := range conns {
		if r.sessions[id].Info().TenantID == info.TenantID {
			return
		}
	}
	users := r.byTenant[info.TenantID]
	delete(users, info.UserID)
	if len(users) == 0 {
		delete(r.byTenant, info.TenantID)
	}
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]) > 0
}

func (r *Registry) OnlineCount(tenantID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byTenant[tenantID])
}

// OnlineUsers lists the users connected within tenantID, sorted.
func (r *Registry) OnlineUsers(tenantID string) []string {
	r.mu.RLock()
	users := make([]string, 0, len(r.byTenant[tenantID]))
	for u := range r.byTenant[tenantID] {
		users = append(users, u)
	}
	r.mu.RUnlock()

	slices.Sort(users)
	return users
}

// TenantsOf lists the distinct tenant scopes of userID's connections. An
// unscoped connection contributes "".
func (r *Registry) TenantsOf(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0, 1)
	for id := range r.byUser[userID] {
		t := r.sessions[id].Info().TenantID
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (r *Registry) userSessions(userID string, keep func(Info) bool) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.byUser[userID]))
	for id := range r.byUser[userID] {
		s := r.sessions[id]
		if keep == nil || keep(s.Info()) {
			out = append(out, s)
		}
	}
	return out
}

func send(sessions []Session, event string, data any) int {
	delivered := 0
	for _, s := range sessions {
		if err := s.Send(event, data); err != nil {
			slog.Warn("failed to push to session", "connection_id", s.Info().ID, "event", event, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// PushToUser sends to every connection of userID and reports how many accepted it.
func (r *Registry) PushToUser(userID, event string, data any) int {
	return send(r.userSessions(userID, nil), event, data)
}

// PushToUserInTenant sends to userID's connections scoped to tenantID.
func (r *Registry) PushToUserInTenant(userID, tenantID, event string, data any) int {
	return send(r.userSessions(userID, func(i Info) bool { return i.TenantID == tenantID }), event, data)
}

// PushToTenant sends to every online user of tenantID, one user group at a time.
func (r *Registry) PushToTenant(tenantID, event string, data any) int {
	delivered := 0
	for _, userID := range r.OnlineUsers(tenantID) {
		delivered += r.PushToUserInTenant(userID, tenantID, event, data)
	}
	return delivered
}

// DeliverNotification pushes n to the recipient's connections that may see
// it: unscoped connections and connections of the notification's tenant. It
// reports whether at least one connection accepted it.
func (r *Registry) DeliverNotification(n entity.Notification) bool {
	sessions := r.userSessions(n.RecipientID, func(i Info) bool {
		return n.CompanyID == "" || i.TenantID == "" || i.TenantID == n.CompanyID
	})
	return send(sessions, EventNotificationNew, n) > 0
}

// Close closes every session. Used on shutdown.
func (r *Registry) Close() {
	r.mu.RLock()
	all := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.RUnlock()

	for _, s := range all {
		_ = s.Close()
	}
}
