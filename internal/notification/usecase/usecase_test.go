package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/clock"
	"github.com/shandysiswandi/herald/internal/pkg/config"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/goroutine"
	"github.com/shandysiswandi/herald/internal/pkg/idempotency"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
	"github.com/shandysiswandi/herald/internal/pkg/validator"
)

var errBoom = errors.New("boom")

type fakeDB struct {
	mu     sync.Mutex
	clock  *clock.Fixed
	rows   []entity.Notification
	failOn map[string]bool
}

func matches(n entity.Notification, f entity.Filter) bool {
	if n.RecipientID != f.RecipientID {
		return false
	}
	if f.CompanyID != "" && n.CompanyID != "" && n.CompanyID != f.CompanyID {
		return false
	}
	if f.UnreadOnly && n.Read {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, n.ID) {
		return false
	}
	return true
}

func (f *fakeDB) CreateNotification(_ context.Context, in entity.CreateNotification) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[in.RecipientID] {
		return nil, errBoom
	}

	f.clock.Advance(time.Second)
	n := entity.Notification{
		ID: in.ID, Type: in.Type, Priority: in.Priority, RecipientID: in.RecipientID, CompanyID: in.CompanyID,
		Title: in.Title, Body: in.Body, Data: in.Data, ActionURL: in.ActionURL, EntityType: in.EntityType,
		EntityID: in.EntityID, DeliveryStatus: entity.DeliveryStatusPending, CreatedAt: f.clock.Now(),
	}
	f.rows = append(f.rows, n)
	return &n, nil
}

func (f *fakeDB) ListNotifications(_ context.Context, flt entity.Filter, before *time.Time, limit int) ([]entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []entity.Notification
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.rows[i]
		if !matches(n, flt) || (before != nil && !n.CreatedAt.Before(*before)) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeDB) CountNotifications(_ context.Context, flt entity.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, n := range f.rows {
		if matches(n, flt) {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) GetNotification(_ context.Context, flt entity.Filter, id string) (*entity.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, n := range f.rows {
		if n.ID == id && matches(n, flt) {
			return &n, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) MarkNotificationsRead(_ context.Context, flt entity.Filter, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var updated int64
	for i := range f.rows {
		if matches(f.rows[i], flt) && !f.rows[i].Read {
			f.rows[i].Read = true
			f.rows[i].ReadAt = &at
			updated++
		}
	}
	return updated, nil
}

func (f *fakeDB) MarkNotificationDelivered(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].DeliveryStatus = entity.DeliveryStatusDelivered
			f.rows[i].DeliveredAt = &at
		}
	}
	return nil
}

func (f *fakeDB) DeleteReadNotificationsBefore(_ context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.rows[:0]
	var deleted int64
	for _, n := range f.rows {
		if n.Read && n.CreatedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	f.rows = kept
	return deleted, nil
}

func (f *fakeDB) all() []entity.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows)
}

type fakeDirectory struct {
	members  map[string][]string
	keys     map[string][]string
	admins   []string
	contacts map[string]entity.UserContact
}

func (d *fakeDirectory) ListCompanyMemberIDs(_ context.Context, companyID string, roles ...entity.CompanyRole) ([]string, error) {
	if len(roles) > 0 {
		return d.keys[companyID], nil
	}
	return d.members[companyID], nil
}

func (d *fakeDirectory) ListPlatformAdminIDs(context.Context) ([]string, error) {
	return d.admins, nil
}

func (d *fakeDirectory) GetUserContact(_ context.Context, userID string) (*entity.UserContact, error) {
	c, ok := d.contacts[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &c, nil
}

type fakeChannel struct {
	mu     sync.Mutex
	emails []string
	sms    []string
	smsOn  bool
}

func (c *fakeChannel) SendEmail(_ context.Context, to entity.UserContact, n entity.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emails = append(c.emails, to.Email+":"+n.Type.String())
	return nil
}

func (c *fakeChannel) SendSMS(_ context.Context, to entity.UserContact, n entity.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sms = append(c.sms, to.Phone+":"+n.Type.String())
	return nil
}

func (c *fakeChannel) SMSEnabled() bool { return c.smsOn }

type fakeMQ struct {
	mu        sync.Mutex
	published []string
}

func (m *fakeMQ) PublishNotificationCreated(_ context.Context, n entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, n.ID)
	return nil
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("n-%03d", s.n)
}

type testSession struct {
	info gateway.Info

	mu     sync.Mutex
	frames []gateway.Frame
}

func (s *testSession) Info() gateway.Info { return s.info }

func (s *testSession) Send(event string, data any) error { return s.Reply("", event, data) }

func (s *testSession) Reply(ref, event string, data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, gateway.Frame{Event: event, Ref: ref, Data: data})
	return nil
}

func (s *testSession) Close() error { return nil }

func (s *testSession) last(event string) (gateway.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Event == event {
			return s.frames[i], true
		}
	}
	return gateway.Frame{}, false
}

func (s *testSession) count(event string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := 0
	for _, f := range s.frames {
		if f.Event == event {
			c++
		}
	}
	return c
}

type fixture struct {
	uc       *Usecase
	db       *fakeDB
	dir      *fakeDirectory
	channel  *fakeChannel
	mq       *fakeMQ
	registry *gateway.Registry
	clock    *clock.Fixed
	workers  *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: herald-test\n"))
	if err != nil {
		t.Fatalf("config error = %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator error = %v", err)
	}

	clk := clock.NewFixed(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))
	f := &fixture{
		db:       &fakeDB{clock: clk, failOn: map[string]bool{}},
		dir:      &fakeDirectory{members: map[string][]string{}, keys: map[string][]string{}, contacts: map[string]entity.UserContact{}},
		channel:  &fakeChannel{},
		mq:       &fakeMQ{},
		registry: gateway.NewRegistry(nil),
		clock:    clk,
		workers:  goroutine.NewManager(10),
	}
	f.uc = NewNotification(Dependency{
		RepoDB:        f.db,
		RepoDirectory: f.dir,
		RepoChannel:   f.channel,
		RepoMQ:        f.mq,
		Realtime:      f.registry,
		Idempotency:   idempotency.NewMemory(),
		Config:        cfg,
		UUID:          &seqID{},
		Clock:         clk,
		Goroutine:     f.workers,
		Validator:     v,
		Instrument:    instrument.NewNoop(),
	})
	return f
}

func (f *fixture) connect(t *testing.T, connID, userID, tenantID string) *testSession {
	t.Helper()
	s := &testSession{info: gateway.Info{ID: connID, UserID: userID, TenantID: tenantID}}
	if err := f.uc.Connect(context.Background(), s); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return s
}

func authCtx(userID, companyID string) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{Identity: jwt.Identity{UserID: userID, CompanyID: companyID}})
}

func recipientsOf(rows []entity.Notification) []string {
	out := make([]string, 0, len(rows))
	for _, n := range rows {
		out = append(out, n.RecipientID)
	}
	slices.Sort(out)
	return out
}
