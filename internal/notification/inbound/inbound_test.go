package inbound

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/notification/usecase"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
)

type fakeUsecase struct {
	mu sync.Mutex

	tokens map[string]jwt.Claims

	page       *entity.Page
	feedIn     usecase.FeedInput
	count      int64
	markIn     usecase.MarkReadInput
	dispatched []usecase.DispatchInput
	bulkIDs    []string
	dispatchFn func(usecase.DispatchInput) (*entity.Notification, error)

	connected    []gateway.Info
	disconnected []gateway.Info
	ops          []gateway.InboundFrame
}

func (f *fakeUsecase) Authenticate(_ context.Context, token string) (*jwt.Claims, error) {
	clm, ok := f.tokens[token]
	if !ok {
		return nil, goerror.NewUnauthorized()
	}
	return &clm, nil
}

func (f *fakeUsecase) Connect(_ context.Context, sess gateway.Session) error {
	f.mu.Lock()
	f.connected = append(f.connected, sess.Info())
	f.mu.Unlock()
	return sess.Send(gateway.EventConnected, gateway.ConnectedData{ConnectionID: sess.Info().ID, UserID: sess.Info().UserID})
}

func (f *fakeUsecase) Disconnect(_ context.Context, sess gateway.Session) {
	f.mu.Lock()
	f.disconnected = append(f.disconnected, sess.Info())
	f.mu.Unlock()
}

func (f *fakeUsecase) HandleClientOp(_ context.Context, sess gateway.Session, fr gateway.InboundFrame) {
	f.mu.Lock()
	f.ops = append(f.ops, fr)
	f.mu.Unlock()
	_ = sess.Reply(fr.Ref, fr.Event, gateway.UnreadCountData{Count: 3})
}

func (f *fakeUsecase) ListFeed(_ context.Context, in usecase.FeedInput) (*entity.Page, error) {
	f.feedIn = in
	return f.page, nil
}

func (f *fakeUsecase) UnreadCount(context.Context) (int64, error) {
	return f.count, nil
}

func (f *fakeUsecase) GetNotification(_ context.Context, id string) (*entity.Notification, error) {
	if f.page != nil {
		for _, n := range f.page.Items {
			if n.ID == id {
				return &n, nil
			}
		}
	}
	return nil, goerror.NewNotFound("Notification not found")
}

func (f *fakeUsecase) MarkRead(_ context.Context, in usecase.MarkReadInput) (*usecase.MarkReadOutput, error) {
	f.markIn = in
	return &usecase.MarkReadOutput{Updated: 1, UnreadCount: f.count}, nil
}

func (f *fakeUsecase) Dispatch(_ context.Context, in usecase.DispatchInput) (*entity.Notification, error) {
	f.dispatched = append(f.dispatched, in)
	if f.dispatchFn != nil {
		return f.dispatchFn(in)
	}
	return &entity.Notification{ID: "n-1", Type: in.Type, Priority: in.Priority, RecipientID: in.RecipientID, CreatedAt: time.Now()}, nil
}

func (f *fakeUsecase) DispatchBulk(_ context.Context, ids []string, in usecase.DispatchInput) usecase.BulkResult {
	f.bulkIDs = ids
	var res usecase.BulkResult
	for _, id := range ids {
		res.Created = append(res.Created, entity.Notification{ID: "n-" + id, Type: in.Type, RecipientID: id})
	}
	return res
}

func (f *fakeUsecase) connectedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connected)
}

func (f *fakeUsecase) disconnectedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.disconnected)
}

type fakeBus struct {
	events []eventbus.Event
	err    error
}

func (f *fakeBus) PublishAndWait(_ context.Context, evt eventbus.Event) error {
	f.events = append(f.events, evt)
	return f.err
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "id-" + string(rune('0'+s.n))
}
