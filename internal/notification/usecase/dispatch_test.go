package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/idempotency"
)

// lostCompletion runs fn and then fails to record the outcome.
type lostCompletion struct{}

func (lostCompletion) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errors.New("redis: connection reset")
}

func baseInput(recipient string) DispatchInput {
	return DispatchInput{
		Type:        entity.TypeOrderCreated,
		RecipientID: recipient,
		CompanyID:   "sup-1",
		Title:       "New order received",
		Body:        "Brand placed order #1001.",
		ActionURL:   "/supplier/orders/o1",
	}
}

func TestDispatch_OnlineRecipientIsDelivered(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sess := f.connect(t, "c1", "u1", "sup-1")

	// Act
	n, err := f.uc.Dispatch(context.Background(), baseInput("u1"))

	// Assert
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if n.Priority != entity.PriorityNormal {
		t.Fatalf("default priority = %s, want NORMAL", n.Priority)
	}
	if n.DeliveryStatus != entity.DeliveryStatusDelivered || n.DeliveredAt == nil {
		t.Fatalf("notification not marked delivered: %+v", n)
	}
	if rows := f.db.all(); len(rows) != 1 || rows[0].DeliveryStatus != entity.DeliveryStatusDelivered {
		t.Fatalf("stored rows = %+v", rows)
	}
	if sess.count(gateway.EventNotificationNew) != 1 {
		t.Fatalf("session did not receive notification:new")
	}
	frame, _ := sess.last(gateway.EventUnreadCount)
	if got := frame.Data.(gateway.UnreadCountData).Count; got != 1 {
		t.Fatalf("unread-count = %d, want 1", got)
	}
	if len(f.mq.published) != 1 {
		t.Fatalf("notification created messages = %d, want 1", len(f.mq.published))
	}
}

func TestDispatch_OfflineRecipientStaysPending(t *testing.T) {
	// Arrange
	f := newFixture(t)

	// Act
	n, err := f.uc.Dispatch(context.Background(), baseInput("u1"))

	// Assert
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if n.DeliveryStatus != entity.DeliveryStatusPending || n.DeliveredAt != nil {
		t.Fatalf("offline notification should stay pending: %+v", n)
	}
	if len(f.db.all()) != 1 {
		t.Fatalf("expected exactly one stored row")
	}
}

func TestDispatch_InvalidInputIsRejectedBeforePersistence(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DispatchInput)
	}{
		{name: "missing title", mutate: func(in *DispatchInput) { in.Title = "" }},
		{name: "missing recipient", mutate: func(in *DispatchInput) { in.RecipientID = "" }},
		{name: "unknown type", mutate: func(in *DispatchInput) { in.Type = "ORDER_EXPLODED" }},
		{name: "unknown priority", mutate: func(in *DispatchInput) { in.Priority = "CRITICAL" }},
		{name: "bad action url", mutate: func(in *DispatchInput) { in.ActionURL = "javascript:alert(1)" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			in := baseInput("u1")
			tt.mutate(&in)

			// Act
			_, err := f.uc.Dispatch(context.Background(), in)

			// Assert
			if goerror.CodeOf(err) != goerror.CodeInvalidInput {
				t.Fatalf("Dispatch() error = %v, want invalid input", err)
			}
			if len(f.db.all()) != 0 {
				t.Fatalf("invalid dispatch was persisted")
			}
		})
	}
}

func TestDispatch_IdempotencyKeySuppressesRepeat(t *testing.T) {
	// Arrange
	f := newFixture(t)
	in := baseInput("u1")
	in.IdempotencyKey = "evt-1:u1:ORDER_CREATED"

	// Act
	_, first := f.uc.Dispatch(context.Background(), in)
	_, second := f.uc.Dispatch(context.Background(), in)

	// Assert
	if first != nil {
		t.Fatalf("first Dispatch() error = %v", first)
	}
	if !errors.Is(second, ErrDuplicateDispatch) {
		t.Fatalf("second Dispatch() error = %v, want %v", second, ErrDuplicateDispatch)
	}
	if len(f.db.all()) != 1 {
		t.Fatalf("rows = %d, want 1", len(f.db.all()))
	}
}

func TestDispatch_StoredRowSurvivesLostCompletionMark(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.uc.idem = lostCompletion{}
	in := baseInput("u1")
	in.IdempotencyKey = "evt-2:u1:ORDER_CREATED"

	// Act
	n, err := f.uc.Dispatch(context.Background(), in)

	// Assert
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}
	if n == nil || len(f.db.all()) != 1 || f.db.all()[0].ID != n.ID {
		t.Fatalf("notification = %+v rows = %d", n, len(f.db.all()))
	}
}

func TestDispatch_UrgentGoesToEmailAndSMS(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.channel.smsOn = true
	f.dir.contacts["u1"] = entity.UserContact{UserID: "u1", Email: "u1@example.com", Phone: "+5511999990000"}
	in := baseInput("u1")
	in.Priority = entity.PriorityUrgent

	// Act
	_, err := f.uc.Dispatch(context.Background(), in)
	_ = f.workers.Wait()

	// Assert
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(f.channel.emails) != 1 || len(f.channel.sms) != 1 {
		t.Fatalf("emails = %v, sms = %v", f.channel.emails, f.channel.sms)
	}
}

func TestDispatch_SkipEmailAndNormalPriority(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.channel.smsOn = true
	f.dir.contacts["u1"] = entity.UserContact{UserID: "u1", Email: "u1@example.com", Phone: "+5511999990000"}
	skipped := baseInput("u1")
	skipped.SkipEmail = true
	normal := baseInput("u1")

	// Act
	_, _ = f.uc.Dispatch(context.Background(), skipped)
	_, _ = f.uc.Dispatch(context.Background(), normal)
	_ = f.workers.Wait()

	// Assert
	if len(f.channel.emails) != 1 {
		t.Fatalf("emails = %v, want exactly one", f.channel.emails)
	}
	if len(f.channel.sms) != 0 {
		t.Fatalf("non urgent notification sent sms %v", f.channel.sms)
	}
}

func TestDispatchBulk_FailureDoesNotStopSiblings(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.db.failOn["bad"] = true

	// Act
	res := f.uc.DispatchBulk(context.Background(), []string{"u1", "bad", "u2", "u1", ""}, baseInput(""))

	// Assert
	if len(res.Created) != 2 {
		t.Fatalf("created = %d, want 2", len(res.Created))
	}
	if len(res.Failures) != 1 || res.Failures[0].RecipientID != "bad" {
		t.Fatalf("failures = %+v", res.Failures)
	}
}

func TestDispatchBulk_DerivesKeyPerRecipient(t *testing.T) {
	// Arrange
	f := newFixture(t)
	in := baseInput("")
	in.IdempotencyKey = "evt-9"

	// Act
	first := f.uc.DispatchBulk(context.Background(), []string{"u1", "u2"}, in)
	second := f.uc.DispatchBulk(context.Background(), []string{"u1", "u2", "u3"}, in)

	// Assert
	if len(first.Created) != 2 {
		t.Fatalf("first created = %d, want 2", len(first.Created))
	}
	if len(second.Created) != 1 || second.Created[0].RecipientID != "u3" || len(second.Duplicates) != 2 {
		t.Fatalf("second run = %+v", second)
	}
}
