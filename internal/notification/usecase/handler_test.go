package usecase

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

func TestOnOrderDeadlineApproaching_NotifiesBothSidesOnce(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dir.members["brand-1"] = []string{"b1", "b2"}
	f.dir.members["sup-1"] = []string{"s1"}
	evt := event.OrderDeadlineApproaching{
		Meta:           event.Meta{EventID: "deadline-48h:o1:1767751200"},
		OrderID:        "o1",
		DisplayID:      "#1001",
		BrandID:        "brand-1",
		SupplierID:     "sup-1",
		Deadline:       time.Date(2026, 1, 7, 2, 0, 0, 0, time.UTC),
		HoursRemaining: 40,
	}

	// the 15:00 run lands in the same band
	later := evt
	later.HoursRemaining = 34

	// Act
	_ = f.uc.OnOrderDeadlineApproaching(context.Background(), evt)
	_ = f.uc.OnOrderDeadlineApproaching(context.Background(), later)

	// Assert
	rows := f.db.all()
	if got := recipientsOf(rows); !slices.Equal(got, []string{"b1", "b2", "s1"}) {
		t.Fatalf("recipients = %v", got)
	}
	for _, n := range rows {
		if n.Priority != entity.PriorityHigh {
			t.Fatalf("priority = %s, want HIGH", n.Priority)
		}
		want := "/brand/orders/o1"
		if n.RecipientID == "s1" {
			want = "/supplier/orders/o1"
		}
		if n.ActionURL != want {
			t.Fatalf("action url for %s = %s, want %s", n.RecipientID, n.ActionURL, want)
		}
	}
}

func TestOnOrderDeadlineApproaching_UrgentWithinADay(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dir.members["brand-1"] = []string{"b1"}

	// Act
	_ = f.uc.OnOrderDeadlineApproaching(context.Background(), event.OrderDeadlineApproaching{
		OrderID: "o1", DisplayID: "#1001", BrandID: "brand-1", SupplierID: "sup-1", HoursRemaining: 24,
	})

	// Assert
	rows := f.db.all()
	if len(rows) != 1 || rows[0].Priority != entity.PriorityUrgent {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestOnOrderCreated_NeverNotifiesTheActor(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dir.keys["sup-1"] = []string{"s1", "s2", "s1"}

	// Act
	_ = f.uc.OnOrderCreated(context.Background(), event.OrderCreated{
		OrderID: "o1", DisplayID: "#1001", BrandID: "brand-1", BrandName: "Acme", SupplierID: "sup-1", ActorID: "s1",
	})

	// Assert
	if got := recipientsOf(f.db.all()); !slices.Equal(got, []string{"s2"}) {
		t.Fatalf("recipients = %v, want [s2]", got)
	}
}

func TestOnOrderStatusChanged_RoutesToCounterpart(t *testing.T) {
	tests := []struct {
		name         string
		actorCompany string
		want         []string
	}{
		{name: "brand acted", actorCompany: "brand-1", want: []string{"s1"}},
		{name: "supplier acted", actorCompany: "sup-1", want: []string{"b1"}},
		{name: "unknown actor company", actorCompany: "", want: []string{"b1", "s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			f.dir.members["brand-1"] = []string{"b1"}
			f.dir.members["sup-1"] = []string{"s1"}

			// Act
			_ = f.uc.OnOrderStatusChanged(context.Background(), event.OrderStatusChanged{
				OrderID: "o1", DisplayID: "#1001", BrandID: "brand-1", SupplierID: "sup-1",
				OldStatus: "ACEITO", NewStatus: "EM_PRODUCAO", ActorID: "x", ActorCompanyID: tt.actorCompany,
			})

			// Assert
			if got := recipientsOf(f.db.all()); !slices.Equal(got, tt.want) {
				t.Fatalf("recipients = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnTicketReplied_Routing(t *testing.T) {
	tests := []struct {
		name string
		evt  event.TicketReplied
		want []string
	}{
		{
			name: "admin reply goes to creator",
			evt:  event.TicketReplied{TicketID: "t1", CreatorID: "u1", AuthorID: "a1", AuthorIsAdmin: true},
			want: []string{"u1"},
		},
		{
			name: "creator reply goes to assignee",
			evt:  event.TicketReplied{TicketID: "t1", CreatorID: "u1", AssigneeID: "a2", AuthorID: "u1"},
			want: []string{"a2"},
		},
		{
			name: "unassigned reply goes to every admin",
			evt:  event.TicketReplied{TicketID: "t1", CreatorID: "u1", AuthorID: "u1"},
			want: []string{"a1", "a2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			f.dir.admins = []string{"a1", "a2"}

			// Act
			_ = f.uc.OnTicketReplied(context.Background(), tt.evt)

			// Assert
			if got := recipientsOf(f.db.all()); !slices.Equal(got, tt.want) {
				t.Fatalf("recipients = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnMessageNew_SkipsEmail(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dir.members["brand-1"] = []string{"b1"}
	f.dir.contacts["b1"] = entity.UserContact{UserID: "b1", Email: "b1@example.com"}

	// Act
	_ = f.uc.OnMessageNew(context.Background(), event.MessageNew{
		ConversationID: "cv1", SenderID: "s1", SenderName: "Supplier", SenderCompanyID: "sup-1",
		RecipientCompanyID: "brand-1", Preview: "hello",
	})
	_ = f.workers.Wait()

	// Assert
	if len(f.db.all()) != 1 {
		t.Fatalf("rows = %d, want 1", len(f.db.all()))
	}
	if len(f.channel.emails) != 0 {
		t.Fatalf("message notification was emailed: %v", f.channel.emails)
	}
}

func TestRegisterHandlers_PaymentOverduePriorities(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.dir.keys["brand-1"] = []string{"b1"}
	f.dir.keys["sup-1"] = []string{"s1"}
	bus := eventbus.New(nil)
	f.uc.RegisterHandlers(bus)

	// Act
	err := bus.PublishAndWait(context.Background(), event.PaymentOverdue{
		PaymentID: "p1", OrderID: "o1", DisplayID: "#1001", BrandID: "brand-1", SupplierID: "sup-1",
		Amount: 1500, DaysOverdue: 3,
	})

	// Assert
	if err != nil {
		t.Fatalf("PublishAndWait() error = %v", err)
	}
	for _, n := range f.db.all() {
		want := entity.PriorityHigh
		if n.RecipientID == "b1" {
			want = entity.PriorityUrgent
		}
		if n.Priority != want {
			t.Fatalf("priority for %s = %s, want %s", n.RecipientID, n.Priority, want)
		}
	}
	if len(f.db.all()) != 2 {
		t.Fatalf("rows = %d, want 2", len(f.db.all()))
	}
	if got := bus.Subscribers(event.SupplierSuspendedName); got != 1 {
		t.Fatalf("subscribers for supplier:suspended = %d, want 1", got)
	}
}
