package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/scheduler/entity"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const (
	defaultDeadlineWindow = 48 * time.Hour
	defaultExpiringWindow = 30 * 24 * time.Hour

	// urgentDeadlineHours splits reminders into a HIGH band and an URGENT band.
	urgentDeadlineHours = 24
)

// ScanResult reports how many entities a scan matched and how many events
// reached the bus.
type ScanResult struct {
	Matched   int `json:"matched"`
	Published int `json:"published"`
}

// eventID ties an emitted event to the job run and the entity so a retried
// run dispatches nothing new.
func eventID(jobID, entityID string) string {
	return jobID + ":" + entityID
}

func (s *Usecase) publish(ctx context.Context, evt event.Event, entityID string, res *ScanResult) error {
	if err := s.bus.PublishAndWait(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "failed to publish scheduled event", "event", evt.EventName(), "entity_id", entityID, "error", err)
		return err
	}
	res.Published++
	return nil
}

// deadlineEventID names one reminder per order, deadline and band. Later runs
// inside the same band dispatch nothing new; an edited deadline reminds again.
func deadlineEventID(o entity.OrderDeadline, hours int) string {
	band := "48h"
	if hours <= urgentDeadlineHours {
		band = "24h"
	}
	return fmt.Sprintf("deadline-%s:%s:%d", band, o.OrderID, o.Deadline.Unix())
}

func (s *Usecase) deadlineEvent(o entity.OrderDeadline, now time.Time) event.OrderDeadlineApproaching {
	hours := int(o.Deadline.Sub(now).Hours())
	return event.OrderDeadlineApproaching{
		Meta:           event.Meta{EventID: deadlineEventID(o, hours), OccurredAt: now},
		OrderID:        o.OrderID,
		DisplayID:      o.DisplayID,
		BrandID:        o.BrandID,
		SupplierID:     o.SupplierID,
		Deadline:       o.Deadline,
		HoursRemaining: hours,
	}
}

// RemindOrderDeadlines emits order:deadline-approaching for every open order
// whose delivery deadline falls in (now, now+window].
func (s *Usecase) RemindOrderDeadlines(ctx context.Context, jobID string) (ScanResult, error) {
	ctx, span := s.startSpan(ctx, "RemindOrderDeadlines")
	defer span.End()

	now := s.clock.Now()
	window := s.window("scheduler.order_deadline_window_hours", defaultDeadlineWindow)

	orders, err := s.repoDB.ListOrdersDueWithin(ctx, now, now.Add(window), entity.OpenOrderStatuses())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list orders due within", "job_id", jobID, "window", window, "error", err)
		return ScanResult{}, goerror.NewServer(err)
	}

	res := ScanResult{Matched: len(orders)}
	var errs []error
	for _, o := range orders {
		errs = append(errs, s.publish(ctx, s.deadlineEvent(o, now), o.OrderID, &res))
	}

	return res, errors.Join(errs...)
}

// CheckOrderDeadline re-checks one order, e.g. after its deadline was edited.
// Nothing is emitted when the order is closed or outside the window.
func (s *Usecase) CheckOrderDeadline(ctx context.Context, jobID, orderID string) (ScanResult, error) {
	ctx, span := s.startSpan(ctx, "CheckOrderDeadline")
	defer span.End()

	o, err := s.repoDB.GetOrderDeadline(ctx, orderID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "order for deadline check not found", "job_id", jobID, "order_id", orderID)
		return ScanResult{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get order deadline", "order_id", orderID, "error", err)
		return ScanResult{}, goerror.NewServer(err)
	}

	now := s.clock.Now()
	window := s.window("scheduler.order_deadline_window_hours", defaultDeadlineWindow)
	open := o.Status == entity.OrderStatusAccepted || o.Status == entity.OrderStatusInProduction
	if !open || !o.Deadline.After(now) || o.Deadline.After(now.Add(window)) {
		return ScanResult{}, nil
	}

	res := ScanResult{Matched: 1}
	return res, s.publish(ctx, s.deadlineEvent(*o, now), o.OrderID, &res)
}

// ScanExpiringDocuments flags documents expiring within the window and emits
// document:expiring once per transition.
func (s *Usecase) ScanExpiringDocuments(ctx context.Context, jobID string) (ScanResult, error) {
	ctx, span := s.startSpan(ctx, "ScanExpiringDocuments")
	defer span.End()

	now := s.clock.Now()
	window := s.window("scheduler.document_expiring_window_hours", defaultExpiringWindow)

	docs, err := s.repoDB.FlagDocumentsExpiringSoon(ctx, now, now.Add(window))
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo flag documents expiring soon", "error", err)
		return ScanResult{}, goerror.NewServer(err)
	}

	res := ScanResult{Matched: len(docs)}
	var errs []error
	for _, d := range docs {
		errs = append(errs, s.publish(ctx, event.DocumentExpiring{
			Meta:         event.Meta{EventID: eventID(jobID, d.ID), OccurredAt: now},
			DocumentID:   d.ID,
			SupplierID:   d.SupplierID,
			DocumentType: d.Type,
			ExpiresAt:    d.ExpiresAt,
			DaysLeft:     int(math.Ceil(d.ExpiresAt.Sub(now).Hours() / 24)),
		}, d.ID, &res))
	}

	return res, errors.Join(errs...)
}

func (s *Usecase) ScanExpiredDocuments(ctx context.Context, jobID string) (ScanResult, error) {
	ctx, span := s.startSpan(ctx, "ScanExpiredDocuments")
	defer span.End()

	now := s.clock.Now()
	docs, err := s.repoDB.FlagDocumentsExpired(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo flag documents expired", "error", err)
		return ScanResult{}, goerror.NewServer(err)
	}

	res := ScanResult{Matched: len(docs)}
	var errs []error
	for _, d := range docs {
		errs = append(errs, s.publish(ctx, event.DocumentExpired{
			Meta:         event.Meta{EventID: eventID(jobID, d.ID), OccurredAt: now},
			DocumentID:   d.ID,
			SupplierID:   d.SupplierID,
			DocumentType: d.Type,
			ExpiredAt:    d.ExpiresAt,
		}, d.ID, &res))
	}

	return res, errors.Join(errs...)
}

func (s *Usecase) ScanOverduePayments(ctx context.Context, jobID string) (ScanResult, error) {
	ctx, span := s.startSpan(ctx, "ScanOverduePayments")
	defer span.End()

	now := s.clock.Now()
	payments, err := s.repoDB.FlagPaymentsOverdue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo flag payments overdue", "error", err)
		return ScanResult{}, goerror.NewServer(err)
	}

	res := ScanResult{Matched: len(payments)}
	var errs []error
	for _, p := range payments {
		errs = append(errs, s.publish(ctx, event.PaymentOverdue{
			Meta:        event.Meta{EventID: eventID(jobID, p.ID), OccurredAt: now},
			PaymentID:   p.ID,
			OrderID:     p.OrderID,
			DisplayID:   p.DisplayID,
			BrandID:     p.BrandID,
			SupplierID:  p.SupplierID,
			Amount:      p.Amount,
			DueDate:     p.DueDate,
			DaysOverdue: int(now.Sub(p.DueDate).Hours() / 24),
		}, p.ID, &res))
	}

	return res, errors.Join(errs...)
}
