package usecase

import (
	"context"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const (
	entitySupplier      = "supplier"
	supplierProfileURL  = "/supplier/profile"
	adminSupplierPrefix = "/admin/suppliers/"
)

func (s *Usecase) OnSupplierRegistered(ctx context.Context, evt event.SupplierRegistered) error {
	ctx, span := s.startSpan(ctx, "OnSupplierRegistered")
	defer span.End()

	s.notify(ctx, evt.Meta, "", s.platformAdmins(ctx), DispatchInput{
		Type:       entity.TypeSupplierRegistered,
		Priority:   entity.PriorityNormal,
		Title:      "New supplier registration",
		Body:       evt.Name + " registered and awaits approval.",
		Data:       valueobject.JSONMap{"supplier_id": evt.SupplierID},
		ActionURL:  adminSupplierPrefix + evt.SupplierID,
		EntityType: entitySupplier,
		EntityID:   evt.SupplierID,
	})

	return nil
}

func (s *Usecase) OnSupplierApproved(ctx context.Context, evt event.SupplierApproved) error {
	ctx, span := s.startSpan(ctx, "OnSupplierApproved")
	defer span.End()

	s.notifySupplier(ctx, evt.Meta, evt.ActorID, evt.SupplierID, "", DispatchInput{
		Type:     entity.TypeSupplierApproved,
		Priority: entity.PriorityHigh,
		Title:    "Registration approved",
		Body:     "Welcome aboard, " + evt.Name + "! Your company can now receive orders.",
	})

	return nil
}

func (s *Usecase) OnSupplierRejected(ctx context.Context, evt event.SupplierRejected) error {
	ctx, span := s.startSpan(ctx, "OnSupplierRejected")
	defer span.End()

	s.notifySupplier(ctx, evt.Meta, evt.ActorID, evt.SupplierID, evt.Reason, DispatchInput{
		Type:     entity.TypeSupplierRejected,
		Priority: entity.PriorityHigh,
		Title:    "Registration rejected",
		Body:     "The registration of " + evt.Name + " was rejected.",
	})

	return nil
}

func (s *Usecase) OnSupplierSuspended(ctx context.Context, evt event.SupplierSuspended) error {
	ctx, span := s.startSpan(ctx, "OnSupplierSuspended")
	defer span.End()

	s.notifySupplier(ctx, evt.Meta, evt.ActorID, evt.SupplierID, evt.Reason, DispatchInput{
		Type:     entity.TypeSupplierSuspended,
		Priority: entity.PriorityUrgent,
		Title:    "Account suspended",
		Body:     evt.Name + " has been suspended.",
	})

	return nil
}

func (s *Usecase) notifySupplier(ctx context.Context, meta event.Meta, actorID, supplierID, reason string, in DispatchInput) {
	if reason != "" {
		in.Body += " Reason: " + reason
	}
	in.CompanyID = supplierID
	in.Data = valueobject.JSONMap{"supplier_id": supplierID, "reason": reason}
	in.ActionURL = supplierProfileURL
	in.EntityType = entitySupplier
	in.EntityID = supplierID

	s.notify(ctx, meta, actorID, s.companyMembers(ctx, supplierID, nil), in)
}
