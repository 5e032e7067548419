package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const entityOrder = "order"

func brandOrderURL(id string) string    { return "/brand/orders/" + id }
func supplierOrderURL(id string) string { return "/supplier/orders/" + id }

// side is one company of a brand/supplier pair and the portal its members use.
type side struct {
	companyID string
	portal    string
}

func (sd side) url(resource, id string) string {
	return sd.portal + "/" + resource + "/" + id
}

// counterparts returns the side opposite to actorCompanyID, or both sides
// when the actor's company is neither.
func counterparts(brandID, supplierID, actorCompanyID string) []side {
	brand := side{companyID: brandID, portal: "/brand"}
	supplier := side{companyID: supplierID, portal: "/supplier"}

	switch actorCompanyID {
	case "":
		return []side{brand, supplier}
	case brandID:
		return []side{supplier}
	case supplierID:
		return []side{brand}
	default:
		return []side{brand, supplier}
	}
}

func (s *Usecase) OnOrderCreated(ctx context.Context, evt event.OrderCreated) error {
	ctx, span := s.startSpan(ctx, "OnOrderCreated")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeOrderCreated,
		Priority:   entity.PriorityHigh,
		CompanyID:  evt.SupplierID,
		Title:      "New order received",
		Body:       fmt.Sprintf("%s placed order %s.", evt.BrandName, evt.DisplayID),
		Data:       valueobject.JSONMap{"order_id": evt.OrderID, "display_id": evt.DisplayID, "brand_id": evt.BrandID},
		ActionURL:  supplierOrderURL(evt.OrderID),
		EntityType: entityOrder,
		EntityID:   evt.OrderID,
	})

	return nil
}

func (s *Usecase) OnOrderAccepted(ctx context.Context, evt event.OrderAccepted) error {
	ctx, span := s.startSpan(ctx, "OnOrderAccepted")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.BrandID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeOrderAccepted,
		Priority:   entity.PriorityNormal,
		CompanyID:  evt.BrandID,
		Title:      "Order accepted",
		Body:       fmt.Sprintf("%s accepted order %s.", evt.SupplierName, evt.DisplayID),
		Data:       valueobject.JSONMap{"order_id": evt.OrderID, "display_id": evt.DisplayID, "supplier_id": evt.SupplierID},
		ActionURL:  brandOrderURL(evt.OrderID),
		EntityType: entityOrder,
		EntityID:   evt.OrderID,
	})

	return nil
}

func (s *Usecase) OnOrderRejected(ctx context.Context, evt event.OrderRejected) error {
	ctx, span := s.startSpan(ctx, "OnOrderRejected")
	defer span.End()

	body := fmt.Sprintf("%s rejected order %s.", evt.SupplierName, evt.DisplayID)
	if evt.Reason != "" {
		body += " Reason: " + evt.Reason
	}

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.BrandID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeOrderRejected,
		Priority:   entity.PriorityHigh,
		CompanyID:  evt.BrandID,
		Title:      "Order rejected",
		Body:       body,
		Data:       valueobject.JSONMap{"order_id": evt.OrderID, "display_id": evt.DisplayID, "reason": evt.Reason},
		ActionURL:  brandOrderURL(evt.OrderID),
		EntityType: entityOrder,
		EntityID:   evt.OrderID,
	})

	return nil
}

// OnOrderStatusChanged tells the side that did not make the change. When the
// actor's company is unknown both sides are told.
func (s *Usecase) OnOrderStatusChanged(ctx context.Context, evt event.OrderStatusChanged) error {
	ctx, span := s.startSpan(ctx, "OnOrderStatusChanged")
	defer span.End()

	in := DispatchInput{
		Type:       entity.TypeOrderStatusChanged,
		Priority:   entity.PriorityNormal,
		Title:      "Order status updated",
		Body:       fmt.Sprintf("Order %s moved from %s to %s.", evt.DisplayID, evt.OldStatus, evt.NewStatus),
		Data:       valueobject.JSONMap{"order_id": evt.OrderID, "display_id": evt.DisplayID, "old_status": evt.OldStatus, "new_status": evt.NewStatus},
		EntityType: entityOrder,
		EntityID:   evt.OrderID,
	}

	for _, target := range counterparts(evt.BrandID, evt.SupplierID, evt.ActorCompanyID) {
		one := in
		one.CompanyID = target.companyID
		one.ActionURL = target.url("orders", evt.OrderID)
		s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, target.companyID, nil), one)
	}

	return nil
}

// OnOrderDeadlineApproaching warns both companies. Less than a day left is urgent.
func (s *Usecase) OnOrderDeadlineApproaching(ctx context.Context, evt event.OrderDeadlineApproaching) error {
	ctx, span := s.startSpan(ctx, "OnOrderDeadlineApproaching")
	defer span.End()

	priority := entity.PriorityUrgent
	if evt.HoursRemaining > 24 {
		priority = entity.PriorityHigh
	}

	in := DispatchInput{
		Type:     entity.TypeOrderDeadlineApproaching,
		Priority: priority,
		Title:    "Order deadline approaching",
		Body:     fmt.Sprintf("Order %s is due in %d hours.", evt.DisplayID, evt.HoursRemaining),
		Data: valueobject.JSONMap{
			"order_id":        evt.OrderID,
			"display_id":      evt.DisplayID,
			"deadline":        evt.Deadline,
			"hours_remaining": evt.HoursRemaining,
		},
		EntityType: entityOrder,
		EntityID:   evt.OrderID,
	}

	brand := in
	brand.CompanyID = evt.BrandID
	brand.ActionURL = brandOrderURL(evt.OrderID)
	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.BrandID, nil), brand)

	supplier := in
	supplier.CompanyID = evt.SupplierID
	supplier.ActionURL = supplierOrderURL(evt.OrderID)
	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.SupplierID, nil), supplier)

	return nil
}
