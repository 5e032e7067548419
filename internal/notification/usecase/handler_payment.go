package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const entityPayment = "payment"

func (s *Usecase) OnPaymentRegistered(ctx context.Context, evt event.PaymentRegistered) error {
	ctx, span := s.startSpan(ctx, "OnPaymentRegistered")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypePaymentRegistered,
		Priority:   entity.PriorityNormal,
		CompanyID:  evt.SupplierID,
		Title:      "Payment registered",
		Body:       fmt.Sprintf("A payment of %.2f was registered for order %s.", evt.Amount, evt.DisplayID),
		Data:       valueobject.JSONMap{"payment_id": evt.PaymentID, "order_id": evt.OrderID, "amount": evt.Amount},
		ActionURL:  supplierOrderURL(evt.OrderID),
		EntityType: entityPayment,
		EntityID:   evt.PaymentID,
	})

	return nil
}

func (s *Usecase) OnPaymentConfirmed(ctx context.Context, evt event.PaymentConfirmed) error {
	ctx, span := s.startSpan(ctx, "OnPaymentConfirmed")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.BrandID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypePaymentConfirmed,
		Priority:   entity.PriorityNormal,
		CompanyID:  evt.BrandID,
		Title:      "Payment confirmed",
		Body:       fmt.Sprintf("The payment of %.2f for order %s was confirmed.", evt.Amount, evt.DisplayID),
		Data:       valueobject.JSONMap{"payment_id": evt.PaymentID, "order_id": evt.OrderID, "amount": evt.Amount},
		ActionURL:  brandOrderURL(evt.OrderID),
		EntityType: entityPayment,
		EntityID:   evt.PaymentID,
	})

	return nil
}

// OnPaymentOverdue is urgent for the paying brand and high for the supplier.
func (s *Usecase) OnPaymentOverdue(ctx context.Context, evt event.PaymentOverdue) error {
	ctx, span := s.startSpan(ctx, "OnPaymentOverdue")
	defer span.End()

	in := DispatchInput{
		Type:  entity.TypePaymentOverdue,
		Title: "Payment overdue",
		Body:  fmt.Sprintf("The payment of %.2f for order %s is %d days overdue.", evt.Amount, evt.DisplayID, evt.DaysOverdue),
		Data: valueobject.JSONMap{
			"payment_id":   evt.PaymentID,
			"order_id":     evt.OrderID,
			"amount":       evt.Amount,
			"due_date":     evt.DueDate,
			"days_overdue": evt.DaysOverdue,
		},
		EntityType: entityPayment,
		EntityID:   evt.PaymentID,
	}

	brand := in
	brand.Priority = entity.PriorityUrgent
	brand.CompanyID = evt.BrandID
	brand.ActionURL = brandOrderURL(evt.OrderID)
	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.BrandID, entity.KeyRoles), brand)

	supplier := in
	supplier.Priority = entity.PriorityHigh
	supplier.CompanyID = evt.SupplierID
	supplier.ActionURL = supplierOrderURL(evt.OrderID)
	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), supplier)

	return nil
}
