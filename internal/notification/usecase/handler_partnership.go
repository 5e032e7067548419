package usecase

import (
	"context"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const entityPartnership = "partnership_request"

func (s *Usecase) OnPartnershipRequested(ctx context.Context, evt event.PartnershipRequested) error {
	ctx, span := s.startSpan(ctx, "OnPartnershipRequested")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.RequesterID, s.companyMembers(ctx, evt.TargetCompanyID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypePartnershipRequested,
		Priority:   entity.PriorityNormal,
		CompanyID:  evt.TargetCompanyID,
		Title:      "New partnership request",
		Body:       evt.RequesterCompany + " wants to partner with you.",
		Data:       valueobject.JSONMap{"request_id": evt.RequestID, "requester_company_id": evt.RequesterCompanyID},
		ActionURL:  "/partnerships/" + evt.RequestID,
		EntityType: entityPartnership,
		EntityID:   evt.RequestID,
	})

	return nil
}

func (s *Usecase) OnPartnershipAccepted(ctx context.Context, evt event.PartnershipAccepted) error {
	ctx, span := s.startSpan(ctx, "OnPartnershipAccepted")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, []string{evt.RequesterID}, DispatchInput{
		Type:       entity.TypePartnershipAccepted,
		Priority:   entity.PriorityNormal,
		Title:      "Partnership accepted",
		Body:       evt.TargetCompanyName + " accepted your partnership request.",
		Data:       valueobject.JSONMap{"request_id": evt.RequestID, "target_company_id": evt.TargetCompanyID},
		ActionURL:  "/partnerships/" + evt.RequestID,
		EntityType: entityPartnership,
		EntityID:   evt.RequestID,
	})

	return nil
}

func (s *Usecase) OnPartnershipRejected(ctx context.Context, evt event.PartnershipRejected) error {
	ctx, span := s.startSpan(ctx, "OnPartnershipRejected")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, []string{evt.RequesterID}, DispatchInput{
		Type:       entity.TypePartnershipRejected,
		Priority:   entity.PriorityLow,
		Title:      "Partnership declined",
		Body:       evt.TargetCompanyName + " declined your partnership request.",
		Data:       valueobject.JSONMap{"request_id": evt.RequestID, "target_company_id": evt.TargetCompanyID},
		ActionURL:  "/partnerships/" + evt.RequestID,
		EntityType: entityPartnership,
		EntityID:   evt.RequestID,
	})

	return nil
}
