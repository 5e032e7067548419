package usecase

import (
	"context"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const entityContract = "contract"

func (s *Usecase) OnContractSent(ctx context.Context, evt event.ContractSent) error {
	ctx, span := s.startSpan(ctx, "OnContractSent")
	defer span.End()

	s.notifyContract(ctx, evt.Meta, evt.ActorID, evt.BrandID, evt.SupplierID, evt.SenderCompanyID, DispatchInput{
		Type:       entity.TypeContractSent,
		Priority:   entity.PriorityHigh,
		Title:      "Contract awaiting signature",
		Body:       "You received the contract \"" + evt.Title + "\".",
		Data:       valueobject.JSONMap{"contract_id": evt.ContractID, "title": evt.Title},
		EntityType: entityContract,
		EntityID:   evt.ContractID,
	})

	return nil
}

func (s *Usecase) OnContractSigned(ctx context.Context, evt event.ContractSigned) error {
	ctx, span := s.startSpan(ctx, "OnContractSigned")
	defer span.End()

	s.notifyContract(ctx, evt.Meta, evt.ActorID, evt.BrandID, evt.SupplierID, evt.SignerCompanyID, DispatchInput{
		Type:       entity.TypeContractSigned,
		Priority:   entity.PriorityNormal,
		Title:      "Contract signed",
		Body:       "The contract \"" + evt.Title + "\" was signed.",
		Data:       valueobject.JSONMap{"contract_id": evt.ContractID, "title": evt.Title},
		EntityType: entityContract,
		EntityID:   evt.ContractID,
	})

	return nil
}

func (s *Usecase) notifyContract(ctx context.Context, meta event.Meta, actorID, brandID, supplierID, actorCompanyID string, in DispatchInput) {
	for _, target := range counterparts(brandID, supplierID, actorCompanyID) {
		one := in
		one.CompanyID = target.companyID
		one.ActionURL = target.url("contracts", in.EntityID)
		s.notify(ctx, meta, actorID, s.companyMembers(ctx, target.companyID, entity.KeyRoles), one)
	}
}
