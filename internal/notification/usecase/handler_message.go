package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const (
	entityConversation = "conversation"
	entityProposal     = "proposal"
)

// OnMessageNew notifies every member of the receiving company. Chat is noisy
// so it never goes out by email.
func (s *Usecase) OnMessageNew(ctx context.Context, evt event.MessageNew) error {
	ctx, span := s.startSpan(ctx, "OnMessageNew")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.SenderID, s.companyMembers(ctx, evt.RecipientCompanyID, nil), DispatchInput{
		Type:      entity.TypeMessageNew,
		Priority:  entity.PriorityNormal,
		CompanyID: evt.RecipientCompanyID,
		Title:     "New message from " + evt.SenderName,
		Body:      evt.Preview,
		Data: valueobject.JSONMap{
			"conversation_id": evt.ConversationID,
			"order_id":        evt.OrderID,
			"sender_id":       evt.SenderID,
		},
		ActionURL:  "/messages/" + evt.ConversationID,
		EntityType: entityConversation,
		EntityID:   evt.ConversationID,
		SkipEmail:  true,
	})

	return nil
}

func (s *Usecase) OnProposalSent(ctx context.Context, evt event.ProposalSent) error {
	ctx, span := s.startSpan(ctx, "OnProposalSent")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.RecipientCompanyID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeProposalSent,
		Priority:   entity.PriorityHigh,
		CompanyID:  evt.RecipientCompanyID,
		Title:      "New proposal received",
		Body:       fmt.Sprintf("You received a proposal of %.2f.", evt.Amount),
		Data:       valueobject.JSONMap{"proposal_id": evt.ProposalID, "order_id": evt.OrderID, "amount": evt.Amount},
		ActionURL:  "/proposals/" + evt.ProposalID,
		EntityType: entityProposal,
		EntityID:   evt.ProposalID,
	})

	return nil
}

func (s *Usecase) OnProposalAccepted(ctx context.Context, evt event.ProposalAccepted) error {
	ctx, span := s.startSpan(ctx, "OnProposalAccepted")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, []string{evt.ProposerID}, DispatchInput{
		Type:       entity.TypeProposalAccepted,
		Priority:   entity.PriorityHigh,
		Title:      "Proposal accepted",
		Body:       "Your proposal was accepted.",
		Data:       valueobject.JSONMap{"proposal_id": evt.ProposalID, "order_id": evt.OrderID},
		ActionURL:  "/proposals/" + evt.ProposalID,
		EntityType: entityProposal,
		EntityID:   evt.ProposalID,
	})

	return nil
}

func (s *Usecase) OnProposalRejected(ctx context.Context, evt event.ProposalRejected) error {
	ctx, span := s.startSpan(ctx, "OnProposalRejected")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, []string{evt.ProposerID}, DispatchInput{
		Type:       entity.TypeProposalRejected,
		Priority:   entity.PriorityNormal,
		Title:      "Proposal rejected",
		Body:       "Your proposal was rejected.",
		Data:       valueobject.JSONMap{"proposal_id": evt.ProposalID, "order_id": evt.OrderID},
		ActionURL:  "/proposals/" + evt.ProposalID,
		EntityType: entityProposal,
		EntityID:   evt.ProposalID,
	})

	return nil
}
