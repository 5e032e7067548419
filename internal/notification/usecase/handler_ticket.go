package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const entityTicket = "ticket"

func (s *Usecase) OnTicketCreated(ctx context.Context, evt event.TicketCreated) error {
	ctx, span := s.startSpan(ctx, "OnTicketCreated")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.CreatorID, s.platformAdmins(ctx), DispatchInput{
		Type:       entity.TypeTicketCreated,
		Priority:   entity.PriorityNormal,
		Title:      "New support ticket " + evt.DisplayID,
		Body:       evt.Subject,
		Data:       valueobject.JSONMap{"ticket_id": evt.TicketID, "display_id": evt.DisplayID, "company_id": evt.CompanyID},
		ActionURL:  "/admin/tickets/" + evt.TicketID,
		EntityType: entityTicket,
		EntityID:   evt.TicketID,
	})

	return nil
}

// OnTicketReplied routes an admin reply to the creator, and a creator reply
// to the assignee or, while unassigned, to every admin.
func (s *Usecase) OnTicketReplied(ctx context.Context, evt event.TicketReplied) error {
	ctx, span := s.startSpan(ctx, "OnTicketReplied")
	defer span.End()

	in := DispatchInput{
		Type:       entity.TypeTicketReplied,
		Priority:   entity.PriorityNormal,
		Title:      "New reply on ticket " + evt.DisplayID,
		Body:       fmt.Sprintf("Ticket %s has a new reply.", evt.DisplayID),
		Data:       valueobject.JSONMap{"ticket_id": evt.TicketID, "display_id": evt.DisplayID},
		EntityType: entityTicket,
		EntityID:   evt.TicketID,
	}

	var recipients []string
	switch {
	case evt.AuthorIsAdmin:
		recipients = []string{evt.CreatorID}
		in.ActionURL = "/support/tickets/" + evt.TicketID
	case evt.AssigneeID != "":
		recipients = []string{evt.AssigneeID}
		in.ActionURL = "/admin/tickets/" + evt.TicketID
	default:
		recipients = s.platformAdmins(ctx)
		in.ActionURL = "/admin/tickets/" + evt.TicketID
	}

	s.notify(ctx, evt.Meta, evt.AuthorID, recipients, in)
	return nil
}

func (s *Usecase) OnTicketStatusChanged(ctx context.Context, evt event.TicketStatusChanged) error {
	ctx, span := s.startSpan(ctx, "OnTicketStatusChanged")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, []string{evt.CreatorID}, DispatchInput{
		Type:       entity.TypeTicketStatusChanged,
		Priority:   entity.PriorityNormal,
		Title:      "Ticket " + evt.DisplayID + " updated",
		Body:       fmt.Sprintf("Ticket %s is now %s.", evt.DisplayID, evt.NewStatus),
		Data:       valueobject.JSONMap{"ticket_id": evt.TicketID, "display_id": evt.DisplayID, "new_status": evt.NewStatus},
		ActionURL:  "/support/tickets/" + evt.TicketID,
		EntityType: entityTicket,
		EntityID:   evt.TicketID,
	})

	return nil
}
