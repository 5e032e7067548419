package usecase

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/eventbus"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

// RegisterHandlers subscribes the notification handlers of every domain on bus.
func (s *Usecase) RegisterHandlers(bus *eventbus.Bus) {
	eventbus.On(bus, event.OrderCreatedName, s.OnOrderCreated)
	eventbus.On(bus, event.OrderAcceptedName, s.OnOrderAccepted)
	eventbus.On(bus, event.OrderRejectedName, s.OnOrderRejected)
	eventbus.On(bus, event.OrderStatusChangedName, s.OnOrderStatusChanged)
	eventbus.On(bus, event.OrderDeadlineApproachingName, s.OnOrderDeadlineApproaching)

	eventbus.On(bus, event.MessageNewName, s.OnMessageNew)
	eventbus.On(bus, event.ProposalSentName, s.OnProposalSent)
	eventbus.On(bus, event.ProposalAcceptedName, s.OnProposalAccepted)
	eventbus.On(bus, event.ProposalRejectedName, s.OnProposalRejected)

	eventbus.On(bus, event.PaymentRegisteredName, s.OnPaymentRegistered)
	eventbus.On(bus, event.PaymentConfirmedName, s.OnPaymentConfirmed)
	eventbus.On(bus, event.PaymentOverdueName, s.OnPaymentOverdue)

	eventbus.On(bus, event.TicketCreatedName, s.OnTicketCreated)
	eventbus.On(bus, event.TicketRepliedName, s.OnTicketReplied)
	eventbus.On(bus, event.TicketStatusChangedName, s.OnTicketStatusChanged)

	eventbus.On(bus, event.DocumentUploadedName, s.OnDocumentUploaded)
	eventbus.On(bus, event.DocumentApprovedName, s.OnDocumentApproved)
	eventbus.On(bus, event.DocumentRejectedName, s.OnDocumentRejected)
	eventbus.On(bus, event.DocumentExpiringName, s.OnDocumentExpiring)
	eventbus.On(bus, event.DocumentExpiredName, s.OnDocumentExpired)

	eventbus.On(bus, event.ContractSentName, s.OnContractSent)
	eventbus.On(bus, event.ContractSignedName, s.OnContractSigned)

	eventbus.On(bus, event.PartnershipRequestedName, s.OnPartnershipRequested)
	eventbus.On(bus, event.PartnershipAcceptedName, s.OnPartnershipAccepted)
	eventbus.On(bus, event.PartnershipRejectedName, s.OnPartnershipRejected)

	eventbus.On(bus, event.SupplierRegisteredName, s.OnSupplierRegistered)
	eventbus.On(bus, event.SupplierApprovedName, s.OnSupplierApproved)
	eventbus.On(bus, event.SupplierRejectedName, s.OnSupplierRejected)
	eventbus.On(bus, event.SupplierSuspendedName, s.OnSupplierSuspended)
}

// companyMembers lists the members of companyID holding one of roles, every
// member when roles is empty. Lookup failures are logged and yield nobody.
func (s *Usecase) companyMembers(ctx context.Context, companyID string, roles []entity.CompanyRole) []string {
	if companyID == "" {
		return nil
	}

	ids, err := s.repoDirectory.ListCompanyMemberIDs(ctx, companyID, roles...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list company members", "company_id", companyID, "error", err)
		return nil
	}

	return ids
}

func (s *Usecase) platformAdmins(ctx context.Context) []string {
	ids, err := s.repoDirectory.ListPlatformAdminIDs(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list platform admins", "error", err)
		return nil
	}

	return ids
}

// notify dispatches in to recipients minus the actor. Events carrying an id
// make the dispatch idempotent per recipient and type.
func (s *Usecase) notify(ctx context.Context, meta event.Meta, actorID string, recipients []string, in DispatchInput) {
	recipients = lo.Without(lo.Uniq(lo.Compact(recipients)), actorID)
	if len(recipients) == 0 {
		slog.DebugContext(ctx, "notification has no recipients", "type", in.Type)
		return
	}

	in.IdempotencyKey = meta.ID()
	res := s.DispatchBulk(ctx, recipients, in)
	if len(res.Failures) > 0 {
		slog.WarnContext(ctx, "notification fan-out partially failed", "type", in.Type, "failed", len(res.Failures), "created", len(res.Created))
	}
}
