// Package event holds the domain event catalogue shared by producers and the
// notification module. Each event name maps to exactly one payload struct.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Broker wiring for domain events produced outside this process.
const (
	DomainEventDestination          string = "domain_events"
	DomainEventConsumerNotification string = "domain_events_notification"

	// HeaderEvent carries the event name, HeaderCorrelationID the caller's correlation id.
	HeaderEvent         string = "event"
	HeaderCorrelationID string = "cID"
)

var ErrUnknownEvent = errors.New("event: unknown event name")

// Event is a named domain event payload.
type Event interface {
	EventName() string
}

// Meta is embedded by every payload. EventID is set by producers that may run
// more than once so that downstream dispatch can be deduplicated.
type Meta struct {
	EventID    string    `json:"event_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (m Meta) ID() string { return m.EventID }

const (
	OrderCreatedName             = "order:created"
	OrderAcceptedName            = "order:accepted"
	OrderRejectedName            = "order:rejected"
	OrderStatusChangedName       = "order:status-changed"
	OrderDeadlineApproachingName = "order:deadline-approaching"

	MessageNewName       = "message:new"
	ProposalSentName     = "proposal:sent"
	ProposalAcceptedName = "proposal:accepted"
	ProposalRejectedName = "proposal:rejected"

	PaymentRegisteredName = "payment:registered"
	PaymentConfirmedName  = "payment:confirmed"
	PaymentOverdueName    = "payment:overdue"

	TicketCreatedName       = "ticket:created"
	TicketRepliedName       = "ticket:replied"
	TicketStatusChangedName = "ticket:status-changed"

	DocumentUploadedName = "document:uploaded"
	DocumentApprovedName = "document:approved"
	DocumentRejectedName = "document:rejected"
	DocumentExpiringName = "document:expiring"
	DocumentExpiredName  = "document:expired"

	ContractSentName   = "contract:sent"
	ContractSignedName = "contract:signed"

	PartnershipRequestedName = "partnership:requested"
	PartnershipAcceptedName  = "partnership:accepted"
	PartnershipRejectedName  = "partnership:rejected"

	SupplierRegisteredName = "supplier:registered"
	SupplierApprovedName   = "supplier:approved"
	SupplierRejectedName   = "supplier:rejected"
	SupplierSuspendedName  = "supplier:suspended"
)

// Names lists every catalogued event.
func Names() []string {
	return []string{
		OrderCreatedName, OrderAcceptedName, OrderRejectedName, OrderStatusChangedName, OrderDeadlineApproachingName,
		MessageNewName, ProposalSentName, ProposalAcceptedName, ProposalRejectedName,
		PaymentRegisteredName, PaymentConfirmedName, PaymentOverdueName,
		TicketCreatedName, TicketRepliedName, TicketStatusChangedName,
		DocumentUploadedName, DocumentApprovedName, DocumentRejectedName, DocumentExpiringName, DocumentExpiredName,
		ContractSentName, ContractSignedName,
		PartnershipRequestedName, PartnershipAcceptedName, PartnershipRejectedName,
		SupplierRegisteredName, SupplierApprovedName, SupplierRejectedName, SupplierSuspendedName,
	}
}

// Decode parses body as the payload registered for name.
func Decode(name string, body []byte) (Event, error) {
	switch name {
	case OrderCreatedName:
		return decodeAs[OrderCreated](body)
	case OrderAcceptedName:
		return decodeAs[OrderAccepted](body)
	case OrderRejectedName:
		return decodeAs[OrderRejected](body)
	case OrderStatusChangedName:
		return decodeAs[OrderStatusChanged](body)
	case OrderDeadlineApproachingName:
		return decodeAs[OrderDeadlineApproaching](body)
	case MessageNewName:
		return decodeAs[MessageNew](body)
	case ProposalSentName:
		return decodeAs[ProposalSent](body)
	case ProposalAcceptedName:
		return decodeAs[ProposalAccepted](body)
	case ProposalRejectedName:
		return decodeAs[ProposalRejected](body)
	case PaymentRegisteredName:
		return decodeAs[PaymentRegistered](body)
	case PaymentConfirmedName:
		return decodeAs[PaymentConfirmed](body)
	case PaymentOverdueName:
		return decodeAs[PaymentOverdue](body)
	case TicketCreatedName:
		return decodeAs[TicketCreated](body)
	case TicketRepliedName:
		return decodeAs[TicketReplied](body)
	case TicketStatusChangedName:
		return decodeAs[TicketStatusChanged](body)
	case DocumentUploadedName:
		return decodeAs[DocumentUploaded](body)
	case DocumentApprovedName:
		return decodeAs[DocumentApproved](body)
	case DocumentRejectedName:
		return decodeAs[DocumentRejected](body)
	case DocumentExpiringName:
		return decodeAs[DocumentExpiring](body)
	case DocumentExpiredName:
		return decodeAs[DocumentExpired](body)
	case ContractSentName:
		return decodeAs[ContractSent](body)
	case ContractSignedName:
		return decodeAs[ContractSigned](body)
	case PartnershipRequestedName:
		return decodeAs[PartnershipRequested](body)
	case PartnershipAcceptedName:
		return decodeAs[PartnershipAccepted](body)
	case PartnershipRejectedName:
		return decodeAs[PartnershipRejected](body)
	case SupplierRegisteredName:
		return decodeAs[SupplierRegistered](body)
	case SupplierApprovedName:
		return decodeAs[SupplierApproved](body)
	case SupplierRejectedName:
		return decodeAs[SupplierRejected](body)
	case SupplierSuspendedName:
		return decodeAs[SupplierSuspended](body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

func decodeAs[T Event](body []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("event: decode %s: %w", v.EventName(), err)
	}
	return v, nil
}
