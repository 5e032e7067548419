package entity

// Type is the closed set of notification categories.
type Type string

const (
	TypeOrderCreated             Type = "ORDER_CREATED"
	TypeOrderAccepted            Type = "ORDER_ACCEPTED"
	TypeOrderRejected            Type = "ORDER_REJECTED"
	TypeOrderStatusChanged       Type = "ORDER_STATUS_CHANGED"
	TypeOrderDeadlineApproaching Type = "ORDER_DEADLINE_APPROACHING"
	TypeMessageNew               Type = "MESSAGE_NEW"
	TypeProposalSent             Type = "PROPOSAL_SENT"
	TypeProposalAccepted         Type = "PROPOSAL_ACCEPTED"
	TypeProposalRejected         Type = "PROPOSAL_REJECTED"
	TypePaymentRegistered        Type = "PAYMENT_REGISTERED"
	TypePaymentConfirmed         Type = "PAYMENT_CONFIRMED"
	TypePaymentOverdue           Type = "PAYMENT_OVERDUE"
	TypeTicketCreated            Type = "TICKET_CREATED"
	TypeTicketReplied            Type = "TICKET_REPLIED"
	TypeTicketStatusChanged      Type = "TICKET_STATUS_CHANGED"
	TypeDocumentUploaded         Type = "DOCUMENT_UPLOADED"
	TypeDocumentApproved         Type = "DOCUMENT_APPROVED"
	TypeDocumentRejected         Type = "DOCUMENT_REJECTED"
	TypeDocumentExpiring         Type = "DOCUMENT_EXPIRING"
	TypeDocumentExpired          Type = "DOCUMENT_EXPIRED"
	TypeContractSent             Type = "CONTRACT_SENT"
	TypeContractSigned           Type = "CONTRACT_SIGNED"
	TypePartnershipRequested     Type = "PARTNERSHIP_REQUESTED"
	TypePartnershipAccepted      Type = "PARTNERSHIP_ACCEPTED"
	TypePartnershipRejected      Type = "PARTNERSHIP_REJECTED"
	TypeSupplierRegistered       Type = "SUPPLIER_REGISTERED"
	TypeSupplierApproved         Type = "SUPPLIER_APPROVED"
	TypeSupplierRejected         Type = "SUPPLIER_REJECTED"
	TypeSupplierSuspended        Type = "SUPPLIER_SUSPENDED"
	TypeSystem                   Type = "SYSTEM"
)

var validTypes = map[Type]struct{}{
	TypeOrderCreated: {}, TypeOrderAccepted: {}, TypeOrderRejected: {}, TypeOrderStatusChanged: {},
	TypeOrderDeadlineApproaching: {}, TypeMessageNew: {}, TypeProposalSent: {}, TypeProposalAccepted: {},
	TypeProposalRejected: {}, TypePaymentRegistered: {}, TypePaymentConfirmed: {}, TypePaymentOverdue: {},
	TypeTicketCreated: {}, TypeTicketReplied: {}, TypeTicketStatusChanged: {}, TypeDocumentUploaded: {},
	TypeDocumentApproved: {}, TypeDocumentRejected: {}, TypeDocumentExpiring: {}, TypeDocumentExpired: {},
	TypeContractSent: {}, TypeContractSigned: {}, TypePartnershipRequested: {}, TypePartnershipAccepted: {},
	TypePartnershipRejected: {}, TypeSupplierRegistered: {}, TypeSupplierApproved: {}, TypeSupplierRejected: {},
	TypeSupplierSuspended: {}, TypeSystem: {},
}

func (t Type) IsValid() bool {
	_, ok := validTypes[t]
	return ok
}

func (t Type) String() string { return string(t) }

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

func (p Priority) String() string { return string(p) }

// DeliveryStatus tracks the real-time push only; email and SMS are not recorded.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
)

func (s DeliveryStatus) String() string { return string(s) }

// CompanyRole is a member role inside a company.
type CompanyRole string

const (
	RoleOwner   CompanyRole = "OWNER"
	RoleManager CompanyRole = "MANAGER"
	RoleMember  CompanyRole = "MEMBER"
)

// KeyRoles are the decision makers of a company. A nil role list means every member.
var KeyRoles = []CompanyRole{RoleOwner, RoleManager}
