package event

import "time"

type DocumentUploaded struct {
	Meta
	DocumentID   string `json:"document_id"`
	SupplierID   string `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	DocumentType string `json:"document_type"`
	ActorID      string `json:"actor_id"`
}

func (DocumentUploaded) EventName() string { return DocumentUploadedName }

type DocumentApproved struct {
	Meta
	DocumentID   string `json:"document_id"`
	SupplierID   string `json:"supplier_id"`
	DocumentType string `json:"document_type"`
	ActorID      string `json:"actor_id"`
}

func (DocumentApproved) EventName() string { return DocumentApprovedName }

type DocumentRejected struct {
	Meta
	DocumentID   string `json:"document_id"`
	SupplierID   string `json:"supplier_id"`
	DocumentType string `json:"document_type"`
	Reason       string `json:"reason"`
	ActorID      string `json:"actor_id"`
}

func (DocumentRejected) EventName() string { return DocumentRejectedName }

type DocumentExpiring struct {
	Meta
	DocumentID   string    `json:"document_id"`
	SupplierID   string    `json:"supplier_id"`
	DocumentType string    `json:"document_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	DaysLeft     int       `json:"days_left"`
}

func (DocumentExpiring) EventName() string { return DocumentExpiringName }

type DocumentExpired struct {
	Meta
	DocumentID   string    `json:"document_id"`
	SupplierID   string    `json:"supplier_id"`
	DocumentType string    `json:"document_type"`
	ExpiredAt    time.Time `json:"expired_at"`
}

func (DocumentExpired) EventName() string { return DocumentExpiredName }
