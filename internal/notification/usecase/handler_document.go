package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/valueobject"
	"github.com/shandysiswandi/herald/internal/shared/event"
)

const (
	entityDocument      = "document"
	supplierDocumentURL = "/supplier/documents"
)

func (s *Usecase) OnDocumentUploaded(ctx context.Context, evt event.DocumentUploaded) error {
	ctx, span := s.startSpan(ctx, "OnDocumentUploaded")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.platformAdmins(ctx), DispatchInput{
		Type:       entity.TypeDocumentUploaded,
		Priority:   entity.PriorityNormal,
		Title:      "Document awaiting review",
		Body:       fmt.Sprintf("%s uploaded a %s document.", evt.SupplierName, evt.DocumentType),
		Data:       valueobject.JSONMap{"document_id": evt.DocumentID, "supplier_id": evt.SupplierID, "document_type": evt.DocumentType},
		ActionURL:  "/admin/documents/" + evt.DocumentID,
		EntityType: entityDocument,
		EntityID:   evt.DocumentID,
	})

	return nil
}

func (s *Usecase) OnDocumentApproved(ctx context.Context, evt event.DocumentApproved) error {
	ctx, span := s.startSpan(ctx, "OnDocumentApproved")
	defer span.End()

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeDocumentApproved,
		Priority:   entity.PriorityNormal,
		CompanyID:  evt.SupplierID,
		Title:      "Document approved",
		Body:       fmt.Sprintf("Your %s document was approved.", evt.DocumentType),
		Data:       valueobject.JSONMap{"document_id": evt.DocumentID, "document_type": evt.DocumentType},
		ActionURL:  supplierDocumentURL,
		EntityType: entityDocument,
		EntityID:   evt.DocumentID,
	})

	return nil
}

func (s *Usecase) OnDocumentRejected(ctx context.Context, evt event.DocumentRejected) error {
	ctx, span := s.startSpan(ctx, "OnDocumentRejected")
	defer span.End()

	body := fmt.Sprintf("Your %s document was rejected.", evt.DocumentType)
	if evt.Reason != "" {
		body += " Reason: " + evt.Reason
	}

	s.notify(ctx, evt.Meta, evt.ActorID, s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeDocumentRejected,
		Priority:   entity.PriorityHigh,
		CompanyID:  evt.SupplierID,
		Title:      "Document rejected",
		Body:       body,
		Data:       valueobject.JSONMap{"document_id": evt.DocumentID, "document_type": evt.DocumentType, "reason": evt.Reason},
		ActionURL:  supplierDocumentURL,
		EntityType: entityDocument,
		EntityID:   evt.DocumentID,
	})

	return nil
}

func (s *Usecase) OnDocumentExpiring(ctx context.Context, evt event.DocumentExpiring) error {
	ctx, span := s.startSpan(ctx, "OnDocumentExpiring")
	defer span.End()

	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeDocumentExpiring,
		Priority:   entity.PriorityHigh,
		CompanyID:  evt.SupplierID,
		Title:      "Document expiring soon",
		Body:       fmt.Sprintf("Your %s document expires in %d days.", evt.DocumentType, evt.DaysLeft),
		Data:       valueobject.JSONMap{"document_id": evt.DocumentID, "document_type": evt.DocumentType, "expires_at": evt.ExpiresAt, "days_left": evt.DaysLeft},
		ActionURL:  supplierDocumentURL,
		EntityType: entityDocument,
		EntityID:   evt.DocumentID,
	})

	return nil
}

func (s *Usecase) OnDocumentExpired(ctx context.Context, evt event.DocumentExpired) error {
	ctx, span := s.startSpan(ctx, "OnDocumentExpired")
	defer span.End()

	s.notify(ctx, evt.Meta, "", s.companyMembers(ctx, evt.SupplierID, entity.KeyRoles), DispatchInput{
		Type:       entity.TypeDocumentExpired,
		Priority:   entity.PriorityUrgent,
		CompanyID:  evt.SupplierID,
		Title:      "Document expired",
		Body:       fmt.Sprintf("Your %s document has expired. Upload a new one to keep operating.", evt.DocumentType),
		Data:       valueobject.JSONMap{"document_id": evt.DocumentID, "document_type": evt.DocumentType, "expired_at": evt.ExpiredAt},
		ActionURL:  supplierDocumentURL,
		EntityType: entityDocument,
		EntityID:   evt.DocumentID,
	})

	return nil
}
