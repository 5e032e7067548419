package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/herald/internal/scheduler/entity"
)

// FlagDocumentsExpiringSoon moves documents expiring in (now, until] to
// EXPIRING_SOON and returns the ones that moved.
func (s *DB) FlagDocumentsExpiringSoon(ctx context.Context, now, until time.Time) (_ []entity.Document, err error) {
	ctx, span := s.startSpan(ctx, "FlagDocumentsExpiringSoon")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		UPDATE supplier_documents SET status = @target, updated_at = @now
		WHERE expires_at > @now AND expires_at <= @until
		  AND status NOT IN (@target, @expired, 'REJECTED')
		RETURNING id, supplier_company_id, type, expires_at`,
		pgx.NamedArgs{
			"target":  entity.DocumentStatusExpiringSoon,
			"expired": entity.DocumentStatusExpired,
			"now":     now,
			"until":   until,
		})
	if err != nil {
		return nil, s.mapError(err)
	}

	docs, err := pgx.CollectRows(rows, scanDocument)
	return docs, s.mapError(err)
}

// FlagDocumentsExpired moves documents whose expiry passed to EXPIRED.
func (s *DB) FlagDocumentsExpired(ctx context.Context, now time.Time) (_ []entity.Document, err error) {
	ctx, span := s.startSpan(ctx, "FlagDocumentsExpired")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		UPDATE supplier_documents SET status = @target, updated_at = @now
		WHERE expires_at <= @now AND status NOT IN (@target, 'REJECTED')
		RETURNING id, supplier_company_id, type, expires_at`,
		pgx.NamedArgs{"target": entity.DocumentStatusExpired, "now": now})
	if err != nil {
		return nil, s.mapError(err)
	}

	docs, err := pgx.CollectRows(rows, scanDocument)
	return docs, s.mapError(err)
}

func scanDocument(row pgx.CollectableRow) (entity.Document, error) {
	var d entity.Document
	err := row.Scan(&d.ID, &d.SupplierID, &d.Type, &d.ExpiresAt)
	return d, err
}

// FlagPaymentsOverdue moves PENDING payments past their due date to OVERDUE.
func (s *DB) FlagPaymentsOverdue(ctx context.Context, now time.Time) (_ []entity.Payment, err error) {
	ctx, span := s.startSpan(ctx, "FlagPaymentsOverdue")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		WITH flagged AS (
			UPDATE payments SET status = @target, updated_at = @now
			WHERE status = @pending AND due_date < @now
			RETURNING id, order_id, amount, due_date
		)
		SELECT f.id, f.order_id, o.display_id, o.brand_company_id, o.supplier_company_id, f.amount::float8, f.due_date
		FROM flagged f JOIN orders o ON o.id = f.order_id
		ORDER BY f.due_date, f.id`,
		pgx.NamedArgs{"target": entity.PaymentStatusOverdue, "pending": entity.PaymentStatusPending, "now": now})
	if err != nil {
		return nil, s.mapError(err)
	}

	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Payment, error) {
		var p entity.Payment
		err := row.Scan(&p.ID, &p.OrderID, &p.DisplayID, &p.BrandID, &p.SupplierID, &p.Amount, &p.DueDate)
		return p, err
	})
	return payments, s.mapError(err)
}
