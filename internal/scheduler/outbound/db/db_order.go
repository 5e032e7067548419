package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/herald/internal/scheduler/entity"
)

const orderColumns = `id, display_id, brand_company_id, supplier_company_id, status, delivery_deadline`

func (s *DB) ListOrdersDueWithin(ctx context.Context, from, to time.Time, statuses []string) (_ []entity.OrderDeadline, err error) {
	ctx, span := s.startSpan(ctx, "ListOrdersDueWithin")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = ANY(@statuses::text[])
		  AND delivery_deadline > @from AND delivery_deadline <= @to
		ORDER BY delivery_deadline, id`,
		pgx.NamedArgs{"statuses": statuses, "from": from, "to": to})
	if err != nil {
		return nil, s.mapError(err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	return orders, s.mapError(err)
}

func (s *DB) GetOrderDeadline(ctx context.Context, orderID string) (_ *entity.OrderDeadline, err error) {
	ctx, span := s.startSpan(ctx, "GetOrderDeadline")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE id::text = @id AND delivery_deadline IS NOT NULL`,
		pgx.NamedArgs{"id": orderID})
	if err != nil {
		return nil, s.mapError(err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (entity.OrderDeadline, error) {
	var o entity.OrderDeadline
	err := row.Scan(&o.OrderID, &o.DisplayID, &o.BrandID, &o.SupplierID, &o.Status, &o.Deadline)
	return o, err
}
