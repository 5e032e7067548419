package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/shandysiswandi/herald/internal/notification/entity"
)

// The directory tables belong to the marketplace; they are only read here.

func (s *DB) ListCompanyMemberIDs(ctx context.Context, companyID string, roles ...entity.CompanyRole) (_ []string, err error) {
	ctx, span := s.startSpan(ctx, "ListCompanyMemberIDs")
	defer func() { s.endSpan(span, err) }()

	names := lo.Map(roles, func(r entity.CompanyRole, _ int) string { return string(r) })

	rows, err := s.conn.Query(ctx, `
		SELECT user_id FROM company_members
		WHERE company_id = @company_id AND active = TRUE
		  AND (cardinality(@roles::text[]) = 0 OR role = ANY(@roles::text[]))
		ORDER BY user_id`,
		pgx.NamedArgs{"company_id": companyID, "roles": names})
	if err != nil {
		return nil, s.mapError(err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, s.mapError(err)
}

func (s *DB) ListPlatformAdminIDs(ctx context.Context) (_ []string, err error) {
	ctx, span := s.startSpan(ctx, "ListPlatformAdminIDs")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `SELECT id FROM users WHERE role = 'ADMIN' AND active = TRUE ORDER BY id`)
	if err != nil {
		return nil, s.mapError(err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, s.mapError(err)
}

func (s *DB) GetUserContact(ctx context.Context, userID string) (_ *entity.UserContact, err error) {
	ctx, span := s.startSpan(ctx, "GetUserContact")
	defer func() { s.endSpan(span, err) }()

	var c entity.UserContact
	err = s.conn.QueryRow(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, '') FROM users WHERE id = @id AND active = TRUE`,
		pgx.NamedArgs{"id": userID}).Scan(&c.UserID, &c.Name, &c.Email, &c.Phone)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &c, nil
}
