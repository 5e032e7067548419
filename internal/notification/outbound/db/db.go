package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/herald/internal/notification/entity"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/instrument"
	"github.com/shandysiswandi/herald/internal/pkg/uid"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

// - 23505 unique violation → goerror.ErrConflict
// - no rows → goerror.ErrNotFound
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// filterSQL renders f as a WHERE clause over named args. ok is false when f
// can match nothing, e.g. every requested id is malformed.
func filterSQL(f entity.Filter) (where string, args pgx.NamedArgs, ok bool) {
	args = pgx.NamedArgs{"recipient_id": f.RecipientID}
	clauses := []string{"recipient_id = @recipient_id"}

	if f.CompanyID != "" {
		clauses = append(clauses, "(company_id IS NULL OR company_id = @company_id)")
		args["company_id"] = f.CompanyID
	}
	if f.UnreadOnly {
		clauses = append(clauses, "read = FALSE")
	}
	if f.Type != "" {
		clauses = append(clauses, "type = @type")
		args["type"] = f.Type.String()
	}
	if len(f.IDs) > 0 {
		ids := make([]string, 0, len(f.IDs))
		for _, id := range f.IDs {
			if uid.Valid(id) {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return "", nil, false
		}
		clauses = append(clauses, "id = ANY(@ids::uuid[])")
		args["ids"] = ids
	}

	return fmt.Sprintf("WHERE %s", strings.Join(clauses, " AND ")), args, true
}
