package usecase

import (
	"context"

	"github.com/shandysiswandi/herald/internal/notification/gateway"
	"github.com/shandysiswandi/herald/internal/pkg/goerror"
	"github.com/shandysiswandi/herald/internal/pkg/jwt"
)

// Identity scopes feed operations to a user and, when set, a tenant.
type Identity struct {
	UserID    string
	CompanyID string
}

func (s *Usecase) requireAuth(ctx context.Context) (Identity, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.UserID == "" {
		return Identity{}, goerror.NewUnauthorized()
	}

	return Identity{UserID: clm.UserID, CompanyID: clm.CompanyID}, nil
}

func identityOf(info gateway.Info) Identity {
	return Identity{UserID: info.UserID, CompanyID: info.TenantID}
}

// Authenticate verifies a bearer token presented during a real-time handshake.
func (s *Usecase) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	_, span := s.startSpan(ctx, "Authenticate")
	defer span.End()

	if token == "" {
		return nil, goerror.NewUnauthorized()
	}

	clm, err := s.jwt.Verify(token)
	if err != nil || clm.UserID == "" {
		return nil, goerror.NewUnauthorized()
	}

	return &clm, nil
}
