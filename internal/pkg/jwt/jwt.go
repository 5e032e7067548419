package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the JWT signing method is not supported.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrTokenExpired is returned when the JWT token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// RoleAdmin marks platform administrators.
const RoleAdmin = "ADMIN"

// JWT generates and verifies tokens.
type JWT interface {
	Generate(id Identity) (string, error)
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret     []byte
	Issuer     string
	Audiences  []string
	TTLMinutes time.Duration
	// Leeway tolerates clock skew against the issuing auth service.
	Leeway time.Duration
	Clock  clocker
	UUID   generator
}

// Identity is the authenticated principal embedded in a token.
type Identity struct {
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	Role      string `json:"role,omitempty"`
}

// Claims wraps the registered claims with the identity payload.
type Claims struct {
	jwt.RegisteredClaims
	Identity
}

// IsAdmin reports whether the principal is a platform administrator.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// GetAuth returns the JWT claims stored in the context, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores JWT claims in the context.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}
