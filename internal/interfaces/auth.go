package interfaces

import (
	"context"

	"github.com/ternarybob/stocksense/internal/models"
)

// AuthService validates opaque bearer credentials. Token issuance belongs to
// the external identity provider; this service only resolves a token to a
// principal and manages the stored session mapping.
type AuthService interface {
	// VerifyToken resolves a bearer token to its principal, or
	// models.ErrUnauthorized when the token is unknown or expired.
	VerifyToken(ctx context.Context, token string) (*models.Principal, error)

	// CreateSession registers a session for a principal and returns the token.
	CreateSession(ctx context.Context, userID, email string) (*models.Session, error)

	// RevokeSession invalidates a token.
	RevokeSession(ctx context.Context, token string) error
}
