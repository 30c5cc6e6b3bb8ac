package ports

import (
	"context"

	"github.com/formatrack/training-system/internal/core/domain"
)

// AuthService is the auth gateway: login, registration, and the one-time-code
// password recovery flow.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	// Login verifies credentials and returns a signed session token plus the
	// account. Wrong passwords yield domain.ErrInvalidCredentials without
	// revealing the account's role.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyAndResetPassword(ctx context.Context, email, code, newPassword string) error
	// IsAdmin resolves the role of an email. Unknown accounts are not admins;
	// this never returns an error for a missing account.
	IsAdmin(ctx context.Context, email string) (bool, error)
}
