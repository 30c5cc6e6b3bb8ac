package ports

import (
	"context"

	"github.com/formatrack/training-system/internal/core/domain"
)

// AccountRepository is the credential store adapter: row-oriented access to
// accounts in the `login` collection.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	// FindByEmail looks up an account by normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// SetOTPCode stores a pending recovery code on the account.
	SetOTPCode(ctx context.Context, email, code string) error
	// ResetPassword replaces the password hash and clears any pending OTP
	// code in a single store write.
	ResetPassword(ctx context.Context, email, passwordHash string) error
	// HasAdmin reports whether at least one admin account exists.
	HasAdmin(ctx context.Context) (bool, error)
}
