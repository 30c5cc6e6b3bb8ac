package domain

import (
	"strings"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Account models a person who can authenticate against the system.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
	// OTPCode is the pending password-recovery code. Empty when no reset is
	// in flight; cleared in the same write that commits a new password.
	OTPCode   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRole reports whether r is one of the two known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleUser
}

// NormalizeEmail canonicalizes an address for lookup and uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
