package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/pbkdf2"

	"github.com/formatrack/training-system/internal/core/domain"
	"github.com/formatrack/training-system/internal/core/ports"
)

const (
	minPasswordLength = 6
	otpCodeLength     = 6
	digestIterations  = 10000
	digestKeyLength   = 32
)

// AuthService implements registration, login, and the one-time-code
// password recovery flow.
type AuthService struct {
	accounts  ports.AccountRepository
	mailer    ports.Mailer
	jwtSecret string
	tokenTTL  time.Duration
	// salt is a fixed application-wide value: the digest must stay
	// deterministic so stored hashes can be compared directly.
	salt []byte
}

func NewAuthService(accounts ports.AccountRepository, mailer ports.Mailer, jwtSecret, passwordSalt string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		accounts:  accounts,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		salt:      []byte(passwordSalt),
	}
}

// HashPassword derives the hex-encoded PBKDF2-SHA256 digest of a password.
// Deterministic for a given service configuration.
func (s *AuthService) HashPassword(password string) string {
	key := pbkdf2.Key([]byte(password), s.salt, digestIterations, digestKeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// Register creates a new account with the default user role.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(password) < minPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Email:        email,
		PasswordHash: s.HashPassword(password),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login verifies the password digest and mints a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}

	supplied := []byte(s.HashPassword(password))
	if subtle.ConstantTimeCompare(supplied, []byte(account.PasswordHash)) != 1 {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// RequestPasswordReset stores a fresh recovery code on the account and
// delivers it through the mail channel. A delivery failure is surfaced to
// the caller; the stored code stays valid for a retry.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}
	if err := s.accounts.SetOTPCode(ctx, account.Email, code); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	body := fmt.Sprintf("Your password recovery code is %s. It is valid for a single use.", code)
	if err := s.mailer.Send(ctx, account.Email, "Password recovery code", body); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMailDeliveryFailed, err)
	}
	return nil
}

// VerifyAndResetPassword checks the supplied code against the stored one and,
// on match, writes the new password hash and clears the code in one store
// write.
func (s *AuthService) VerifyAndResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = domain.NormalizeEmail(email)
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" || account.OTPCode == "" || code != account.OTPCode {
		return domain.ErrInvalidOTPCode
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrPasswordTooShort
	}

	return s.accounts.ResetPassword(ctx, account.Email, s.HashPassword(newPassword))
}

// IsAdmin resolves an email to its role. A missing account is simply not an
// admin.
func (s *AuthService) IsAdmin(ctx context.Context, email string) (bool, error) {
	account, err := s.accounts.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.Role == domain.RoleAdmin, nil
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	claims := jwt.MapClaims{
		"email": account.Email,
		"role":  account.Role,
		"exp":   time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// generateOTPCode returns a zero-padded numeric code of otpCodeLength digits.
func generateOTPCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpCodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpCodeLength, n), nil
}
