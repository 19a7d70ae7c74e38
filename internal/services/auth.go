package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

// SignupForm carries the signup fields exactly as submitted; none are required
type SignupForm struct {
	FullName        string
	Email           string
	Phone           string
	Password        string
	PasswordConfirm string
}

// AuthService creates accounts from the signup form and checks password logins
type AuthService struct {
	accounts AccountRepository
}

func NewAuthService(accounts AccountRepository) *AuthService {
	return &AuthService{accounts: accounts}
}

// Signup stores a new account and its profile. Any input is accepted.
// Without a password the account gets an unusable credential.
func (s *AuthService) Signup(ctx context.Context, form SignupForm) (*models.Account, *models.Profile, error) {
	passwordHash := utils.UnusablePassword()
	if form.Password != "" {
		hash, err := utils.HashPassword(form.Password)
		if err != nil {
			return nil, nil, fmt.Errorf("hash password: %w", err)
		}
		passwordHash = hash
	}

	email := strings.TrimSpace(form.Email)
	return s.accounts.CreateWithProfile(ctx, NewAccount{
		BaseUsername: utils.DeriveUsername(email),
		Email:        email,
		FullName:     strings.TrimSpace(form.FullName),
		PasswordHash: passwordHash,
		Phone:        form.Phone,
	})
}

// Authenticate resolves identifier as an email first and then as a login
// identifier, and checks password. Every failure is ErrInvalidCredentials
// except store errors.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*models.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, utils.NormalizeEmail(identifier))
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = s.accounts.FindByUsername(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}
	return s.AuthenticateAccount(ctx, account, password)
}

// AuthenticateAccount checks password for an account already in hand
func (s *AuthService) AuthenticateAccount(ctx context.Context, account *models.Account, password string) (*models.Account, error) {
	if account == nil || password == "" || !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	ok, err := utils.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		log.Printf("⚠️  unreadable password hash for account %d: %v", account.ID, err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
		log.Printf("⚠️  could not record last login for account %d: %v", account.ID, err)
	}
	return account, nil
}
