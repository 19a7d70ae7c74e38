package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/landing-backend/internal/models"
)

var (
	// ErrInvalidCode is returned when a verification code is absent, expired or mismatched
	ErrInvalidCode = errors.New("invalid code")
	// ErrInvalidCredentials is returned for any failed password login
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// PersistenceError wraps a failure of the account directory
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// NewAccount describes an account created through the signup form
type NewAccount struct {
	BaseUsername string
	Email        string
	FullName     string
	PasswordHash string
	Phone        string
}

// AccountRepository persists accounts and their profiles.
// Lookups that find nothing return a nil record and a nil error.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	// GetOrCreateByEmail returns the account for email, creating one with
	// passwordHash as credential when none exists. The new username is the
	// first free candidate derived from email.
	GetOrCreateByEmail(ctx context.Context, email, passwordHash string) (*models.Account, bool, error)
	// CreateWithProfile stores the account under the first free username
	// derived from BaseUsername, together with its profile.
	CreateWithProfile(ctx context.Context, na NewAccount) (*models.Account, *models.Profile, error)
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, bool, error)
	FindProfile(ctx context.Context, userID int64) (*models.Profile, error)
	Count(ctx context.Context) (int64, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

// maxUsernameAttempts bounds the suffix search for a free username
const maxUsernameAttempts = 1000
