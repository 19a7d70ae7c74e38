package models

import (
	"time"

	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

// Account is the identity record used for login
type Account struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`

	// Internal only - never returned in JSON
	PasswordHash string `json:"-"`
}

// HasUsablePassword reports whether a password login is possible for this account
func (a *Account) HasUsablePassword() bool {
	return utils.IsUsablePassword(a.PasswordHash)
}

// Profile holds per-account attributes that are not part of the identity
type Profile struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
