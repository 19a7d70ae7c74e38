package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/landing-backend/internal/models"
	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

// MemoryAccountRepository keeps accounts in process memory.
// It is used for local runs without PostgreSQL.
type MemoryAccountRepository struct {
	mu            sync.Mutex
	nextID        int64
	nextProfileID int64
	accounts      []*models.Account         // ordered by id
	profiles      map[int64]*models.Profile // by user id
	now           func() time.Time
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{profiles: make(map[int64]*models.Profile), now: time.Now}
}

func copyAccount(a *models.Account) *models.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func copyProfile(p *models.Profile) *models.Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (r *MemoryAccountRepository) findLocked(match func(*models.Account) bool) *models.Account {
	for _, a := range r.accounts {
		if match(a) {
			return a
		}
	}
	return nil
}

func (r *MemoryAccountRepository) byUsernameLocked(username string) *models.Account {
	return r.findLocked(func(a *models.Account) bool { return strings.EqualFold(a.Username, username) })
}

func (r *MemoryAccountRepository) insertLocked(a models.Account) *models.Account {
	r.nextID++
	a.ID = r.nextID
	a.IsActive = true
	a.CreatedAt = r.now()
	stored := &a
	r.accounts = append(r.accounts, stored)
	return stored
}

func (r *MemoryAccountRepository) insertProfileLocked(userID int64, phone string) *models.Profile {
	now := r.now()
	r.nextProfileID++
	p := &models.Profile{ID: r.nextProfileID, UserID: userID, Phone: phone, CreatedAt: now, UpdatedAt: now}
	r.profiles[userID] = p
	return p
}

func (r *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.findLocked(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) })), nil
}

func (r *MemoryAccountRepository) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.byUsernameLocked(username)), nil
}

func (r *MemoryAccountRepository) FindByID(_ context.Context, id int64) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyAccount(r.findLocked(func(a *models.Account) bool { return a.ID == id })), nil
}

func (r *MemoryAccountRepository) GetOrCreateByEmail(_ context.Context, email, passwordHash string) (*models.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a := r.findLocked(func(a *models.Account) bool { return strings.EqualFold(a.Email, email) }); a != nil {
		return copyAccount(a), false, nil
	}
	base := utils.DeriveUsername(email)
	for n := 0; n < maxUsernameAttempts; n++ {
		candidate := utils.UsernameCandidate(base, n)
		if r.byUsernameLocked(candidate) != nil {
			continue
		}
		a := r.insertLocked(models.Account{Username: candidate, Email: email, PasswordHash: passwordHash})
		return copyAccount(a), true, nil
	}
	return nil, false, persistErr("create account", fmt.Errorf("no free username for %q", base))
}

func (r *MemoryAccountRepository) CreateWithProfile(_ context.Context, na NewAccount) (*models.Account, *models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for n := 0; n < maxUsernameAttempts; n++ {
		candidate := utils.UsernameCandidate(na.BaseUsername, n)
		if r.byUsernameLocked(candidate) != nil {
			continue
		}
		a := r.insertLocked(models.Account{
			Username:     candidate,
			Email:        na.Email,
			FullName:     na.FullName,
			PasswordHash: na.PasswordHash,
		})
		p := r.insertProfileLocked(a.ID, na.Phone)
		return copyAccount(a), copyProfile(p), nil
	}
	return nil, nil, persistErr("create account", fmt.Errorf("no free username for %q", na.BaseUsername))
}

func (r *MemoryAccountRepository) GetOrCreateProfile(_ context.Context, userID int64) (*models.Profile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[userID]; ok {
		return copyProfile(p), false, nil
	}
	if r.findLocked(func(a *models.Account) bool { return a.ID == userID }) == nil {
		return nil, false, persistErr("create profile", fmt.Errorf("account %d does not exist", userID))
	}
	return copyProfile(r.insertProfileLocked(userID, "")), true, nil
}

func (r *MemoryAccountRepository) FindProfile(_ context.Context, userID int64) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyProfile(r.profiles[userID]), nil
}

func (r *MemoryAccountRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.accounts)), nil
}

func (r *MemoryAccountRepository) TouchLastLogin(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.findLocked(func(a *models.Account) bool { return a.ID == id })
	if a == nil {
		return persistErr("update last login", fmt.Errorf("account %d does not exist", id))
	}
	t := r.now()
	a.LastLogin = &t
	return nil
}
