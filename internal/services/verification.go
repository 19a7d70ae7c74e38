package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/AnshRaj112/landing-backend/pkg/utils"
)

const (
	// VerificationKeyPrefix holds the pending code for an email
	VerificationKeyPrefix = "verif:"
	// TokenKeyPrefix holds the token issued after a successful verification
	TokenKeyPrefix = "token:"

	DefaultCodeTTL  = 600 * time.Second
	DefaultTokenTTL = 86400 * time.Second

	codeSpace = 1000000
)

// CodeStatus is the lifecycle position of an email's verification code
type CodeStatus int

const (
	CodeUnissued CodeStatus = iota
	CodeIssued
)

func (s CodeStatus) String() string {
	if s == CodeIssued {
		return "issued"
	}
	return "unissued"
}

// CodeState is the observable verification state of one email.
// Consumed and expired codes both report CodeUnissued.
type CodeState struct {
	Status    CodeStatus
	ExpiresAt time.Time
}

// IssuedCode is the result of RequestCode
type IssuedCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

// Verified is the result of a successful VerifyCode
type Verified struct {
	Token   string
	Created bool
	Email   string
	UserID  int64
}

// VerificationService issues and checks one-time email codes
type VerificationService struct {
	store    KeyValueStore
	accounts AccountRepository
	codeTTL  time.Duration
	tokenTTL time.Duration
	now      func() time.Time
	random   io.Reader
}

type VerificationOption func(*VerificationService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) VerificationOption {
	return func(s *VerificationService) { s.now = now }
}

// WithRandom replaces crypto/rand as the source for codes and tokens
func WithRandom(r io.Reader) VerificationOption {
	return func(s *VerificationService) { s.random = r }
}

func NewVerificationService(store KeyValueStore, accounts AccountRepository, codeTTL, tokenTTL time.Duration, opts ...VerificationOption) *VerificationService {
	if codeTTL <= 0 {
		codeTTL = DefaultCodeTTL
	}
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	s := &VerificationService{
		store:    store,
		accounts: accounts,
		codeTTL:  codeTTL,
		tokenTTL: tokenTTL,
		now:      time.Now,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestCode issues a fresh 6-digit code for email, replacing any earlier one.
// The code is returned to the caller because there is no delivery channel.
func (s *VerificationService) RequestCode(ctx context.Context, email string) (*IssuedCode, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return nil, &utils.ValidationError{Field: "email", Message: "email required"}
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	if err := s.store.Set(ctx, VerificationKeyPrefix+email, code, s.codeTTL); err != nil {
		return nil, fmt.Errorf("store code: %w", err)
	}

	return &IssuedCode{Email: email, Code: code, ExpiresAt: s.now().Add(s.codeTTL)}, nil
}

// VerifyCode consumes a matching code, finds or creates the account for
// email, and issues a token. A code verifies at most once.
func (s *VerificationService) VerifyCode(ctx context.Context, email, code string) (*Verified, error) {
	email = utils.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, &utils.ValidationError{Field: "email", Message: "email and code required"}
	}

	key := VerificationKeyPrefix + email
	entry, found, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if !found || entry.Value != code {
		return nil, ErrInvalidCode
	}

	consumed, err := s.store.CompareAndDelete(ctx, key, code)
	if err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}
	if !consumed {
		// Replaced, expired or used by a concurrent request since the read
		return nil, ErrInvalidCode
	}

	result, err := s.complete(ctx, email)
	if err != nil {
		s.restore(ctx, key, entry)
		return nil, err
	}
	return result, nil
}

func (s *VerificationService) complete(ctx context.Context, email string) (*Verified, error) {
	account, created, err := s.accounts.GetOrCreateByEmail(ctx, email, utils.UnusablePassword())
	if err != nil {
		return nil, err
	}

	if _, _, err := s.accounts.GetOrCreateProfile(ctx, account.ID); err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	if err := s.store.Set(ctx, TokenKeyPrefix+email, token, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	return &Verified{Token: token, Created: created, Email: email, UserID: account.ID}, nil
}

// restore puts a consumed code back with its remaining lifetime after a failed
// verification. A code issued in the meantime is left in place.
func (s *VerificationService) restore(ctx context.Context, key string, entry Entry) {
	ttl := s.codeTTL
	if !entry.ExpiresAt.IsZero() {
		ttl = entry.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return
	}
	email := strings.TrimPrefix(key, VerificationKeyPrefix)
	restored, err := s.store.SetNX(ctx, key, entry.Value, ttl)
	if err != nil {
		log.Printf("⚠️  could not restore verification code for %s: %v", email, err)
		return
	}
	if !restored {
		log.Printf("⚠️  verification code for %s not restored, a newer code exists", email)
	}
}

// State reports whether a live code exists for email
func (s *VerificationService) State(ctx context.Context, email string) (CodeState, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return CodeState{}, &utils.ValidationError{Field: "email", Message: "email required"}
	}
	entry, found, err := s.store.Get(ctx, VerificationKeyPrefix+email)
	if err != nil {
		return CodeState{}, err
	}
	if !found {
		return CodeState{Status: CodeUnissued}, nil
	}
	return CodeState{Status: CodeIssued, ExpiresAt: entry.ExpiresAt}, nil
}

func (s *VerificationService) newCode() (string, error) {
	n, err := rand.Int(s.random, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// newToken returns 128 random bits as 32 hex characters
func (s *VerificationService) newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
