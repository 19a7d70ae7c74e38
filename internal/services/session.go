package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultSessionDuration is 14 days
	DefaultSessionDuration = 14 * 24 * time.Hour
	// SessionKeyPrefix is the store key prefix for sessions
	SessionKeyPrefix = "session:"
)

// SessionManager keeps cookie sessions for accounts that logged in with a password
type SessionManager struct {
	store      KeyValueStore
	ttl        time.Duration
	cookieName string
	secure     bool
}

func NewSessionManager(store KeyValueStore, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionDuration
	}
	if cookieName == "" {
		cookieName = "sessionid"
	}
	return &SessionManager{store: store, ttl: ttl, cookieName: cookieName, secure: secure}
}

// CookieName is the name of the session cookie
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// Create stores a new session for accountID and returns its token
func (m *SessionManager) Create(ctx context.Context, accountID int64) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)

	if err := m.store.Set(ctx, SessionKeyPrefix+token, strconv.FormatInt(accountID, 10), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Resolve returns the account ID for a session token
func (m *SessionManager) Resolve(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	e, found, err := m.store.Get(ctx, SessionKeyPrefix+token)
	if err != nil || !found {
		return 0, false, err
	}
	id, err := strconv.ParseInt(e.Value, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Destroy removes a session
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, SessionKeyPrefix+token)
}

// Login creates a session and sets it as a cookie on w
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, accountID int64) (string, error) {
	// Drop any session the browser already carries
	if c, err := r.Cookie(m.cookieName); err == nil {
		_ = m.Destroy(r.Context(), c.Value)
	}

	token, err := m.Create(r.Context(), accountID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// Logout destroys the request's session and expires the cookie
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	var err error
	if c, cerr := r.Cookie(m.cookieName); cerr == nil {
		err = m.Destroy(r.Context(), c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return err
}

// FromRequest resolves the request's session cookie
func (m *SessionManager) FromRequest(r *http.Request) (int64, bool, error) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return 0, false, nil
	}
	return m.Resolve(r.Context(), c.Value)
}
