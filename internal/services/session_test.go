package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_CreateResolveDestroy(t *testing.T) {
	clock := newFakeClock()
	m := NewSessionManager(NewMemoryStore(clock.Now), "", time.Hour, false)
	ctx := context.Background()

	token, err := m.Create(ctx, 42)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, token)

	id, ok, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	require.NoError(t, m.Destroy(ctx, token))
	_, ok, err = m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	token, err = m.Create(ctx, 7)
	require.NoError(t, err)
	clock.Advance(time.Hour)
	_, ok, _ = m.Resolve(ctx, token)
	assert.False(t, ok, "expired session")

	_, ok, err = m.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionManager_LoginLogoutCookies(t *testing.T) {
	m := NewSessionManager(NewMemoryStore(nil), "sid", time.Hour, true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/", nil)
	token, err := m.Login(rec, req, 9)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	id, ok, err := m.FromRequest(req)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)

	rec = httptest.NewRecorder()
	require.NoError(t, m.Logout(rec, req))
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)

	_, ok, err = m.FromRequest(req)
	require.NoError(t, err)
	assert.False(t, ok)
}
