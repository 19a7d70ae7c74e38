package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"ENV", "HOST", "ALLOWED_ORIGINS", "FRONTEND_URL", "FRONTEND_URL_2", "STORAGE", "CACHE",
		"PORT", "TEMPLATE_DIR", "SESSION_COOKIE", "VERIFICATION_CODE_TTL", "VERIFICATION_TOKEN_TTL", "SESSION_TTL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.NotNil(t, cfg)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, CacheRedis, cfg.Cache)
	assert.Equal(t, "templates", cfg.TemplateDir)
	assert.Equal(t, "sessionid", cfg.SessionCookie)
	assert.Equal(t, 600*time.Second, cfg.VerificationCodeTTL)
	assert.Equal(t, 86400*time.Second, cfg.VerificationTokenTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", " Production ")
	t.Setenv("HOST", "https://api.example.com/")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.org, ,https://www.example.com")
	t.Setenv("STORAGE", "MEMORY")
	t.Setenv("CACHE", "bogus")
	t.Setenv("VERIFICATION_CODE_TTL", "90s")
	t.Setenv("SESSION_TTL", "not-a-duration")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, CacheRedis, cfg.Cache)
	assert.Equal(t, 90*time.Second, cfg.VerificationCodeTTL)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{
		"https://app.example.org",
		"https://www.example.com",
		"https://example.com",
	}, cfg.AllowedOrigins)
}

func TestParentDomain(t *testing.T) {
	cases := map[string]string{
		"http://localhost:8080":          "",
		"https://example.com":            "",
		"https://backend.example.com:80": "example.com",
		"api.eu.example.com/path":        "eu.example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, parentDomain(in), in)
	}
}
