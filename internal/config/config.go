package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	PostgresURI    string
	RedisURI       string
	Storage        string // STORAGE: postgres or memory
	Cache          string // CACHE: redis or memory
	Port           string
	Host           string   // Raw HOST env (e.g. https://backend.example.com)
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)
	Environment    string   // ENV: production, development, etc.
	TemplateDir    string
	SessionCookie  string

	VerificationCodeTTL  time.Duration
	VerificationTokenTTL time.Duration
	SessionTTL           time.Duration
}

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
	CacheRedis      = "redis"
	CacheMemory     = "memory"
)

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	// A backend host like api.example.com also allows https://example.com and https://www.example.com
	if domain := parentDomain(host); domain != "" {
		for _, origin := range []string{"https://" + domain, "https://www." + domain} {
			if !containsOrigin(allowedOrigins, origin) {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	return &Config{
		PostgresURI:          getEnv("POSTGRES_URI", "postgres://localhost:5432/landing?sslmode=disable"),
		RedisURI:             getEnv("REDIS_URI", "redis://localhost:6379/0"),
		Storage:              oneOf(getEnv("STORAGE", StoragePostgres), StoragePostgres, StorageMemory),
		Cache:                oneOf(getEnv("CACHE", CacheRedis), CacheRedis, CacheMemory),
		Port:                 getEnv("PORT", "8080"),
		Host:                 host,
		AllowedOrigins:       allowedOrigins,
		Environment:          env,
		TemplateDir:          getEnv("TEMPLATE_DIR", "templates"),
		SessionCookie:        getEnv("SESSION_COOKIE", "sessionid"),
		VerificationCodeTTL:  getDuration("VERIFICATION_CODE_TTL", 600*time.Second),
		VerificationTokenTTL: getDuration("VERIFICATION_TOKEN_TTL", 86400*time.Second),
		SessionTTL:           getDuration("SESSION_TTL", 14*24*time.Hour),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// parentDomain strips scheme, path, port and the first label from host.
// Returns "" for localhost or single-label hosts.
func parentDomain(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" {
		return ""
	}
	parts := strings.Split(host, ".")
	if len(parts) < 3 {
		return ""
	}
	return strings.Join(parts[1:], ".")
}

func oneOf(value string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	return allowed[0]
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
