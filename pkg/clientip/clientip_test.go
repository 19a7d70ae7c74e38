package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	cases := map[string]string{
		"203.0.113.9:5123":  "203.0.113.9",
		"[2001:db8::1]:443": "2001:db8::1",
		" 198.51.100.1 ":    "198.51.100.1",
		"not-an-address":    "not-an-address",
	}
	for remote, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remote
		assert.Equal(t, want, RealClientIP(r), remote)
	}
}

func TestRealClientIP_IgnoresForwardedHeaders(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.9:5123"
	r.Header.Set("X-Forwarded-For", "10.0.0.1")
	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "203.0.113.9", RealClientIP(r))
}

func TestLimiterKey(t *testing.T) {
	cases := map[string]string{
		"203.0.113.9:5123":           "203.0.113.9",
		"[::ffff:203.0.113.9]:80":    "203.0.113.9",
		"[2001:db8:1:2:3:4:5:6]:443": "2001:db8:1:2::/64",
		"[2001:db8:1:2:ffff::9]:443": "2001:db8:1:2::/64",
		"garbage":                    "garbage",
	}
	for remote, want := range cases {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = remote
		assert.Equal(t, want, LimiterKey(r), remote)
	}
}
