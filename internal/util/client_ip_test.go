package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientIPIgnoresForwardedFromUntrustedPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	req.Header.Set("X-Forwarded-For", "10.0.0.9")
	if got := ClientIP(req, nil); got != "203.0.113.7" {
		t.Fatalf("expected direct peer ip, got %q", got)
	}
}

func TestClientIPUsesForwardedFromTrustedProxy(t *testing.T) {
	trusted, err := NewTrustedProxies([]string{"192.0.2.0/24"})
	if err != nil {
		t.Fatalf("new trusted proxies: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	if got := ClientIP(req, trusted); got != "203.0.113.7" {
		t.Fatalf("expected forwarded ip, got %q", got)
	}
}

func TestNewTrustedProxiesRejectsInvalidEntry(t *testing.T) {
	if _, err := NewTrustedProxies([]string{"not-an-ip"}); err == nil {
		t.Fatalf("expected error for invalid entry")
	}
}
