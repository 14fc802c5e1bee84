package audit

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4321"
	if got := ClientIP(req); got != "10.0.0.5" {
		t.Fatalf("expected remote host, got %s", got)
	}

	req.Header.Set("X-Real-IP", "172.16.0.9")
	if got := ClientIP(req); got != "172.16.0.9" {
		t.Fatalf("expected x-real-ip, got %s", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %s", got)
	}
}

func TestDigestJSON(t *testing.T) {
	if DigestJSON(nil) != "" {
		t.Fatalf("expected empty digest for empty payload")
	}
	a := DigestJSON([]byte(`{"shop_id":1}`))
	b := DigestJSON([]byte(`{"shop_id":2}`))
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected digests %s %s", a, b)
	}
}
