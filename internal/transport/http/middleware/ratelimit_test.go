package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"appraisal/internal/domain/auth"
)

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	handler := RateLimit(3)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}

func TestRateLimitKeysByActor(t *testing.T) {
	handler := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: userID, RoleName: auth.RoleStaffMember}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("u1"); code != http.StatusOK {
		t.Fatalf("first request for u1 got %d", code)
	}
	if code := send("u1"); code != http.StatusTooManyRequests {
		t.Fatalf("second request for u1 got %d, want 429", code)
	}
	if code := send("u2"); code != http.StatusOK {
		t.Fatalf("u2 should have an independent bucket, got %d", code)
	}
}

type allowAllSessions struct{}

func (allowAllSessions) SessionValid(ctx context.Context, userID, tokenHash string) (bool, error) {
	return true, nil
}

// The server installs Auth ahead of RateLimit so the limiter keys on
// the authenticated user, not the shared client IP.
func TestRateLimitChainedAfterAuthKeysByActor(t *testing.T) {
	const secret = "test-secret"
	chain := Auth(secret, allowAllSessions{})(RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	tokenFor := func(userID string) string {
		token, err := auth.GenerateToken(secret, auth.Claims{
			UserID:    userID,
			RoleName:  auth.RoleStaffMember,
			SessionID: "session-" + userID,
		}, time.Hour)
		if err != nil {
			t.Fatalf("failed to mint token: %v", err)
		}
		return token
	}

	send := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		return rec.Code
	}

	tokenA := tokenFor("u1")
	tokenB := tokenFor("u2")

	if code := send(tokenA); code != http.StatusOK {
		t.Fatalf("first request for u1 got %d", code)
	}
	if code := send(tokenA); code != http.StatusTooManyRequests {
		t.Fatalf("second request for u1 got %d, want 429", code)
	}
	if code := send(tokenB); code != http.StatusOK {
		t.Fatalf("u2 behind the same IP should have its own bucket, got %d", code)
	}
	if code := send(""); code != http.StatusOK {
		t.Fatalf("anonymous traffic should fall back to the IP bucket, got %d", code)
	}
	if code := send(""); code != http.StatusTooManyRequests {
		t.Fatalf("second anonymous request got %d, want 429", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d got %d with limiting disabled", i, rec.Code)
		}
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := clientIP(req); ip != "203.0.113.7" {
		t.Fatalf("clientIP = %q, want first forwarded hop", ip)
	}
}
