package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

type stubRevocations struct {
	revoked map[string]bool
	err     error
}

func (s stubRevocations) IsRevoked(_ context.Context, token string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[token], nil
}

func newGuardTestTokens(t *testing.T) *security.JWTManager {
	t.Helper()
	return security.NewJWTManager("iss", "aud", "access-secret-access-secret-123456", "refresh-secret-refresh-secret-1234", 15*time.Minute, time.Hour)
}

func signAccess(t *testing.T, m *security.JWTManager, role string) string {
	t.Helper()
	tok, err := m.SignAccessToken(security.Identity{UserID: "u-1", Name: "alice", Role: role}, time.Minute)
	if err != nil {
		t.Fatalf("sign access token: %v", err)
	}
	return tok
}

func guardedHandler(guard *AccessGuard, policy RoutePolicy) http.Handler {
	return guard.Enforce(policy)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		if raw, _ := AccessTokenFromContext(r.Context()); raw == "" {
			w.WriteHeader(http.StatusExpectationFailed)
			return
		}
		w.Header().Set("X-Subject", claims.Subject)
		w.WriteHeader(http.StatusNoContent)
	}))
}

func decodeErrorMessage(t *testing.T, rr *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, rr.Body.String())
	}
	return env.Error.Code, env.Error.Message
}

func TestAccessGuardPublicRouteSkipsAuthentication(t *testing.T) {
	guard := NewAccessGuard(newGuardTestTokens(t), stubRevocations{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/areas", nil)
	rr := httptest.NewRecorder()
	guardedHandler(guard, Public).ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected public route to reach handler without claims, got %d", rr.Code)
	}
}

func TestAccessGuardRejectsWithUniformUnauthorized(t *testing.T) {
	tokens := newGuardTestTokens(t)
	valid := signAccess(t, tokens, "admin")
	refresh, err := tokens.SignRefreshToken(security.Identity{UserID: "u-1", Role: "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("sign refresh token: %v", err)
	}

	cases := []struct {
		name    string
		header  string
		revoked stubRevocations
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer   "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "refresh token as access", header: "Bearer " + refresh},
		{name: "revoked", header: "Bearer " + valid, revoked: stubRevocations{revoked: map[string]bool{valid: true}}},
		{name: "revocation backend error", header: "Bearer " + valid, revoked: stubRevocations{err: errors.New("redis down")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			guard := NewAccessGuard(tokens, tc.revoked, nil)
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			guardedHandler(guard, Authenticated).ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			code, msg := decodeErrorMessage(t, rr)
			if code != "UNAUTHORIZED" || msg != "User unauthorized" {
				t.Fatalf("unexpected error payload code=%q message=%q", code, msg)
			}
		})
	}
}

func TestAccessGuardRootOnly(t *testing.T) {
	tokens := newGuardTestTokens(t)
	guard := NewAccessGuard(tokens, stubRevocations{}, nil)

	cases := []struct {
		role string
		want int
	}{
		{role: "ordinary", want: http.StatusForbidden},
		{role: "admin", want: http.StatusForbidden},
		{role: "root", want: http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/users/create-user", nil)
		req.Header.Set("Authorization", "Bearer "+signAccess(t, tokens, tc.role))
		rr := httptest.NewRecorder()
		guardedHandler(guard, RootOnly).ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("role %s: expected %d, got %d", tc.role, tc.want, rr.Code)
		}
	}
}

func TestAccessGuardAttachesClaims(t *testing.T) {
	tokens := newGuardTestTokens(t)
	guard := NewAccessGuard(tokens, stubRevocations{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "bearer "+signAccess(t, tokens, "ordinary"))
	rr := httptest.NewRecorder()
	guardedHandler(guard, Authenticated).ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-Subject"); got != "u-1" {
		t.Fatalf("expected subject u-1 in context, got %q", got)
	}
}
