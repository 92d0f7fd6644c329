package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/health"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/middleware"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

type unhealthyChecker struct{}

func (unhealthyChecker) Check(ctx context.Context) health.CheckResult {
	return health.CheckResult{Name: "db", Healthy: false, Error: "db down"}
}

type noRevocations struct{}

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func newRouterTestJWT() *security.JWTManager {
	return security.NewJWTManager("iss", "aud", "abcdefghijklmnopqrstuvwxyz123456", "abcdefghijklmnopqrstuvwxyz654321", 15*time.Minute, time.Hour)
}

func newRouterTestDeps() Dependencies {
	return Dependencies{
		Guard:            middleware.NewAccessGuard(newRouterTestJWT(), noRevocations{}, nil),
		CORSOrigins:      []string{"http://localhost"},
		APIRateLimitRPM:  1000,
		AuthRateLimitRPM: 1000,
		MailRateLimit:    1000,
		MailRateWindow:   time.Minute,
		EnableOTelHTTP:   false,
	}
}

func perform(r http.Handler, method, target string, headers map[string]string, cookies []*http.Cookie, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "10.10.10.10:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func bearerToken(t *testing.T, role string) string {
	t.Helper()
	token, err := newRouterTestJWT().SignAccessToken(security.Identity{UserID: "u-1", Name: "tester", Role: role}, time.Hour)
	if err != nil {
		t.Fatalf("sign access token: %v", err)
	}
	return token
}

func TestRouterHealthReadyNilAndUnreadyBranches(t *testing.T) {
	t.Run("nil readiness returns ready", func(t *testing.T) {
		dep := newRouterTestDeps()
		dep.Readiness = nil
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"status":"ready"`) {
			t.Fatalf("expected ready status payload, got %s", rr.Body.String())
		}
	})

	t.Run("unready dependency returns 503", func(t *testing.T) {
		dep := newRouterTestDeps()
		dep.Readiness = health.NewProbeRunner(time.Second, 0, unhealthyChecker{})
		r := NewRouter(dep)

		rr := perform(r, http.MethodGet, "/health/ready", nil, nil, "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"code":"DEPENDENCY_UNREADY"`) {
			t.Fatalf("expected DEPENDENCY_UNREADY error envelope, got %s", rr.Body.String())
		}
	})
}

func TestRouterHealthLiveAlwaysOKWithDefaultLimiter(t *testing.T) {
	r := NewRouter(newRouterTestDeps())

	rr := perform(r, http.MethodGet, "/health/live", nil, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected health live payload, got %s", rr.Body.String())
	}
}

func TestRouterFallbackGlobalRateLimiterWhenCustomNil(t *testing.T) {
	dep := newRouterTestDeps()
	dep.APIRateLimitRPM = 1
	dep.GlobalRateLimiter = nil
	r := NewRouter(dep)

	first := perform(r, http.MethodGet, "/health/live", nil, nil, "")
	if first.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", first.Code)
	}
	second := perform(r, http.MethodGet, "/health/live", nil, nil, "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429 from fallback limiter, got %d", second.Code)
	}
}

func TestRouterMailRouteUsesDedicatedLimiter(t *testing.T) {
	dep := newRouterTestDeps()
	dep.MailRateLimit = 1
	r := NewRouter(dep)

	first := perform(r, http.MethodPost, "/mails", nil, nil, `{}`)
	if first.Code == http.StatusTooManyRequests {
		t.Fatal("first mail request must not be limited")
	}
	second := perform(r, http.MethodPost, "/mails", nil, nil, `{}`)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second mail request expected 429, got %d", second.Code)
	}
	if other := perform(r, http.MethodGet, "/areas", nil, nil, ""); other.Code == http.StatusTooManyRequests {
		t.Fatal("mail limiter must not apply to other routes")
	}
}

func TestRouterCustomLimitersApplied(t *testing.T) {
	dep := newRouterTestDeps()
	hits := map[string]int{}
	limiter := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits[name]++
				w.Header().Set("X-Limiter", name)
				w.WriteHeader(http.StatusNoContent)
			})
		}
	}
	dep.AuthRateLimiter = limiter("auth")
	dep.MailRateLimiter = limiter("mail")
	r := NewRouter(dep)

	if rr := perform(r, http.MethodPost, "/auth/login", nil, nil, `{"name":"a","password":"b"}`); rr.Header().Get("X-Limiter") != "auth" {
		t.Fatalf("auth limiter not applied to login, status=%d", rr.Code)
	}
	if rr := perform(r, http.MethodGet, "/auth/refresh", nil, nil, ""); rr.Header().Get("X-Limiter") != "auth" {
		t.Fatalf("auth limiter not applied to refresh, status=%d", rr.Code)
	}
	if rr := perform(r, http.MethodPost, "/mails", nil, nil, `{}`); rr.Header().Get("X-Limiter") != "mail" {
		t.Fatalf("mail limiter not applied, status=%d", rr.Code)
	}
	if hits["auth"] != 2 || hits["mail"] != 1 {
		t.Fatalf("unexpected limiter hits %+v", hits)
	}
}

func TestRouteTablePolicies(t *testing.T) {
	want := map[string]middleware.RoutePolicy{
		"POST /auth/login":                              middleware.Public,
		"GET /auth/refresh":                             middleware.Public,
		"POST /auth/logout":                             middleware.Authenticated,
		"GET /users/me":                                 middleware.Authenticated,
		"POST /users/create-user":                       middleware.RootOnly,
		"GET /users":                                    middleware.Authenticated,
		"GET /users/{id}":                               middleware.Authenticated,
		"PATCH /users/{id}":                             middleware.Authenticated,
		"DELETE /users/{id}":                            middleware.Authenticated,
		"POST /areas":                                   middleware.Authenticated,
		"GET /areas":                                    middleware.Public,
		"GET /areas/{id}":                               middleware.Public,
		"PATCH /areas/{id}":                             middleware.Authenticated,
		"DELETE /areas/{id}":                            middleware.Authenticated,
		"POST /areas/images/{id}":                       middleware.Authenticated,
		"DELETE /areas/{areaId}/image/{imageId}":        middleware.Authenticated,
		"POST /property/{areaId}":                       middleware.Authenticated,
		"GET /property":                                 middleware.Public,
		"GET /property/{id}":                            middleware.Public,
		"PATCH /property/{id}":                          middleware.Authenticated,
		"DELETE /property/{id}":                         middleware.Authenticated,
		"POST /property/images/{id}":                    middleware.Authenticated,
		"DELETE /property/{propertyId}/image/{imageId}": middleware.Authenticated,
		"POST /mails":                                   middleware.Public,
	}
	got := map[string]middleware.RoutePolicy{}
	for _, rt := range Routes(newRouterTestDeps()) {
		got[rt.Method+" "+rt.Pattern] = rt.Policy
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d routes, got %d", len(want), len(got))
	}
	for key, policy := range want {
		p, ok := got[key]
		if !ok {
			t.Fatalf("missing route %s", key)
		}
		if p != policy {
			t.Fatalf("route %s: expected policy %+v, got %+v", key, policy, p)
		}
	}
}

func TestRouterEnforcesPolicies(t *testing.T) {
	r := NewRouter(newRouterTestDeps())
	ordinary := map[string]string{"Authorization": "Bearer " + bearerToken(t, "ordinary")}
	admin := map[string]string{"Authorization": "Bearer " + bearerToken(t, "admin")}
	root := map[string]string{"Authorization": "Bearer " + bearerToken(t, "root")}

	cases := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    int
	}{
		{"public list reaches handler", http.MethodGet, "/areas", nil, http.StatusServiceUnavailable},
		{"public property detail reaches handler", http.MethodGet, "/property/p-1", nil, http.StatusServiceUnavailable},
		{"bearer without token", http.MethodGet, "/users/me", nil, http.StatusUnauthorized},
		{"bearer area create without token", http.MethodPost, "/areas", nil, http.StatusUnauthorized},
		{"bearer image delete without token", http.MethodDelete, "/areas/a-1/image/m-1", nil, http.StatusUnauthorized},
		{"bearer with token reaches handler", http.MethodGet, "/users/me", ordinary, http.StatusServiceUnavailable},
		{"root only with admin", http.MethodPost, "/users/create-user", admin, http.StatusForbidden},
		{"root only with root", http.MethodPost, "/users/create-user", root, http.StatusServiceUnavailable},
		{"unknown route", http.MethodGet, "/nope", nil, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := perform(r, tc.method, tc.path, tc.headers, nil, "")
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}
