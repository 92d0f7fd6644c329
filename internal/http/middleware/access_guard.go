package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sandeepkv93/estate-admin-backend/internal/domain"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
)

type contextKey string

const (
	ClaimsContextKey      contextKey = "claims"
	AccessTokenContextKey contextKey = "access_token"
)

const unauthorizedMessage = "User unauthorized"

// RoutePolicy is the access requirement declared for a route.
type RoutePolicy struct {
	Public   bool
	RootOnly bool
}

var (
	Public        = RoutePolicy{Public: true}
	Authenticated = RoutePolicy{}
	RootOnly      = RoutePolicy{RootOnly: true}
)

type TokenParser interface {
	ParseAccessToken(raw string) (*security.Claims, error)
}

type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AccessGuard struct {
	tokens  TokenParser
	revoked RevocationChecker
	logger  *slog.Logger
}

func NewAccessGuard(tokens TokenParser, revoked RevocationChecker, logger *slog.Logger) *AccessGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccessGuard{tokens: tokens, revoked: revoked, logger: logger}
}

// Enforce gates a route by policy. Every token problem yields the same 401 so
// clients cannot tell the failure reasons apart.
func (g *AccessGuard) Enforce(policy RoutePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy.Public {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			raw, ok := bearerToken(r)
			if !ok {
				observability.RecordAccessTokenValidation(ctx, "missing")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage, nil)
				return
			}
			claims, err := g.tokens.ParseAccessToken(raw)
			if err != nil {
				observability.RecordAccessTokenValidation(ctx, "invalid")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage, nil)
				return
			}
			revoked, err := g.revoked.IsRevoked(ctx, raw)
			if err != nil {
				g.logger.ErrorContext(ctx, "revocation lookup failed", "error", err)
				observability.RecordAccessTokenValidation(ctx, "revocation_error")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage, nil)
				return
			}
			if revoked {
				observability.RecordAccessTokenValidation(ctx, "revoked")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedMessage, nil)
				return
			}
			if policy.RootOnly && claims.Role != string(domain.RoleRoot) {
				observability.RecordAccessTokenValidation(ctx, "forbidden")
				observability.Audit(r, "access.forbidden", "user_id", claims.Subject, "role", claims.Role)
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "Insufficient role", nil)
				return
			}
			observability.RecordAccessTokenValidation(ctx, "valid")
			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			ctx = context.WithValue(ctx, AccessTokenContextKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(auth[7:])
	return raw, raw != ""
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

func AccessTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(AccessTokenContextKey).(string)
	return t, ok
}
