package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

// FailureMode decides what happens to a request when the limiter backend
// returns an error.
type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

type RateLimiter struct {
	limiter Limiter
	policy  RateLimitPolicy
	mode    FailureMode
	scope   string
	keyFunc func(r *http.Request) string
	logger  *slog.Logger
}

// NewRateLimiter limits per client IP with an in-process limiter.
func NewRateLimiter(limit int, window time.Duration, scope string) *RateLimiter {
	return NewDistributedRateLimiter(NewMemoryLimiter(), NewPolicy(limit, window), FailClosed, scope, nil)
}

// NewDistributedRateLimiter wires an arbitrary backend. A nil keyFunc keys
// by client IP.
func NewDistributedRateLimiter(limiter Limiter, policy RateLimitPolicy, mode FailureMode, scope string, keyFunc func(r *http.Request) string) *RateLimiter {
	if limiter == nil {
		limiter = NewMemoryLimiter()
	}
	if scope == "" {
		scope = "api"
	}
	if keyFunc == nil {
		keyFunc = clientIPKey
	}
	return &RateLimiter{
		limiter: limiter,
		policy:  policy.normalized(),
		mode:    mode,
		scope:   scope,
		keyFunc: keyFunc,
		logger:  slog.Default(),
	}
}

func (rl *RateLimiter) WithLogger(logger *slog.Logger) *RateLimiter {
	if logger != nil {
		rl.logger = logger
	}
	return rl
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := rl.keyFunc(r)
			if key == "" {
				key = clientIPKey(r)
			}

			d, err := rl.limiter.Allow(ctx, rl.scope+":"+key, rl.policy)
			if err != nil {
				observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error", string(rl.mode))
				if rl.mode == FailOpen {
					rl.logger.WarnContext(ctx, "rate limiter unavailable, allowing request", "scope", rl.scope, "error", err)
					next.ServeHTTP(w, r)
					return
				}
				d = Decision{RetryAfter: rl.policy.Window, ResetAt: time.Now().Add(rl.policy.Window)}
			}

			setLimitHeaders(w.Header(), rl.policy.Limit, d)
			if !d.Allowed {
				if err == nil {
					observability.RecordRateLimitDecision(ctx, rl.scope, "deny", string(rl.mode))
				}
				observability.RecordRateLimitRetryAfter(ctx, rl.scope, d.RetryAfter)
				w.Header().Set("Retry-After", strconv.Itoa(retrySeconds(d.RetryAfter)))
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			observability.RecordRateLimitDecision(ctx, rl.scope, "allow", string(rl.mode))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIPKey(r *http.Request) string {
	if ip := parseRequestIP(r); ip != nil {
		return ip.String()
	}
	return r.RemoteAddr
}

func retrySeconds(d time.Duration) int {
	return max(int(d.Round(time.Second)/time.Second), 1)
}

func setLimitHeaders(h http.Header, limit int, d Decision) {
	reset := d.ResetAt
	if reset.IsZero() {
		reset = time.Now().Add(time.Second)
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
}
