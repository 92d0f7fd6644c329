package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/estate-admin-backend/internal/health"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/handler"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/middleware"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/response"
)

const jsonBodyLimit = 1 << 20

type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	AreaHandler     *handler.AreaHandler
	PropertyHandler *handler.PropertyHandler
	MailHandler     *handler.MailHandler
	Guard           *middleware.AccessGuard

	CORSOrigins       []string
	APIRateLimitRPM   int
	AuthRateLimitRPM  int
	MailRateLimit     int
	MailRateWindow    time.Duration
	UploadBodyLimit   int64
	GlobalRateLimiter GlobalRateLimiterFunc
	AuthRateLimiter   AuthRateLimiterFunc
	MailRateLimiter   MailRateLimiterFunc
	Readiness         *health.ProbeRunner
	EnableOTelHTTP    bool
}

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler
type MailRateLimiterFunc func(http.Handler) http.Handler

// Route is one entry of the route table. Every route declares its access
// policy explicitly.
type Route struct {
	Method  string
	Pattern string
	Policy  middleware.RoutePolicy
	Handler http.HandlerFunc
	Chain   []func(http.Handler) http.Handler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	if dep.GlobalRateLimiter != nil {
		r.Use(dep.GlobalRateLimiter)
	} else {
		r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute, "api").Middleware())
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	for _, rt := range Routes(dep) {
		chain := append([]func(http.Handler) http.Handler{}, rt.Chain...)
		if dep.Guard != nil {
			chain = append(chain, dep.Guard.Enforce(rt.Policy))
		}
		r.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

// Routes returns the route table. Handlers may be nil in tests that only
// inspect policies.
func Routes(dep Dependencies) []Route {
	authLimiter := dep.AuthRateLimiter
	if authLimiter == nil {
		authLimiter = middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute, "auth").Middleware()
	}
	mailLimiter := dep.MailRateLimiter
	if mailLimiter == nil {
		window := dep.MailRateWindow
		if window <= 0 {
			window = time.Minute
		}
		mailLimiter = middleware.NewRateLimiter(max(dep.MailRateLimit, 1), window, "mail").Middleware()
	}
	uploadLimit := dep.UploadBodyLimit
	if uploadLimit <= 0 {
		uploadLimit = 5*(15<<20) + jsonBodyLimit
	}
	jsonBody := middleware.BodyLimit(jsonBodyLimit)
	uploadBody := middleware.BodyLimit(uploadLimit)

	auth, users, areas, props, mails := dep.AuthHandler, dep.UserHandler, dep.AreaHandler, dep.PropertyHandler, dep.MailHandler
	var (
		public = middleware.Public
		bearer = middleware.Authenticated
		root   = middleware.RootOnly
	)
	with := func(mw ...func(http.Handler) http.Handler) []func(http.Handler) http.Handler { return mw }

	return []Route{
		{http.MethodPost, "/auth/login", public, method(auth, (*handler.AuthHandler).Login), with(authLimiter, jsonBody)},
		{http.MethodGet, "/auth/refresh", public, method(auth, (*handler.AuthHandler).Refresh), with(authLimiter)},
		{http.MethodPost, "/auth/logout", bearer, method(auth, (*handler.AuthHandler).Logout), nil},

		{http.MethodGet, "/users/me", bearer, method(users, (*handler.UserHandler).Me), nil},
		{http.MethodPost, "/users/create-user", root, method(users, (*handler.UserHandler).Create), with(jsonBody)},
		{http.MethodGet, "/users", bearer, method(users, (*handler.UserHandler).List), nil},
		{http.MethodGet, "/users/{id}", bearer, method(users, (*handler.UserHandler).Get), nil},
		{http.MethodPatch, "/users/{id}", bearer, method(users, (*handler.UserHandler).Update), with(jsonBody)},
		{http.MethodDelete, "/users/{id}", bearer, method(users, (*handler.UserHandler).Delete), nil},

		{http.MethodPost, "/areas", bearer, method(areas, (*handler.AreaHandler).Create), with(jsonBody)},
		{http.MethodGet, "/areas", public, method(areas, (*handler.AreaHandler).List), nil},
		{http.MethodGet, "/areas/{id}", public, method(areas, (*handler.AreaHandler).Get), nil},
		{http.MethodPatch, "/areas/{id}", bearer, method(areas, (*handler.AreaHandler).Update), with(jsonBody)},
		{http.MethodDelete, "/areas/{id}", bearer, method(areas, (*handler.AreaHandler).Delete), nil},
		{http.MethodPost, "/areas/images/{id}", bearer, method(areas, (*handler.AreaHandler).UploadImages), with(uploadBody)},
		{http.MethodDelete, "/areas/{areaId}/image/{imageId}", bearer, method(areas, (*handler.AreaHandler).DeleteImage), nil},

		{http.MethodPost, "/property/{areaId}", bearer, method(props, (*handler.PropertyHandler).Create), with(jsonBody)},
		{http.MethodGet, "/property", public, method(props, (*handler.PropertyHandler).List), nil},
		{http.MethodGet, "/property/{id}", public, method(props, (*handler.PropertyHandler).Get), nil},
		{http.MethodPatch, "/property/{id}", bearer, method(props, (*handler.PropertyHandler).Update), with(jsonBody)},
		{http.MethodDelete, "/property/{id}", bearer, method(props, (*handler.PropertyHandler).Delete), nil},
		{http.MethodPost, "/property/images/{id}", bearer, method(props, (*handler.PropertyHandler).UploadImages), with(uploadBody)},
		{http.MethodDelete, "/property/{propertyId}/image/{imageId}", bearer, method(props, (*handler.PropertyHandler).DeleteImage), nil},

		{http.MethodPost, "/mails", public, method(mails, (*handler.MailHandler).Send), with(mailLimiter, jsonBody)},
	}
}

// method binds a handler method, answering 503 when the handler is not wired.
func method[H any](h *H, fn func(*H, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h == nil {
			response.Error(w, r, http.StatusServiceUnavailable, "UNAVAILABLE", "Handler not configured", nil)
			return
		}
		fn(h, w, r)
	}
}
