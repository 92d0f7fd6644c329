package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"gorm.io/gorm"

	"github.com/sandeepkv93/estate-admin-backend/internal/app"
	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/database"
	"github.com/sandeepkv93/estate-admin-backend/internal/health"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/handler"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/middleware"
	"github.com/sandeepkv93/estate-admin-backend/internal/http/router"
	"github.com/sandeepkv93/estate-admin-backend/internal/mail"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/security"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
	"github.com/sandeepkv93/estate-admin-backend/internal/storage"
)

const readinessCacheTTL = 2 * time.Second

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Area     *handler.AreaHandler
	Property *handler.PropertyHandler
	Mail     *handler.MailHandler
}

// StopFunc runs after background tasks have stopped.
type StopFunc func()

type RateLimiters struct {
	Global router.GlobalRateLimiterFunc
	Auth   router.AuthRateLimiterFunc
	Mail   router.MailRateLimiterFunc
}

func provideDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*gorm.DB, func(), error) {
	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			logger.Warn("close database", "error", err)
		}
	}
	return db, cleanup, nil
}

// provideRedis returns a nil client when REDIS_ADDR is unset.
func provideRedis(ctx context.Context, cfg *config.Config, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	client, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		logger.Info("redis not configured, using in-process revocation and rate limiting")
		return nil, func() {}, nil
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	return client, cleanup, nil
}

func provideObjectStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ObjectStore, error) {
	if cfg.UsesInMemoryStorage() {
		logger.Warn("object storage not configured, images are kept in memory")
		return storage.NewMemoryStore(), nil
	}
	store, err := storage.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	return store, nil
}

func provideMailSender(cfg *config.Config, logger *slog.Logger) mail.Sender {
	if cfg.SMTPHost == "" {
		return mail.NewLogSender(logger)
	}
	return mail.NewSMTPSender(cfg)
}

func providePasswordHasher(cfg *config.Config) *security.PasswordHasher {
	params := security.DefaultArgon2Params()
	params.MemoryKiB = cfg.PasswordMemoryKiB
	params.Iterations = cfg.PasswordIterations
	params.Parallelism = cfg.PasswordParallelism
	return security.NewPasswordHasher(params)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

func provideRevocationStore(cfg *config.Config, client redis.UniversalClient) service.RevocationStore {
	if client == nil {
		return service.NewInMemoryRevocationStore()
	}
	return service.NewRedisRevocationStore(client, cfg.RedisKeyPrefix+":revoked")
}

func provideSessionStore(repo repository.SessionRepository, cfg *config.Config) *service.SessionStore {
	return service.NewSessionStore(repo, cfg.RefreshTokenPepper)
}

func provideMailService(sender mail.Sender, cfg *config.Config, logger *slog.Logger) *service.MailService {
	return service.NewMailService(sender, splitRecipients(cfg.MailTo), logger)
}

func provideSessionJanitor(sessions *service.SessionStore, cfg *config.Config, logger *slog.Logger) *service.SessionJanitor {
	return service.NewSessionJanitor(sessions, cfg.SessionCleanupEvery, logger)
}

func provideStager(cfg *config.Config) *storage.Stager {
	return storage.NewStager(cfg.UploadTempDir)
}

func provideImageUploader(stager *storage.Stager, cfg *config.Config) *handler.ImageUploader {
	return handler.NewImageUploader(stager, cfg.UploadMaxFiles, cfg.UploadMaxFileSize)
}

func provideCookieOptions(cfg *config.Config) security.CookieOptions {
	return security.CookieOptions{
		Secure:   cfg.CookieSecure,
		Domain:   cfg.CookieDomain,
		SameSite: cfg.CookieSameSite,
		MaxAge:   cfg.RefreshTokenTTL,
	}
}

func provideHandlers(
	auth *service.AuthService,
	users *service.UserService,
	areas *service.AreaService,
	properties *service.PropertyService,
	media *service.MediaWorkflow,
	mailer *service.MailService,
	uploader *handler.ImageUploader,
	cookie security.CookieOptions,
	logger *slog.Logger,
) Handlers {
	return Handlers{
		Auth:     handler.NewAuthHandler(auth, cookie, logger),
		User:     handler.NewUserHandler(users, logger),
		Area:     handler.NewAreaHandler(areas, media, uploader, logger),
		Property: handler.NewPropertyHandler(properties, media, uploader, logger),
		Mail:     handler.NewMailHandler(mailer, logger),
	}
}

func provideAccessGuard(tokens *security.JWTManager, revoked service.RevocationStore, logger *slog.Logger) *middleware.AccessGuard {
	return middleware.NewAccessGuard(tokens, revoked, logger)
}

// provideRateLimiters shares counters across replicas through Redis when it
// is configured and falls back to per-process windows otherwise.
func provideRateLimiters(cfg *config.Config, client redis.UniversalClient, logger *slog.Logger) RateLimiters {
	build := func(limit int, window time.Duration, scope string, mode middleware.FailureMode) func(http.Handler) http.Handler {
		if client == nil {
			return middleware.NewRateLimiter(limit, window, scope).WithLogger(logger).Middleware()
		}
		backend := middleware.NewRedisFixedWindowLimiter(client, cfg.RedisKeyPrefix+":rate_limit")
		return middleware.NewDistributedRateLimiter(backend, middleware.NewPolicy(limit, window), mode, scope, nil).WithLogger(logger).Middleware()
	}
	mailWindow := cfg.MailRateWindow
	if mailWindow <= 0 {
		mailWindow = time.Minute
	}
	return RateLimiters{
		Global: build(cfg.APIRateLimitRPM, time.Minute, "api", middleware.FailOpen),
		Auth:   build(cfg.AuthRateLimitRPM, time.Minute, "auth", middleware.FailClosed),
		Mail:   build(max(cfg.MailRateLimit, 1), mailWindow, "mail", middleware.FailClosed),
	}
}

func provideReadiness(cfg *config.Config, db *gorm.DB, client redis.UniversalClient, store storage.ObjectStore) *health.ProbeRunner {
	checkers := []health.Checker{health.DBChecker(db), health.StorageChecker(store)}
	if client != nil {
		checkers = append(checkers, health.RedisChecker(client))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, readinessCacheTTL, checkers...)
}

func provideRouterDependencies(
	cfg *config.Config,
	handlers Handlers,
	guard *middleware.AccessGuard,
	limiters RateLimiters,
	uploader *handler.ImageUploader,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       handlers.Auth,
		UserHandler:       handlers.User,
		AreaHandler:       handlers.Area,
		PropertyHandler:   handlers.Property,
		MailHandler:       handlers.Mail,
		Guard:             guard,
		CORSOrigins:       cfg.CORSOrigins,
		APIRateLimitRPM:   cfg.APIRateLimitRPM,
		AuthRateLimitRPM:  cfg.AuthRateLimitRPM,
		MailRateLimit:     cfg.MailRateLimit,
		MailRateWindow:    cfg.MailRateWindow,
		UploadBodyLimit:   uploader.MaxRequestBytes(),
		GlobalRateLimiter: limiters.Global,
		AuthRateLimiter:   limiters.Auth,
		MailRateLimiter:   limiters.Mail,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELTracingEnabled || cfg.OTELMetricsEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, dep router.Dependencies) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.NewRouter(dep),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func provideObservability(ctx context.Context, cfg *config.Config, logger *slog.Logger, lp *sdklog.LoggerProvider) (*observability.Runtime, error) {
	return observability.InitRuntime(ctx, cfg, logger, lp)
}

func provideBootstrap(cfg *config.Config, users *service.UserService, logger *slog.Logger) app.BootstrapFunc {
	if !cfg.BootstrapAdminEnabled {
		return nil
	}
	return func(ctx context.Context) error {
		return service.EnsureAdmin(ctx, users, cfg.BootstrapAdminName, cfg.BootstrapAdminPassword, logger)
	}
}

func provideBackgroundTasks(janitor *service.SessionJanitor) []app.BackgroundTask {
	return []app.BackgroundTask{janitor}
}

// provideStop clears uploads that were staged but never persisted.
func provideStop(stager *storage.Stager, logger *slog.Logger) StopFunc {
	return func() {
		n, err := stager.Purge()
		if err != nil {
			logger.Warn("purge staged uploads", "error", err)
			return
		}
		if n > 0 {
			logger.Info("purged staged uploads", "count", n)
		}
	}
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	background []app.BackgroundTask,
	bootstrap app.BootstrapFunc,
	readiness *health.ProbeRunner,
	stop StopFunc,
) *app.App {
	return app.New(cfg, logger, server, runtime, background, bootstrap, readiness, stop)
}

func splitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
