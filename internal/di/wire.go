//go:build wireinject
// +build wireinject

package di

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/sandeepkv93/estate-admin-backend/internal/app"
	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/health"
	"github.com/sandeepkv93/estate-admin-backend/internal/repository"
	"github.com/sandeepkv93/estate-admin-backend/internal/service"
)

var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideObjectStore,
	provideMailSender,
	provideStager,
)

var repositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewSessionRepository,
	repository.NewAreaRepository,
	repository.NewPropertyRepository,
	repository.NewTransactor,
)

var serviceSet = wire.NewSet(
	providePasswordHasher,
	provideJWTManager,
	provideRevocationStore,
	provideSessionStore,
	service.NewAuthService,
	service.NewUserService,
	service.NewMediaWorkflow,
	service.NewAreaService,
	service.NewPropertyService,
	provideMailService,
	provideSessionJanitor,
)

var httpSet = wire.NewSet(
	provideImageUploader,
	provideCookieOptions,
	provideHandlers,
	provideAccessGuard,
	provideRateLimiters,
	provideReadiness,
	provideRouterDependencies,
	provideHTTPServer,
)

var appSet = wire.NewSet(
	provideObservability,
	provideBootstrap,
	provideBackgroundTasks,
	provideStop,
	provideApp,
)

func InitializeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, lp *sdklog.LoggerProvider) (*app.App, func(), error) {
	wire.Build(infrastructureSet, repositorySet, serviceSet, httpSet, appSet)
	return nil, nil, nil
}

func InitializeUserService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.UserService, func(), error) {
	wire.Build(provideDB, repository.NewUserRepository, providePasswordHasher, service.NewUserService)
	return nil, nil, nil
}

func InitializeReadiness(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*health.ProbeRunner, func(), error) {
	wire.Build(provideDB, provideRedis, provideObjectStore, provideReadiness)
	return nil, nil, nil
}
