package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "estate-admin-backend"

type AppMetrics struct {
	authLoginCounter      metric.Int64Counter
	authRefreshCounter    metric.Int64Counter
	authLogoutCounter     metric.Int64Counter
	repositoryOpCounter   metric.Int64Counter
	accessTokenCounter    metric.Int64Counter
	rateLimitCounter      metric.Int64Counter
	rateLimitRetryAfter   metric.Float64Histogram
	mediaOpCounter        metric.Int64Counter
	mediaBytesCounter     metric.Int64Counter
	revocationCounter     metric.Int64Counter
	mailCounter           metric.Int64Counter
	sessionCleanupCounter metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	var mp *sdkmetric.MeterProvider
	if !cfg.OTELMetricsEnabled {
		mp = sdkmetric.NewMeterProvider()
		logger.Info("otel metrics disabled")
	} else {
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
		if cfg.OTELExporterOTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("create otlp metric exporter: %w", err)
		}
		res, err := newResource(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create metric resource: %w", err)
		}
		reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
		mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	}
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var (
		m   AppMetrics
		err error
	)
	counters := []struct {
		target *metric.Int64Counter
		name   string
	}{
		{&m.authLoginCounter, "auth.login.attempts"},
		{&m.authRefreshCounter, "auth.refresh.attempts"},
		{&m.authLogoutCounter, "auth.logout.attempts"},
		{&m.repositoryOpCounter, "repository.operations"},
		{&m.accessTokenCounter, "auth.access_token.validations"},
		{&m.rateLimitCounter, "http.rate_limit.decisions"},
		{&m.mediaOpCounter, "media.operations"},
		{&m.mediaBytesCounter, "media.uploaded.bytes"},
		{&m.revocationCounter, "auth.revocation.events"},
		{&m.mailCounter, "mail.contact.sent"},
		{&m.sessionCleanupCounter, "session.cleanup.deleted"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name)
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
	}
	m.rateLimitRetryAfter, err = meter.Float64Histogram("http.rate_limit.retry_after", metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create histogram http.rate_limit.retry_after: %w", err)
	}
	return &m, nil
}

func current() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordAuthLogin(ctx context.Context, status string) {
	if m := current(); m != nil {
		m.authLoginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordAuthRefresh(ctx context.Context, status string) {
	if m := current(); m != nil {
		m.authRefreshCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordAuthLogout(ctx context.Context, status string) {
	if m := current(); m != nil {
		m.authLogoutCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	if m := current(); m != nil {
		m.repositoryOpCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordAccessTokenValidation(ctx context.Context, outcome string) {
	if m := current(); m != nil {
		m.accessTokenCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func RecordRateLimitDecision(ctx context.Context, scope, decision, mode string) {
	if m := current(); m != nil {
		m.rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("scope", scope),
			attribute.String("decision", decision),
			attribute.String("mode", mode),
		))
	}
}

func RecordRateLimitRetryAfter(ctx context.Context, scope string, retryAfter time.Duration) {
	if m := current(); m != nil {
		m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(attribute.String("scope", scope)))
	}
}

func RecordMediaOperation(ctx context.Context, owner, operation, outcome string, files int) {
	if m := current(); m != nil {
		m.mediaOpCounter.Add(ctx, int64(max(files, 1)), metric.WithAttributes(
			attribute.String("owner", owner),
			attribute.String("operation", operation),
			attribute.String("outcome", outcome),
		))
	}
}

func RecordMediaUploadedBytes(ctx context.Context, owner string, n int64) {
	if m := current(); m != nil && n > 0 {
		m.mediaBytesCounter.Add(ctx, n, metric.WithAttributes(attribute.String("owner", owner)))
	}
}

func RecordRevocationEvent(ctx context.Context, event string) {
	if m := current(); m != nil {
		m.revocationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
	}
}

func RecordContactMail(ctx context.Context, status string) {
	if m := current(); m != nil {
		m.mailCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

func RecordSessionCleanup(ctx context.Context, deleted int64) {
	if m := current(); m != nil && deleted > 0 {
		m.sessionCleanupCounter.Add(ctx, deleted)
	}
}
