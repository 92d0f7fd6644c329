package config

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// recordLoadOutcome counts config loads by profile and failure class. The
// global meter is looked up per call so a provider installed after the
// first load still receives events.
func recordLoadOutcome(ctx context.Context, profile string, err error) {
	counter, cerr := otel.Meter("estate-admin-backend/config").Int64Counter("config.load.events")
	if cerr != nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		profile = "unknown"
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", profile),
		attribute.String("outcome", outcome),
		attribute.String("error_class", classifyConfigLoadError(err)),
	))
}

func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := err.Error()
	for _, c := range []struct{ marker, class string }{
		{"validate config:", "validation"},
		{"load env file", "env_file"},
		{"parse ", "parse"},
	} {
		if strings.Contains(msg, c.marker) {
			return c.class
		}
	}
	return "load"
}
