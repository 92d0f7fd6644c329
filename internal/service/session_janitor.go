package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

// SessionJanitor periodically drops sessions whose refresh token has expired.
type SessionJanitor struct {
	sessions *SessionStore
	every    time.Duration
	logger   *slog.Logger
}

func NewSessionJanitor(sessions *SessionStore, every time.Duration, logger *slog.Logger) *SessionJanitor {
	return &SessionJanitor{sessions: sessions, every: every, logger: logger}
}

// Run schedules sweeps and blocks until ctx is cancelled. A non-positive
// interval disables it.
func (j *SessionJanitor) Run(ctx context.Context) error {
	if j.every <= 0 {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", j.every), func() { j.Sweep(ctx) }); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func (j *SessionJanitor) Sweep(ctx context.Context) int64 {
	n, err := j.sessions.CleanupExpired(ctx)
	if err != nil {
		j.logger.WarnContext(ctx, "session cleanup failed", "error", err)
		return 0
	}
	observability.RecordSessionCleanup(ctx, n)
	if n > 0 {
		j.logger.InfoContext(ctx, "expired sessions removed", "count", n)
	}
	return n
}
