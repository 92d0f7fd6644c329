package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/di"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, lp, err := observability.NewLogger(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	a, cleanup, err := di.InitializeApp(ctx, cfg, logger, lp)
	if err != nil {
		logger.Error("initialize app", "error", err)
		return err
	}
	defer cleanup()
	return a.Run(ctx)
}
