package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/estate-admin-backend/internal/config"
	"github.com/sandeepkv93/estate-admin-backend/internal/observability"
)

type options struct {
	envFile string
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "estate-admin",
		Short:         "Real-estate listing admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.envFile != "" {
				_ = os.Setenv("APP_ENV_FILE", opts.envFile)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "env file loaded before reading the environment")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newEnsureAdminCommand(),
		newCreateUserCommand(),
		newCheckCommand(opts),
		newLoadgenCommand(),
	)
	return cmd
}

// loadConfig returns the validated config and a logger writing to w.
func loadConfig(ctx context.Context, w io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, _, err := observability.NewLogger(ctx, withoutOTLPLogs(cfg), w)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// withoutOTLPLogs keeps one-shot commands from opening a log exporter.
func withoutOTLPLogs(cfg *config.Config) *config.Config {
	c := *cfg
	c.OTELLogsEnabled = false
	return &c
}
