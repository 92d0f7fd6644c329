package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/estate-admin-backend/internal/di"
)

var errNotReady = errors.New("dependencies are not ready")

func newCheckCommand(opts *options) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate config and probe the database, redis and object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			cfg, logger, err := loadConfig(ctx, os.Stderr)
			if err != nil {
				printReport(cmd.OutOrStdout(), opts.ci, false, nil, err)
				return err
			}
			readiness, cleanup, err := di.InitializeReadiness(ctx, cfg, logger)
			if err != nil {
				printReport(cmd.OutOrStdout(), opts.ci, false, nil, err)
				return err
			}
			defer cleanup()
			ready, results := readiness.Ready(ctx)
			printReport(cmd.OutOrStdout(), opts.ci, ready, results, nil)
			if !ready {
				return errNotReady
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall time budget")
	return cmd
}
