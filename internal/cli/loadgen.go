package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/estate-admin-backend/internal/tools/loadgen"
)

func newLoadgenCommand() *cobra.Command {
	cfg := loadgen.Config{}
	cmd := &cobra.Command{
		Use:   "loadgen",
		Short: "Generate traffic against a running API",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadgen.Run(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, titleStyle.Render("loadgen "+cfg.Profile))
			_, _ = fmt.Fprintf(out, "  %s %d in %s\n", nameStyle.Render("requests"), res.TotalRequests, res.Elapsed.Round(time.Millisecond))
			for _, class := range sortedKeys(res.StatusClasses) {
				_, _ = fmt.Fprintf(out, "  %s %d\n", nameStyle.Render(class), res.StatusClasses[class])
			}
			if res.Failures > 0 {
				_, _ = fmt.Fprintln(out, failStyle.Render(fmt.Sprintf("%d failures", res.Failures)))
				return fmt.Errorf("%d requests failed", res.Failures)
			}
			_, _ = fmt.Fprintln(out, okStyle.Render("no failures"))
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&cfg.Profile, "profile", "mixed", "public, auth or mixed")
	cmd.Flags().DurationVar(&cfg.Duration, "duration", 10*time.Second, "how long to generate traffic")
	cmd.Flags().IntVar(&cfg.RPS, "rps", 20, "requests per second")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", 4, "parallel workers")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 42, "request mix seed")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
