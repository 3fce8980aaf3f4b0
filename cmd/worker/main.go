package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/zepsite/internal/app"
	"github.com/briangreenhill/zepsite/internal/config"
	"github.com/briangreenhill/zepsite/internal/refresh"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		force bool
		every time.Duration
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Regenerate the band content cache",
		Long: `Runs the content refresh once and exits, or keeps running and
refreshes on a fixed interval when --every is set.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, logger)
			if err != nil {
				return err
			}

			if every <= 0 {
				report := a.Orchestrator.Run(ctx, force)
				if len(report.Failed) > 0 && len(report.Changed) == 0 && len(report.Skipped) == 0 {
					return fmt.Errorf("refresh %s: every field failed", report.RunID)
				}
				return nil
			}

			// first pass honours --force, scheduled ones follow the freshness policy
			a.Orchestrator.Run(ctx, force)
			sched, err := refresh.NewScheduler(a.Orchestrator, every, logger)
			if err != nil {
				return err
			}
			sched.Start()
			logger.Info().Dur("every", every).Msg("worker running")

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return sched.Stop(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "regenerate every field regardless of freshness")
	cmd.Flags().DurationVar(&every, "every", 0, "keep running and refresh at this interval (e.g. 1h)")
	return cmd
}
