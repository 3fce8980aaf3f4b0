// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/internal/app"
	"github.com/briangreenhill/zepsite/internal/config"
	"github.com/briangreenhill/zepsite/internal/http/routes"
	"github.com/briangreenhill/zepsite/internal/refresh"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zerolog.New(os.Stderr).Fatal().Err(err).Msg("invalid configuration")
	}

	logger := app.NewLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("startup failed")
	}

	if !a.StartupRefresh(ctx, cfg.Refresh.OnStart, cfg.Refresh.Blocking) {
		logger.Info().Msg("interrupted during startup refresh")
		return
	}

	var sched *refresh.Scheduler
	if cfg.Refresh.Interval > 0 {
		sched, err = refresh.NewScheduler(a.Orchestrator, cfg.Refresh.Interval, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("schedule refresh")
		}
		sched.Start()
		logger.Info().Dur("every", cfg.Refresh.Interval).Msg("refresh scheduled")
	}

	s := routes.New(routes.ServerOptions{
		Source:    a.Store,
		StaticDir: cfg.StaticDir,
		Log:       logger,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting app")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("refresh still running at shutdown")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
}
