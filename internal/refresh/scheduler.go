package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often long-running deployments refresh.
const DefaultInterval = time.Hour

// Runner is what the scheduler triggers; *Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, force bool) Report
}

// Scheduler triggers a Runner at a fixed interval. A tick that fires while
// the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	cancel context.CancelFunc
}

func NewScheduler(r Runner, every time.Duration, log zerolog.Logger) (*Scheduler, error) {
	if every <= 0 {
		return nil, errors.New("refresh interval must be positive")
	}

	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		r.Run(ctx, false)
	}); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}
	return &Scheduler{cron: c, cancel: cancel}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels a run in progress and waits for it, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
